package persistence

import (
	"testing"

	"github.com/devmarket/backend/internal/domain/cart"
	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/identity"
	"github.com/devmarket/backend/internal/domain/order"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// A single connection keeps concurrent test writers serialized.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&identity.User{},
		&catalog.Category{},
		&catalog.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
	))

	return db
}

func money(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	return valueobject.NewMoneyUSD(d)
}

// seedActiveProduct creates and stores an approved, purchasable product
func seedActiveProduct(t *testing.T, db *gorm.DB, sellerID, categoryID uuid.UUID, title, price string) *catalog.Product {
	t.Helper()

	product, err := catalog.NewProduct(sellerID, categoryID, title, "a digital product", money(t, price))
	require.NoError(t, err)
	require.NoError(t, product.Submit())
	require.NoError(t, product.Approve())
	require.NoError(t, db.Create(product).Error)
	return product
}

// seedCategory creates and stores a root category
func seedCategory(t *testing.T, db *gorm.DB, name string) *catalog.Category {
	t.Helper()

	category, err := catalog.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, db.Create(category).Error)
	return category
}
