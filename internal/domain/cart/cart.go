package cart

import (
	"time"

	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CartItem is a single product line in a cart. The price is captured
// at add time and does not follow later catalog price changes.
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:1"`
	ProductID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:2"`
	Price     valueobject.Money `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// Cart holds a user's pending purchases. Each user has at most one cart.
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CART", "User is required")
	}

	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]CartItem, 0),
	}, nil
}

// AddProduct adds a product line with the price captured now.
// Adding a product that is already in the cart is a no-op: the existing
// line is returned and added is false.
func (c *Cart) AddProduct(productID uuid.UUID, price valueobject.Money) (*CartItem, bool, error) {
	if productID == uuid.Nil {
		return nil, false, shared.NewDomainError("INVALID_CART", "Product is required")
	}
	if !price.IsPositive() {
		return nil, false, shared.NewDomainError("INVALID_CART", "Price must be positive")
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], false, nil
		}
	}

	item := CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  productID,
		Price:      price,
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return &c.Items[len(c.Items)-1], true, nil
}

// RemoveProduct removes a product line from the cart
func (c *Cart) RemoveProduct(productID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			c.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Clear removes all lines from the cart
func (c *Cart) Clear() {
	if len(c.Items) == 0 {
		return
	}
	c.Items = c.Items[:0]
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Contains reports whether the cart has a line for the product
func (c *Cart) Contains(productID uuid.UUID) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return true
		}
	}
	return false
}

// Total sums the captured prices of all lines
func (c *Cart) Total() valueobject.Money {
	total := valueobject.ZeroMoney()
	for i := range c.Items {
		sum, err := total.Add(c.Items[i].Price)
		if err != nil {
			continue
		}
		total = sum
	}
	return total
}

// ItemCount returns the number of lines in the cart
func (c *Cart) ItemCount() int {
	return len(c.Items)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
