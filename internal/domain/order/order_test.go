package order

import (
	"testing"

	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, s string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(s)
	require.NoError(t, err)
	return m
}

func createTestItem(t *testing.T, title, price string) *OrderItem {
	t.Helper()
	item, err := NewOrderItem(uuid.New(), title, title+"-slug", mustMoney(t, price))
	require.NoError(t, err)
	return item
}

func createTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), "buyer@example.com", []*OrderItem{
		createTestItem(t, "Icon Pack", "10.00"),
		createTestItem(t, "Font Bundle", "5.00"),
	})
	require.NoError(t, err)
	return o
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to completed", OrderStatusPending, OrderStatusCompleted, true},
		{"pending to failed", OrderStatusPending, OrderStatusFailed, true},
		{"pending to refunded", OrderStatusPending, OrderStatusRefunded, true},
		{"pending to pending", OrderStatusPending, OrderStatusPending, false},
		{"completed to refunded", OrderStatusCompleted, OrderStatusRefunded, false},
		{"completed to failed", OrderStatusCompleted, OrderStatusFailed, false},
		{"failed to completed", OrderStatusFailed, OrderStatusCompleted, false},
		{"refunded to completed", OrderStatusRefunded, OrderStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewOrderSnapshotsTotal(t *testing.T) {
	// a $10 product and a $5 product make a $15 order
	o := createTestOrder(t)
	assert.Equal(t, int64(1500), o.TotalAmount.Cents())
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Len(t, o.Items, 2)
}

func TestNewOrderRejectsEmptyItems(t *testing.T) {
	_, err := NewOrder(uuid.New(), "buyer@example.com", nil)
	assert.ErrorIs(t, err, shared.ErrEmptyCart)
}

func TestOrderItemSnapshotIsFrozen(t *testing.T) {
	item := createTestItem(t, "Icon Pack", "10.00")
	o, err := NewOrder(uuid.New(), "buyer@example.com", []*OrderItem{item})
	require.NoError(t, err)

	// mutating the source after order creation changes nothing in the order
	item.ProductTitle = "Renamed"
	item.Price = mustMoney(t, "99.00")

	assert.Equal(t, "Icon Pack", o.Items[0].ProductTitle)
	assert.Equal(t, int64(1000), o.Items[0].Price.Cents())
	assert.Equal(t, int64(1000), o.TotalAmount.Cents())
}

func TestOrderComplete(t *testing.T) {
	o := createTestOrder(t)
	o.ClearDomainEvents()

	require.NoError(t, o.Complete("pi_123"))
	assert.True(t, o.IsCompleted())
	assert.Equal(t, "pi_123", o.StripePaymentIntentID)
	require.NotNil(t, o.CompletedAt)
	assert.Len(t, o.GetDomainEvents(), 1)

	// second completion is rejected
	assert.Error(t, o.Complete("pi_456"))
	assert.Equal(t, "pi_123", o.StripePaymentIntentID)
}

func TestOrderFailLeavesNoCompletion(t *testing.T) {
	o := createTestOrder(t)

	require.NoError(t, o.Fail())
	assert.Equal(t, OrderStatusFailed, o.Status)
	assert.Nil(t, o.CompletedAt)
	assert.True(t, o.IsTerminal())

	assert.Error(t, o.Complete("pi_123"))
}

func TestOrderRefund(t *testing.T) {
	o := createTestOrder(t)
	require.NoError(t, o.Refund())
	assert.Equal(t, OrderStatusRefunded, o.Status)

	assert.Error(t, o.Fail())
}

func TestAttachStripeSession(t *testing.T) {
	o := createTestOrder(t)

	require.NoError(t, o.AttachStripeSession("cs_test_123"))
	assert.Equal(t, "cs_test_123", o.StripeSessionID)

	assert.Error(t, o.AttachStripeSession(""))

	require.NoError(t, o.Fail())
	assert.Error(t, o.AttachStripeSession("cs_test_456"))
}

func TestProductIDs(t *testing.T) {
	o := createTestOrder(t)
	ids := o.ProductIDs()
	require.Len(t, ids, 2)
	assert.Equal(t, o.Items[0].ProductID, ids[0])
	assert.Equal(t, o.Items[1].ProductID, ids[1])
}
