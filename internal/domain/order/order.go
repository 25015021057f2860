package order

import (
	"strings"
	"time"

	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// IsValid checks if the status is a known status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status allows no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed || s == OrderStatusRefunded
}

// CanTransitionTo checks if the status can transition to the target status.
// The only transitions are pending into exactly one terminal state;
// terminal states never transition into each other.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	return target.IsTerminal()
}

// OrderItem is a frozen snapshot of a product at purchase time.
// Title, slug, and price are copied so later catalog edits
// never change what the buyer paid for.
type OrderItem struct {
	shared.BaseEntity
	OrderID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductTitle string            `gorm:"type:varchar(200);not null"`
	ProductSlug  string            `gorm:"type:varchar(220);not null"`
	Price        valueobject.Money `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a frozen order line from product data
func NewOrderItem(productID uuid.UUID, title, slug string, price valueobject.Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER_ITEM", "Product is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_ITEM", "Product title is required")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_ORDER_ITEM", "Price must be positive")
	}

	return &OrderItem{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		ProductTitle: title,
		ProductSlug:  slug,
		Price:        price,
	}, nil
}

// Order is the aggregate root for a purchase. It is created as a
// pending snapshot of the cart and moved to a terminal state exactly
// once by the payment confirmation path that wins the conditional update.
type Order struct {
	shared.BaseAggregateRoot
	UserID                uuid.UUID         `gorm:"type:uuid;not null;index"`
	Email                 string            `gorm:"type:varchar(254);not null"`
	TotalAmount           valueobject.Money `gorm:"type:decimal(10,2);not null"`
	Status                OrderStatus       `gorm:"type:varchar(20);not null;default:'pending';index"`
	StripeSessionID       string            `gorm:"type:varchar(255);index"`
	StripePaymentIntentID string            `gorm:"type:varchar(255)"`
	CompletedAt           *time.Time
	Items                 []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order with frozen item snapshots
func NewOrder(userID uuid.UUID, email string, items []*OrderItem) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "User is required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER", "Email is required")
	}
	if len(items) == 0 {
		return nil, shared.ErrEmptyCart
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Status:            OrderStatusPending,
		Items:             make([]OrderItem, 0, len(items)),
	}

	total := valueobject.ZeroMoney()
	for _, item := range items {
		item.OrderID = o.ID
		sum, err := total.Add(item.Price)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ORDER", "Item prices must share one currency")
		}
		total = sum
		o.Items = append(o.Items, *item)
	}
	o.TotalAmount = total

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AttachStripeSession records the checkout session opened for this order
func (o *Order) AttachStripeSession(sessionID string) error {
	if o.Status != OrderStatusPending {
		return shared.ErrInvalidState
	}
	if sessionID == "" {
		return shared.NewDomainError("INVALID_ORDER", "Session ID is required")
	}

	o.StripeSessionID = sessionID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// Complete transitions the order to completed and stamps completion time.
// Persistence must pair this with a status-guarded update so that of two
// racing confirmations only one takes effect.
func (o *Order) Complete(paymentIntentID string) error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			"Cannot complete order in status "+o.Status.String())
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.StripePaymentIntentID = paymentIntentID
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// Fail transitions the order to failed
func (o *Order) Fail() error {
	if !o.Status.CanTransitionTo(OrderStatusFailed) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			"Cannot fail order in status "+o.Status.String())
	}

	o.Status = OrderStatusFailed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderFailedEvent(o))

	return nil
}

// Refund transitions an abandoned pending order to refunded
func (o *Order) Refund() error {
	if !o.Status.CanTransitionTo(OrderStatusRefunded) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			"Cannot refund order in status "+o.Status.String())
	}

	o.Status = OrderStatusRefunded
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderRefundedEvent(o))

	return nil
}

// IsCompleted reports whether the order reached the completed state
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// IsTerminal reports whether the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ProductIDs returns the IDs of all products in the order
func (o *Order) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for i := range o.Items {
		ids = append(ids, o.Items[i].ProductID)
	}
	return ids
}
