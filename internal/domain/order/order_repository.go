package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order with its item snapshots
	Create(ctx context.Context, o *Order) error

	// Update updates an order's own fields; item rows are never touched
	Update(ctx context.Context, o *Order) error

	// FindByID finds an order by ID with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUser finds an order by ID scoped to its owner
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*Order, error)

	// FindBySessionID finds an order by its Stripe checkout session ID
	FindBySessionID(ctx context.Context, sessionID string) (*Order, error)

	// FindByPaymentIntentID finds an order by its Stripe payment intent ID
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error)

	// FindAllForUser returns a user's orders, newest first
	FindAllForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*Order, int64, error)

	// CompletePending performs the status-guarded completion update:
	// UPDATE ... SET status = completed WHERE id = ? AND status = pending.
	// Returns true only for the single caller whose update changed the row;
	// every other concurrent or repeated confirmation returns false.
	CompletePending(ctx context.Context, id uuid.UUID, paymentIntentID string) (bool, error)

	// FailPending performs the status-guarded pending to failed update
	FailPending(ctx context.Context, id uuid.UUID) (bool, error)

	// RefundPending performs the status-guarded pending to refunded update
	RefundPending(ctx context.Context, id uuid.UUID) (bool, error)

	// HasCompletedOrderWithProduct reports whether the user already
	// bought the product in a completed order
	HasCompletedOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}
