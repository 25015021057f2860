package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByUserID finds a user's cart with its items.
	// Returns shared.ErrNotFound if the user has no cart yet.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// FindOrCreateByUserID finds a user's cart, creating an empty one if absent
	FindOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save persists the cart and synchronizes its item lines
	Save(ctx context.Context, cart *Cart) error

	// ClearByUserID removes all items from a user's cart.
	// Used by the order completion sequence; a user without a cart is a no-op.
	ClearByUserID(ctx context.Context, userID uuid.UUID) error
}
