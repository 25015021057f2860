package checkout

import (
	"context"

	"github.com/google/uuid"
)

// SessionLine is one display line on the hosted payment page.
// Amounts are in the smallest currency unit.
type SessionLine struct {
	Title       string
	AmountCents int64
	Quantity    int64
}

// CreateSessionInput carries everything the provider needs to open
// a hosted checkout session for an order
type CreateSessionInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
	Email   string
	Lines   []SessionLine
}

// Session is the provider's view of a checkout session
type Session struct {
	ID              string
	URL             string
	PaymentIntentID string
	Paid            bool
}

// PaymentGateway abstracts the hosted checkout provider.
// The production implementation talks to Stripe; tests use fakes.
type PaymentGateway interface {
	// CreateCheckoutSession opens a hosted checkout session and
	// returns its ID and the URL to redirect the buyer to
	CreateCheckoutSession(ctx context.Context, input CreateSessionInput) (*Session, error)

	// GetCheckoutSession retrieves a session to verify its payment status
	GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error)
}
