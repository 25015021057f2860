package payment

import (
	"context"
	"fmt"

	"github.com/devmarket/backend/internal/application/checkout"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"go.uber.org/zap"
)

// StripeGateway implements checkout.PaymentGateway over Stripe hosted checkout
type StripeGateway struct {
	config *StripeConfig
	logger *zap.Logger
}

var _ checkout.PaymentGateway = (*StripeGateway)(nil)

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeGateway{
		config: config,
		logger: logger,
	}, nil
}

// CreateCheckoutSession opens a Stripe Checkout Session in payment mode
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, input checkout.CreateSessionInput) (*checkout.Session, error) {
	g.logger.Debug("Creating Stripe checkout session",
		zap.String("order_id", input.OrderID.String()),
		zap.Int("lines", len(input.Lines)))

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Lines))
	for _, line := range input.Lines {
		quantity := line.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.config.Currency),
				UnitAmount: stripe.Int64(line.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Title),
				},
			},
			Quantity: stripe.Int64(quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lineItems,
		SuccessURL:    stripe.String(g.config.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(g.config.CancelURL),
		CustomerEmail: stripe.String(input.Email),
	}
	params.Context = ctx
	params.AddMetadata("order_id", input.OrderID.String())
	params.AddMetadata("user_id", input.UserID.String())

	sess, err := session.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe checkout session",
			zap.String("order_id", input.OrderID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	g.logger.Info("Created Stripe checkout session",
		zap.String("order_id", input.OrderID.String()),
		zap.String("session_id", sess.ID))

	return &checkout.Session{
		ID:   sess.ID,
		URL:  sess.URL,
		Paid: sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}

// GetCheckoutSession retrieves a Stripe Checkout Session
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*checkout.Session, error) {
	g.logger.Debug("Retrieving Stripe checkout session", zap.String("session_id", sessionID))

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		g.logger.Error("Failed to retrieve Stripe checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to retrieve checkout session: %w", err)
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	return &checkout.Session{
		ID:              sess.ID,
		URL:             sess.URL,
		PaymentIntentID: paymentIntentID,
		Paid:            sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}
