package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devmarket/backend/internal/domain/order"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// WebhookService turns Stripe webhook events into order transitions.
// Duplicate deliveries are cut off twice: first by the idempotency
// store, then by the status-guarded updates underneath.
type WebhookService struct {
	webhookSecret string
	checkoutSvc   *CheckoutService
	orderRepo     order.OrderRepository
	idempotency   shared.IdempotencyStore
	idemConfig    shared.IdempotencyConfig
	logger        *zap.Logger
}

// WebhookServiceConfig contains dependencies for WebhookService
type WebhookServiceConfig struct {
	WebhookSecret     string
	CheckoutService   *CheckoutService
	OrderRepo         order.OrderRepository
	IdempotencyStore  shared.IdempotencyStore
	IdempotencyConfig shared.IdempotencyConfig
	Logger            *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	return &WebhookService{
		webhookSecret: cfg.WebhookSecret,
		checkoutSvc:   cfg.CheckoutService,
		orderRepo:     cfg.OrderRepo,
		idempotency:   cfg.IdempotencyStore,
		idemConfig:    cfg.IdempotencyConfig,
		logger:        cfg.Logger,
	}
}

// ProcessWebhook verifies and dispatches a Stripe webhook event.
// A returned error means the signature did not verify; processing
// failures are reported inside the result so the handler still
// acknowledges the delivery.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Error("Webhook signature verification failed", zap.Error(err))
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	s.logger.Info("Processing webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	if s.idempotency != nil && s.idemConfig.Enabled {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.ID, s.idemConfig.TTL)
		if err != nil {
			// the store being down is not a reason to drop the event;
			// the conditional updates keep a reprocess harmless
			s.logger.Warn("Idempotency store unavailable, processing anyway",
				zap.String("event_id", event.ID),
				zap.Error(err))
		} else if !fresh {
			s.logger.Info("Skipping duplicate webhook event",
				zap.String("event_id", event.ID))
			result.Processed = false
			result.Message = "Duplicate event"
			return result, nil
		}
	}

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleSessionCompleted(ctx, event)
	case "checkout.session.expired":
		err = s.handleSessionExpired(ctx, event)
	case "payment_intent.payment_failed":
		err = s.handlePaymentFailed(ctx, event)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
	}

	return result, nil
}

// handleSessionCompleted runs the completion sequence for the order
// tied to the paid checkout session
func (s *WebhookService) handleSessionCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	o, err := s.orderRepo.FindBySessionID(ctx, sess.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// acknowledge unknown sessions so the provider stops retrying
			s.logger.Warn("No order for checkout session",
				zap.String("session_id", sess.ID))
			return nil
		}
		return err
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	won, err := s.checkoutSvc.completeOrder(ctx, o, paymentIntentID)
	if err != nil {
		return err
	}
	if !won {
		s.logger.Debug("Order already finalized before webhook",
			zap.String("order_id", o.ID.String()))
	}
	return nil
}

// handleSessionExpired refunds the pending order of an abandoned session
func (s *WebhookService) handleSessionExpired(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	o, err := s.orderRepo.FindBySessionID(ctx, sess.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("No order for expired checkout session",
				zap.String("session_id", sess.ID))
			return nil
		}
		return err
	}

	changed, err := s.orderRepo.RefundPending(ctx, o.ID)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Info("Order refunded after session expiry",
			zap.String("order_id", o.ID.String()))
	}
	return nil
}

// handlePaymentFailed marks the pending order of a failed payment as
// failed. The buyer's cart is left untouched so they can retry.
func (s *WebhookService) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}

	o, err := s.orderRepo.FindByPaymentIntentID(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("No order for failed payment intent",
				zap.String("payment_intent_id", intent.ID))
			return nil
		}
		return err
	}

	changed, err := s.orderRepo.FailPending(ctx, o.ID)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Info("Order marked failed after payment failure",
			zap.String("order_id", o.ID.String()))
	}
	return nil
}
