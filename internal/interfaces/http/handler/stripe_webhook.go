package handler

import (
	"io"
	"net/http"

	checkoutapp "github.com/devmarket/backend/internal/application/checkout"
	"github.com/devmarket/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBodySize caps webhook payloads at 64KB; Stripe events are
// far smaller
const maxWebhookBodySize = 64 * 1024

// StripeWebhookHandler receives payment events from Stripe.
// The endpoint is unauthenticated; trust comes from signature
// verification against the webhook secret.
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *checkoutapp.WebhookService
	logger         *zap.Logger
}

// NewStripeWebhookHandler creates a new webhook handler
func NewStripeWebhookHandler(webhookService *checkoutapp.WebhookService, logger *zap.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// RegisterRoutes registers the webhook route
func (h *StripeWebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/stripe", h.HandleWebhook)
}

// HandleWebhook verifies and processes one webhook delivery.
// Invalid signatures get a 400 so Stripe retries after the secret is
// fixed; processing failures still get a 200 because the conditional
// status updates make a redelivery harmless and we do not want the
// provider to hammer a struggling backend.
func (h *StripeWebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		h.BadRequest(c, "Unable to read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeWebhookSignature, "Missing Stripe-Signature header")
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		// only signature verification failures surface as errors
		h.Error(c, http.StatusBadRequest, dto.ErrCodeWebhookSignature, "Webhook signature verification failed")
		return
	}

	h.Success(c, result)
}
