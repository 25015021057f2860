package checkout

import (
	"time"

	"github.com/devmarket/backend/internal/domain/order"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CheckoutSessionResponse is returned when a hosted checkout session is opened
type CheckoutSessionResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	CheckoutURL string    `json:"checkout_url"`
}

// ConfirmResultResponse reports the outcome of a success-redirect confirmation
type ConfirmResultResponse struct {
	OrderID   uuid.UUID `json:"order_id"`
	Status    string    `json:"status"`
	Completed bool      `json:"completed"`
	Message   string    `json:"message,omitempty"`
}

// OrderItemResponse is a frozen order line in API responses
type OrderItemResponse struct {
	ID           uuid.UUID         `json:"id"`
	ProductID    uuid.UUID         `json:"product_id"`
	ProductTitle string            `json:"product_title"`
	ProductSlug  string            `json:"product_slug"`
	Price        valueobject.Money `json:"price"`
	DownloadURL  string            `json:"download_url,omitempty"`
}

// OrderResponse is an order in API responses
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	Email       string              `json:"email"`
	TotalAmount valueobject.Money   `json:"total_amount"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Items       []OrderItemResponse `json:"items"`
}

// ToOrderResponse converts an order aggregate to its API shape
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, OrderItemResponse{
			ID:           o.Items[i].ID,
			ProductID:    o.Items[i].ProductID,
			ProductTitle: o.Items[i].ProductTitle,
			ProductSlug:  o.Items[i].ProductSlug,
			Price:        o.Items[i].Price,
		})
	}

	return OrderResponse{
		ID:          o.ID,
		Email:       o.Email,
		TotalAmount: o.TotalAmount,
		Status:      o.Status.String(),
		CreatedAt:   o.CreatedAt,
		CompletedAt: o.CompletedAt,
		Items:       items,
	}
}

// WebhookResult contains the result of processing a webhook event
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}
