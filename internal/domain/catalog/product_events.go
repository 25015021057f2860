package catalog

import (
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Product
const AggregateTypeProduct = "Product"

// Product domain event types
const (
	EventTypeProductCreated       = "ProductCreated"
	EventTypeProductUpdated       = "ProductUpdated"
	EventTypeProductStatusChanged = "ProductStatusChanged"
)

// ProductCreatedEvent is published when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	SellerID uuid.UUID `json:"seller_id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		SellerID:        product.SellerID,
		Title:           product.Title,
		Slug:            product.Slug,
	}
}

// ProductUpdatedEvent is published when a product listing is edited
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	SellerID uuid.UUID `json:"seller_id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID),
		SellerID:        product.SellerID,
		Title:           product.Title,
		Slug:            product.Slug,
	}
}

// ProductStatusChangedEvent is published when a product changes moderation status
type ProductStatusChangedEvent struct {
	shared.BaseDomainEvent
	SellerID  uuid.UUID     `json:"seller_id"`
	OldStatus ProductStatus `json:"old_status"`
	NewStatus ProductStatus `json:"new_status"`
}

// NewProductStatusChangedEvent creates a new ProductStatusChangedEvent
func NewProductStatusChangedEvent(product *Product, oldStatus, newStatus ProductStatus) *ProductStatusChangedEvent {
	return &ProductStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStatusChanged, AggregateTypeProduct, product.ID),
		SellerID:        product.SellerID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
