package cart

import (
	"time"

	"github.com/devmarket/backend/internal/domain/cart"
	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CartItemResponse is a cart line in API responses
type CartItemResponse struct {
	ProductID    uuid.UUID         `json:"product_id"`
	ProductTitle string            `json:"product_title"`
	ProductSlug  string            `json:"product_slug"`
	Price        valueobject.Money `json:"price"`
	AddedAt      time.Time         `json:"added_at"`
}

// CartResponse is a cart in API responses
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	Total     valueobject.Money  `json:"total"`
	ItemCount int                `json:"item_count"`
}

// AddItemResponse reports the outcome of adding a product
type AddItemResponse struct {
	Added bool         `json:"added"`
	Cart  CartResponse `json:"cart"`
}

// toCartResponse builds the API shape, joining product display data
func toCartResponse(c *cart.Cart, products map[uuid.UUID]*catalog.Product) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for i := range c.Items {
		line := &c.Items[i]
		item := CartItemResponse{
			ProductID: line.ProductID,
			Price:     line.Price,
			AddedAt:   line.CreatedAt,
		}
		if p, ok := products[line.ProductID]; ok {
			item.ProductTitle = p.Title
			item.ProductSlug = p.Slug
		}
		items = append(items, item)
	}

	return CartResponse{
		Items:     items,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}
