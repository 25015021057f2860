package catalog

import (
	"time"

	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CategoryResponse is a category in API responses
type CategoryResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	Icon            string     `json:"icon,omitempty"`
	ParentID        *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder       int        `json:"sort_order"`
	IsActive        bool       `json:"is_active"`
}

// ProductCardResponse is the compact product shape used in listings
type ProductCardResponse struct {
	ID               uuid.UUID         `json:"id"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	ShortDescription string            `json:"short_description,omitempty"`
	Price            valueobject.Money `json:"price"`
	CategoryID       uuid.UUID         `json:"category_id"`
	Tags             []string          `json:"tags,omitempty"`
	FileFormat       string            `json:"file_format,omitempty"`
	FeaturedImageKey string            `json:"featured_image_key,omitempty"`
	IsFeatured       bool              `json:"is_featured"`
	DownloadCount    int64             `json:"download_count"`
	PurchaseCount    int64             `json:"purchase_count"`
	CreatedAt        time.Time         `json:"created_at"`
}

// ProductDetailResponse is the full product page shape
type ProductDetailResponse struct {
	ProductCardResponse
	Description    string                `json:"description"`
	FileSize       string                `json:"file_size,omitempty"`
	Compatibility  string                `json:"compatibility,omitempty"`
	PreviewFileKey string                `json:"preview_file_key,omitempty"`
	SellerID       uuid.UUID             `json:"seller_id"`
	SellerUsername string                `json:"seller_username,omitempty"`
	Category       *CategoryResponse     `json:"category,omitempty"`
	Related        []ProductCardResponse `json:"related"`
}

// SearchRequest carries product search parameters
type SearchRequest struct {
	Query      string `form:"q"`
	Category   string `form:"category"` // category slug
	MinPrice   string `form:"min_price"`
	MaxPrice   string `form:"max_price"`
	FileFormat string `form:"format"`
	Sort       string `form:"sort"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// SearchResponse is a paginated product listing
type SearchResponse struct {
	Items      []ProductCardResponse `json:"items"`
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// CategoryPageResponse is a category browse page
type CategoryPageResponse struct {
	Category      CategoryResponse   `json:"category"`
	Subcategories []CategoryResponse `json:"subcategories"`
	Products      SearchResponse     `json:"products"`
}

// HomeResponse is the marketplace landing feed
type HomeResponse struct {
	Categories    []CategoryResponse    `json:"categories"`
	Featured      []ProductCardResponse `json:"featured"`
	Latest        []ProductCardResponse `json:"latest"`
	TotalProducts int64                 `json:"total_products"`
}

// CreateCategoryRequest is the admin category creation payload
type CreateCategoryRequest struct {
	Name            string     `json:"name" binding:"required,min=2,max=100"`
	Description     string     `json:"description"`
	MetaDescription string     `json:"meta_description" binding:"max=300"`
	Icon            string     `json:"icon" binding:"max=100"`
	ParentID        *uuid.UUID `json:"parent_id"`
	SortOrder       int        `json:"sort_order"`
}

// UpdateCategoryRequest is the admin category update payload
type UpdateCategoryRequest struct {
	Name            string     `json:"name" binding:"required,min=2,max=100"`
	Description     string     `json:"description"`
	MetaDescription string     `json:"meta_description" binding:"max=300"`
	Icon            string     `json:"icon" binding:"max=100"`
	ParentID        *uuid.UUID `json:"parent_id"`
	SortOrder       int        `json:"sort_order"`
	IsActive        *bool      `json:"is_active"`
}

func toCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:              c.ID,
		Name:            c.Name,
		Slug:            c.Slug,
		Description:     c.Description,
		MetaDescription: c.MetaDescription,
		Icon:            c.Icon,
		ParentID:        c.ParentID,
		SortOrder:       c.SortOrder,
		IsActive:        c.IsActive,
	}
}

func toCategoryResponses(categories []*catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out
}

func toProductCard(p *catalog.Product) ProductCardResponse {
	return ProductCardResponse{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		Price:            p.Price,
		CategoryID:       p.CategoryID,
		Tags:             p.TagList(),
		FileFormat:       p.FileFormat,
		FeaturedImageKey: p.FeaturedImageKey,
		IsFeatured:       p.IsFeatured,
		DownloadCount:    p.DownloadCount,
		PurchaseCount:    p.PurchaseCount,
		CreatedAt:        p.CreatedAt,
	}
}

func toProductCards(products []*catalog.Product) []ProductCardResponse {
	out := make([]ProductCardResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductCard(p))
	}
	return out
}

func toSearchResponse(products []*catalog.Product, total int64, filter catalog.SearchFilter) SearchResponse {
	pageSize := filter.Limit()
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	return SearchResponse{
		Items:      toProductCards(products),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
