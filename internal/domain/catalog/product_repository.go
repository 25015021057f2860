package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortOption enumerates the supported search result orderings
type SortOption string

const (
	SortRelevance SortOption = "relevance"
	SortNewest    SortOption = "newest"
	SortOldest    SortOption = "oldest"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
	SortPopular   SortOption = "popular"
	SortDownloads SortOption = "downloads"
)

// IsValid checks if the sort option is supported
func (s SortOption) IsValid() bool {
	switch s {
	case SortRelevance, SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortPopular, SortDownloads:
		return true
	}
	return false
}

// SearchFilter contains filter options for querying products
type SearchFilter struct {
	// Substring match over title, description, and tags
	Query string

	// Restrict to these categories (a category and its descendants)
	CategoryIDs []uuid.UUID

	// Restrict to a seller's products (dashboard listing)
	SellerID *uuid.UUID

	// Filter by moderation status
	Status *ProductStatus

	// Only products visible to buyers (status active and is_active)
	OnlyPurchasable bool

	// Inclusive price bounds
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal

	// Exact file format match
	FileFormat string

	Sort     SortOption
	Page     int
	PageSize int
}

// NewSearchFilter creates a SearchFilter with default values
func NewSearchFilter() SearchFilter {
	return SearchFilter{
		Sort:     SortNewest,
		Page:     1,
		PageSize: 20,
	}
}

// Offset returns the offset for pagination
func (f SearchFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the limit for pagination
func (f SearchFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// SellerStats aggregates a seller's catalog for the dashboard overview.
// Earnings are price multiplied by purchase count per product, summed.
type SellerStats struct {
	TotalProducts   int64
	ActiveProducts  int64
	PendingProducts int64
	TotalDownloads  int64
	TotalPurchases  int64
	TotalEarnings   decimal.Decimal
}

// CategoryStats aggregates a seller's sales per category
type CategoryStats struct {
	CategoryID   uuid.UUID
	CategoryName string
	Products     int64
	Purchases    int64
	Earnings     decimal.Decimal
}

// ProductRepository defines the interface for product persistence and queries
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *Product) error

	// Update updates an existing product
	Update(ctx context.Context, product *Product) error

	// Delete deletes a product by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySlug finds a product by slug regardless of visibility
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindActiveBySlug finds a purchasable product by slug
	FindActiveBySlug(ctx context.Context, slug string) (*Product, error)

	// FindByIDs finds products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// Search returns products matching the filter plus the total match count
	Search(ctx context.Context, filter SearchFilter) ([]*Product, int64, error)

	// FindFeatured returns purchasable featured products
	FindFeatured(ctx context.Context, limit int) ([]*Product, error)

	// FindLatest returns the most recently listed purchasable products
	FindLatest(ctx context.Context, limit int) ([]*Product, error)

	// FindRelated returns other purchasable products in the same category
	FindRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*Product, error)

	// ExistsBySlug checks if a slug is already taken
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// IncrementPurchaseCounts atomically increments purchase counters.
	// Runs as a single SQL update so concurrent completions never lose counts.
	IncrementPurchaseCounts(ctx context.Context, ids []uuid.UUID) error

	// IncrementDownloadCount atomically increments a product's download counter
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) error

	// CountPurchasable returns the number of products visible to buyers
	CountPurchasable(ctx context.Context) (int64, error)

	// StatsForSeller computes the dashboard overview aggregates
	StatsForSeller(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error)

	// CategoryStatsForSeller computes per-category sales rollups
	CategoryStatsForSeller(ctx context.Context, sellerID uuid.UUID) ([]CategoryStats, error)
}
