package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create creates a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update updates an existing product
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete deletes a product by ID
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySlug finds a product by slug regardless of visibility
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindActiveBySlug finds a purchasable product by slug
func (r *GormProductRepository) FindActiveBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Where("status = ? AND is_active = ?", catalog.ProductStatusActive, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs finds products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var products []*catalog.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// Search returns products matching the filter plus the total match count
func (r *GormProductRepository) Search(ctx context.Context, filter catalog.SearchFilter) ([]*catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})
	query = applySearchFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*catalog.Product
	err := query.
		Order(orderClause(filter.Sort)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// applySearchFilter translates the filter into WHERE clauses
func applySearchFilter(query *gorm.DB, filter catalog.SearchFilter) *gorm.DB {
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.OnlyPurchasable {
		query = query.Where("status = ? AND is_active = ?", catalog.ProductStatusActive, true)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.FileFormat != "" {
		query = query.Where("file_format = ?", filter.FileFormat)
	}
	return query
}

// orderClause maps a sort option to an ORDER BY expression.
// Relevance falls back to popularity since matching is plain substring search.
func orderClause(sort catalog.SortOption) string {
	switch sort {
	case catalog.SortOldest:
		return "created_at ASC"
	case catalog.SortPriceAsc:
		return "price ASC, created_at DESC"
	case catalog.SortPriceDesc:
		return "price DESC, created_at DESC"
	case catalog.SortPopular, catalog.SortRelevance:
		return "purchase_count DESC, created_at DESC"
	case catalog.SortDownloads:
		return "download_count DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// FindFeatured returns purchasable featured products
func (r *GormProductRepository) FindFeatured(ctx context.Context, limit int) ([]*catalog.Product, error) {
	var products []*catalog.Product
	err := r.db.WithContext(ctx).
		Where("is_featured = ? AND status = ? AND is_active = ?", true, catalog.ProductStatusActive, true).
		Order("purchase_count DESC, created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// FindLatest returns the most recently listed purchasable products
func (r *GormProductRepository) FindLatest(ctx context.Context, limit int) ([]*catalog.Product, error) {
	var products []*catalog.Product
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_active = ?", catalog.ProductStatusActive, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// FindRelated returns other purchasable products in the same category
func (r *GormProductRepository) FindRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*catalog.Product, error) {
	var products []*catalog.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ?", categoryID, excludeID).
		Where("status = ? AND is_active = ?", catalog.ProductStatusActive, true).
		Order("purchase_count DESC, created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// ExistsBySlug checks if a slug is already taken
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// IncrementPurchaseCounts atomically increments purchase counters.
// A single UPDATE keeps concurrent order completions from losing counts.
func (r *GormProductRepository) IncrementPurchaseCounts(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id IN ?", ids).
		UpdateColumn("purchase_count", gorm.Expr("purchase_count + ?", 1)).Error
}

// IncrementDownloadCount atomically increments a product's download counter
func (r *GormProductRepository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
}

// CountPurchasable returns the number of products visible to buyers
func (r *GormProductRepository) CountPurchasable(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("status = ? AND is_active = ?", catalog.ProductStatusActive, true).
		Count(&count).Error
	return count, err
}

// sellerStatsRow receives the overview aggregate scan
type sellerStatsRow struct {
	TotalProducts   int64
	ActiveProducts  int64
	PendingProducts int64
	TotalDownloads  int64
	TotalPurchases  int64
	TotalEarnings   decimal.Decimal
}

// StatsForSeller computes the dashboard overview aggregates in one query
func (r *GormProductRepository) StatsForSeller(ctx context.Context, sellerID uuid.UUID) (*catalog.SellerStats, error) {
	var row sellerStatsRow
	err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Select(`COUNT(*) AS total_products,
			COUNT(CASE WHEN status = ? THEN 1 END) AS active_products,
			COUNT(CASE WHEN status = ? THEN 1 END) AS pending_products,
			COALESCE(SUM(download_count), 0) AS total_downloads,
			COALESCE(SUM(purchase_count), 0) AS total_purchases,
			COALESCE(SUM(price * purchase_count), 0) AS total_earnings`,
			catalog.ProductStatusActive, catalog.ProductStatusPending).
		Where("seller_id = ?", sellerID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &catalog.SellerStats{
		TotalProducts:   row.TotalProducts,
		ActiveProducts:  row.ActiveProducts,
		PendingProducts: row.PendingProducts,
		TotalDownloads:  row.TotalDownloads,
		TotalPurchases:  row.TotalPurchases,
		TotalEarnings:   row.TotalEarnings,
	}, nil
}

// categoryStatsRow receives the per-category aggregate scan
type categoryStatsRow struct {
	CategoryID   uuid.UUID
	CategoryName string
	Products     int64
	Purchases    int64
	Earnings     decimal.Decimal
}

// CategoryStatsForSeller computes per-category sales rollups for a seller
func (r *GormProductRepository) CategoryStatsForSeller(ctx context.Context, sellerID uuid.UUID) ([]catalog.CategoryStats, error) {
	var rows []categoryStatsRow
	err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Select(`categories.id AS category_id,
			categories.name AS category_name,
			COUNT(products.id) AS products,
			COALESCE(SUM(products.purchase_count), 0) AS purchases,
			COALESCE(SUM(products.price * products.purchase_count), 0) AS earnings`).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.seller_id = ?", sellerID).
		Group("categories.id, categories.name").
		Order("earnings DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]catalog.CategoryStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, catalog.CategoryStats{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Products:     row.Products,
			Purchases:    row.Purchases,
			Earnings:     row.Earnings,
		})
	}
	return stats, nil
}
