package dashboard

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/identity"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	overviewRowLimit = 5
	topProductLimit  = 10
)

// UploadURLSigner issues presigned PUT URLs for seller file uploads
type UploadURLSigner interface {
	PresignUpload(ctx context.Context, key string, expires time.Duration) (string, error)
}

// DashboardService is the seller-facing management surface
type DashboardService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	userRepo     identity.UserRepository
	uploader     UploadURLSigner
	uploadTTL    time.Duration
	eventBus     shared.EventBus
	logger       *zap.Logger
}

// DashboardServiceConfig contains dependencies for the dashboard service
type DashboardServiceConfig struct {
	ProductRepo  catalog.ProductRepository
	CategoryRepo catalog.CategoryRepository
	UserRepo     identity.UserRepository
	Uploader     UploadURLSigner
	UploadTTL    time.Duration
	EventBus     shared.EventBus
	Logger       *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(cfg DashboardServiceConfig) *DashboardService {
	ttl := cfg.UploadTTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &DashboardService{
		productRepo:  cfg.ProductRepo,
		categoryRepo: cfg.CategoryRepo,
		userRepo:     cfg.UserRepo,
		uploader:     cfg.Uploader,
		uploadTTL:    ttl,
		eventBus:     cfg.EventBus,
		logger:       cfg.Logger,
	}
}

// Overview returns the seller's headline metrics with recent and
// best-selling products
func (s *DashboardService) Overview(ctx context.Context, sellerID uuid.UUID) (*OverviewResponse, error) {
	stats, err := s.productRepo.StatsForSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	recentFilter := catalog.NewSearchFilter()
	recentFilter.SellerID = &sellerID
	recentFilter.Sort = catalog.SortNewest
	recentFilter.PageSize = overviewRowLimit
	recent, _, err := s.productRepo.Search(ctx, recentFilter)
	if err != nil {
		return nil, err
	}

	popularFilter := catalog.NewSearchFilter()
	popularFilter.SellerID = &sellerID
	popularFilter.Sort = catalog.SortPopular
	popularFilter.PageSize = overviewRowLimit
	popular, _, err := s.productRepo.Search(ctx, popularFilter)
	if err != nil {
		return nil, err
	}

	return &OverviewResponse{
		TotalProducts:   stats.TotalProducts,
		ActiveProducts:  stats.ActiveProducts,
		PendingProducts: stats.PendingProducts,
		TotalDownloads:  stats.TotalDownloads,
		TotalPurchases:  stats.TotalPurchases,
		TotalEarnings:   stats.TotalEarnings,
		Recent:          toProductRows(recent),
		Popular:         toProductRows(popular),
	}, nil
}

// ListProducts returns the seller's products with status filter,
// search, and pagination
func (s *DashboardService) ListProducts(ctx context.Context, sellerID uuid.UUID, req ListProductsRequest) (*ProductListResponse, error) {
	filter := catalog.NewSearchFilter()
	filter.SellerID = &sellerID
	filter.Query = req.Query
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	if req.Status != "" {
		status := catalog.ProductStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown product status")
		}
		filter.Status = &status
	}

	products, total, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	return &ProductListResponse{
		Items:      toProductRows(products),
		TotalCount: total,
		Page:       page,
		PageSize:   filter.Limit(),
	}, nil
}

// CreateProduct creates a draft listing for the seller, optionally
// submitting it for review in the same call
func (s *DashboardService) CreateProduct(ctx context.Context, sellerID uuid.UUID, req SaveProductRequest) (*ProductRow, error) {
	seller, err := s.userRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !seller.CanSell() {
		return nil, shared.ErrForbidden
	}

	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category does not exist")
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(sellerID, req.CategoryID, req.Title, req.Description, price)
	if err != nil {
		return nil, err
	}

	taken, err := s.productRepo.ExistsBySlug(ctx, product.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("PRODUCT_EXISTS", "A product with this title already exists")
	}

	product.ShortDescription = req.ShortDescription
	if err := s.applyListingDetails(product, req); err != nil {
		return nil, err
	}

	if req.SubmitForReview {
		if err := product.Submit(); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product.GetDomainEvents())
	product.ClearDomainEvents()

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", sellerID.String()),
		zap.String("status", product.Status.String()))

	row := toProductRow(product)
	return &row, nil
}

// UpdateProduct updates a listing. Only the owner (or an admin) may
// touch it.
func (s *DashboardService) UpdateProduct(ctx context.Context, actorID, productID uuid.UUID, req SaveProductRequest) (*ProductRow, error) {
	product, err := s.loadOwnedProduct(ctx, actorID, productID)
	if err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category does not exist")
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.CategoryID, req.Title, req.Description, req.ShortDescription, price); err != nil {
		return nil, err
	}
	if err := s.applyListingDetails(product, req); err != nil {
		return nil, err
	}

	resubmittable := product.Status == catalog.ProductStatusDraft || product.Status == catalog.ProductStatusRejected
	if req.SubmitForReview && resubmittable {
		if err := product.Submit(); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product.GetDomainEvents())
	product.ClearDomainEvents()

	row := toProductRow(product)
	return &row, nil
}

// ToggleActive flips the listing's visibility switch
func (s *DashboardService) ToggleActive(ctx context.Context, actorID, productID uuid.UUID) (*ProductRow, error) {
	product, err := s.loadOwnedProduct(ctx, actorID, productID)
	if err != nil {
		return nil, err
	}

	product.ToggleActive()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	row := toProductRow(product)
	return &row, nil
}

// ToggleFeatured flips the featured flag. Admin only.
func (s *DashboardService) ToggleFeatured(ctx context.Context, actorID, productID uuid.UUID) (*ProductRow, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModerate() {
		return nil, shared.ErrForbidden
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	product.SetFeatured(!product.IsFeatured)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	row := toProductRow(product)
	return &row, nil
}

// Analytics computes the seller's top products and category rollups.
// Earnings are price times purchases; conversion divides purchases by
// downloads, treating zero downloads as one to keep the rate defined.
func (s *DashboardService) Analytics(ctx context.Context, sellerID uuid.UUID) (*AnalyticsResponse, error) {
	filter := catalog.NewSearchFilter()
	filter.SellerID = &sellerID
	filter.Sort = catalog.SortPopular
	filter.PageSize = topProductLimit

	products, _, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	top := make([]TopProduct, 0, len(products))
	for _, p := range products {
		purchases := decimal.NewFromInt(p.PurchaseCount)
		downloads := p.DownloadCount
		if downloads < 1 {
			downloads = 1
		}
		top = append(top, TopProduct{
			ProductRow:     toProductRow(p),
			Earnings:       p.Price.Amount().Mul(purchases),
			ConversionRate: purchases.Div(decimal.NewFromInt(downloads)).Round(4),
		})
	}

	categoryStats, err := s.productRepo.CategoryStatsForSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	rollups := make([]CategoryRollup, 0, len(categoryStats))
	for _, cs := range categoryStats {
		rollups = append(rollups, CategoryRollup{
			CategoryID:   cs.CategoryID,
			CategoryName: cs.CategoryName,
			Products:     cs.Products,
			Purchases:    cs.Purchases,
			Earnings:     cs.Earnings,
		})
	}

	return &AnalyticsResponse{
		TopProducts: top,
		Categories:  rollups,
	}, nil
}

// UploadURL issues a presigned PUT URL for a product file. The key is
// namespaced by seller and product so uploads never collide.
func (s *DashboardService) UploadURL(ctx context.Context, actorID, productID uuid.UUID, req UploadURLRequest) (*UploadURLResponse, error) {
	product, err := s.loadOwnedProduct(ctx, actorID, productID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(req.Filename))
	key := fmt.Sprintf("products/%s/%s/%s%s", product.SellerID, product.ID, req.Kind, ext)

	url, err := s.uploader.PresignUpload(ctx, key, s.uploadTTL)
	if err != nil {
		s.logger.Error("Failed to presign upload URL",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_ERROR", "Could not create upload URL")
	}

	return &UploadURLResponse{
		URL:       url,
		Key:       key,
		ExpiresAt: time.Now().Add(s.uploadTTL),
	}, nil
}

// loadOwnedProduct fetches a product and enforces ownership, letting
// admins through
func (s *DashboardService) loadOwnedProduct(ctx context.Context, actorID, productID uuid.UUID) (*catalog.Product, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !product.IsOwnedBy(actorID) && !actor.CanModerate() {
		return nil, shared.ErrForbidden
	}
	return product, nil
}

func (s *DashboardService) applyListingDetails(product *catalog.Product, req SaveProductRequest) error {
	if err := product.SetTags(req.Tags); err != nil {
		return err
	}
	product.SetFileMetadata(req.FileFormat, req.FileSize, req.Compatibility)
	product.SetStorageKeys(req.MainFileKey, req.PreviewFileKey, req.FeaturedImageKey)
	return nil
}

func (s *DashboardService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}

func parsePrice(raw string) (valueobject.Money, error) {
	price, err := valueobject.NewMoneyFromString(raw)
	if err != nil {
		return valueobject.Money{}, shared.NewDomainError("INVALID_PRICE", "Price must be a valid decimal amount")
	}
	return price, nil
}
