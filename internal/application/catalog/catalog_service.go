package catalog

import (
	"context"

	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/identity"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	homeFeedLimit    = 8
	relatedLimit     = 4
	maxCategoryDepth = 32
)

// CatalogService is the public, read-only side of the catalog
type CatalogService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	userRepo     identity.UserRepository
	logger       *zap.Logger
}

// CatalogServiceConfig contains dependencies for the catalog service
type CatalogServiceConfig struct {
	ProductRepo  catalog.ProductRepository
	CategoryRepo catalog.CategoryRepository
	UserRepo     identity.UserRepository
	Logger       *zap.Logger
}

// NewCatalogService creates a new catalog read service
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	return &CatalogService{
		productRepo:  cfg.ProductRepo,
		categoryRepo: cfg.CategoryRepo,
		userRepo:     cfg.UserRepo,
		logger:       cfg.Logger,
	}
}

// Home builds the marketplace landing feed
func (s *CatalogService) Home(ctx context.Context) (*HomeResponse, error) {
	roots, err := s.categoryRepo.FindRoots(ctx)
	if err != nil {
		return nil, err
	}

	featured, err := s.productRepo.FindFeatured(ctx, homeFeedLimit)
	if err != nil {
		return nil, err
	}

	latest, err := s.productRepo.FindLatest(ctx, homeFeedLimit)
	if err != nil {
		return nil, err
	}

	total, err := s.productRepo.CountPurchasable(ctx)
	if err != nil {
		return nil, err
	}

	return &HomeResponse{
		Categories:    toCategoryResponses(roots),
		Featured:      toProductCards(featured),
		Latest:        toProductCards(latest),
		TotalProducts: total,
	}, nil
}

// GetProduct returns the product detail page for a purchasable product
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*ProductDetailResponse, error) {
	product, err := s.productRepo.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	detail := ProductDetailResponse{
		ProductCardResponse: toProductCard(product),
		Description:         product.Description,
		FileSize:            product.FileSize,
		Compatibility:       product.Compatibility,
		PreviewFileKey:      product.PreviewFileKey,
		SellerID:            product.SellerID,
		Related:             []ProductCardResponse{},
	}

	if seller, err := s.userRepo.FindByID(ctx, product.SellerID); err == nil {
		detail.SellerUsername = seller.Username
	} else {
		s.logger.Warn("Seller lookup failed for product page",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}

	if category, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err == nil {
		resp := toCategoryResponse(category)
		detail.Category = &resp
	}

	related, err := s.productRepo.FindRelated(ctx, product.CategoryID, product.ID, relatedLimit)
	if err != nil {
		s.logger.Warn("Related products lookup failed", zap.Error(err))
	} else {
		detail.Related = toProductCards(related)
	}

	return &detail, nil
}

// GetCategoryPage returns a category with its subcategories and a
// paginated listing of products in the category and all its descendants
func (s *CatalogService) GetCategoryPage(ctx context.Context, slug string, req SearchRequest) (*CategoryPageResponse, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, shared.ErrNotFound
	}

	children, err := s.categoryRepo.FindChildren(ctx, category.ID)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := s.collectDescendants(ctx, category.ID)
	if err != nil {
		return nil, err
	}

	filter, err := buildSearchFilter(req)
	if err != nil {
		return nil, err
	}
	filter.CategoryIDs = categoryIDs
	filter.OnlyPurchasable = true

	products, total, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &CategoryPageResponse{
		Category:      toCategoryResponse(category),
		Subcategories: toCategoryResponses(children),
		Products:      toSearchResponse(products, total, filter),
	}, nil
}

// Search runs a buyer-facing product search
func (s *CatalogService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	filter, err := buildSearchFilter(req)
	if err != nil {
		return nil, err
	}
	filter.OnlyPurchasable = true

	if req.Category != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		filter.CategoryIDs, err = s.collectDescendants(ctx, category.ID)
		if err != nil {
			return nil, err
		}
	}

	products, total, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := toSearchResponse(products, total, filter)
	return &resp, nil
}

// collectDescendants walks the category tree breadth-first and returns
// the category plus every active descendant. Depth is capped so a
// corrupted tree cannot loop forever.
func (s *CatalogService) collectDescendants(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{rootID}
	frontier := []uuid.UUID{rootID}
	seen := map[uuid.UUID]bool{rootID: true}

	for depth := 0; len(frontier) > 0 && depth < maxCategoryDepth; depth++ {
		var next []uuid.UUID
		for _, id := range frontier {
			children, err := s.categoryRepo.FindChildren(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if seen[child.ID] {
					continue
				}
				seen[child.ID] = true
				ids = append(ids, child.ID)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}

	return ids, nil
}

// buildSearchFilter validates and converts request params into a domain filter
func buildSearchFilter(req SearchRequest) (catalog.SearchFilter, error) {
	filter := catalog.NewSearchFilter()
	filter.Query = req.Query
	filter.FileFormat = req.FileFormat

	if req.Sort != "" {
		sort := catalog.SortOption(req.Sort)
		if !sort.IsValid() {
			return filter, shared.NewDomainError("INVALID_SORT", "Unknown sort option")
		}
		filter.Sort = sort
	}

	if req.MinPrice != "" {
		min, err := decimal.NewFromString(req.MinPrice)
		if err != nil || min.IsNegative() {
			return filter, shared.NewDomainError("INVALID_PRICE_FILTER", "min_price must be a non-negative number")
		}
		filter.MinPrice = &min
	}
	if req.MaxPrice != "" {
		max, err := decimal.NewFromString(req.MaxPrice)
		if err != nil || max.IsNegative() {
			return filter, shared.NewDomainError("INVALID_PRICE_FILTER", "max_price must be a non-negative number")
		}
		filter.MaxPrice = &max
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return filter, shared.NewDomainError("INVALID_PRICE_FILTER", "min_price cannot exceed max_price")
	}

	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	return filter, nil
}
