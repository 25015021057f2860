package cart

import (
	"context"

	"github.com/devmarket/backend/internal/domain/cart"
	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/order"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService handles cart operations for buyers
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	orderRepo   order.OrderRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	orderRepo order.OrderRepository,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		logger:      logger,
	}
}

// GetCart returns the user's cart, creating an empty one on first use
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.cartRepo.FindOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, c)
	if err != nil {
		return nil, err
	}

	resp := toCartResponse(c, products)
	return &resp, nil
}

// AddItem puts a purchasable product into the cart with its price
// captured now. Re-adding the same product changes nothing.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, productSlug string) (*AddItemResponse, error) {
	product, err := s.productRepo.FindActiveBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	purchased, err := s.orderRepo.HasCompletedOrderWithProduct(ctx, userID, product.ID)
	if err != nil {
		return nil, err
	}
	if purchased {
		return nil, shared.ErrAlreadyPurchased
	}

	c, err := s.cartRepo.FindOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	_, added, err := c.AddProduct(product.ID, product.Price)
	if err != nil {
		return nil, err
	}
	if added {
		if err := s.cartRepo.Save(ctx, c); err != nil {
			return nil, err
		}
		s.logger.Debug("Product added to cart",
			zap.String("user_id", userID.String()),
			zap.String("product_id", product.ID.String()))
	}

	products, err := s.loadProducts(ctx, c)
	if err != nil {
		return nil, err
	}

	return &AddItemResponse{
		Added: added,
		Cart:  toCartResponse(c, products),
	}, nil
}

// RemoveItem takes a product line out of the cart
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, productSlug string) (*CartResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	c, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.RemoveProduct(product.ID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, c)
	if err != nil {
		return nil, err
	}

	resp := toCartResponse(c, products)
	return &resp, nil
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.ClearByUserID(ctx, userID)
}

// Count returns the number of lines in the user's cart
func (s *CartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	c, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return c.ItemCount(), nil
}

func (s *CartService) loadProducts(ctx context.Context, c *cart.Cart) (map[uuid.UUID]*catalog.Product, error) {
	if c.IsEmpty() {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(c.Items))
	for i := range c.Items {
		ids = append(ids, c.Items[i].ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}
