package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/devmarket/backend/internal/domain/cart"
	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/identity"
	"github.com/devmarket/backend/internal/domain/order"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DownloadURLSigner issues short-lived download URLs for purchased files
type DownloadURLSigner interface {
	PresignDownload(ctx context.Context, key string, expires time.Duration) (string, error)
}

// downloadURLTTL is how long an issued download link stays valid
const downloadURLTTL = 15 * time.Minute

// CheckoutService drives the order lifecycle: cart snapshot, hosted
// checkout handoff, and the exactly-once completion sequence shared by
// the success redirect and the webhook.
type CheckoutService struct {
	orderRepo   order.OrderRepository
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	gateway     PaymentGateway
	signer      DownloadURLSigner
	eventBus    shared.EventBus
	logger      *zap.Logger
}

// CheckoutServiceConfig contains dependencies for CheckoutService
type CheckoutServiceConfig struct {
	OrderRepo   order.OrderRepository
	CartRepo    cart.CartRepository
	ProductRepo catalog.ProductRepository
	UserRepo    identity.UserRepository
	Gateway     PaymentGateway
	Signer      DownloadURLSigner
	EventBus    shared.EventBus
	Logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	return &CheckoutService{
		orderRepo:   cfg.OrderRepo,
		cartRepo:    cfg.CartRepo,
		productRepo: cfg.ProductRepo,
		userRepo:    cfg.UserRepo,
		gateway:     cfg.Gateway,
		signer:      cfg.Signer,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger,
	}
}

// CreateSession snapshots the user's cart into a pending order and opens
// a hosted checkout session for it. The cart itself is not touched; it is
// cleared only when the order completes.
func (s *CheckoutService) CreateSession(ctx context.Context, userID uuid.UUID) (*CheckoutSessionResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	userCart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrEmptyCart
		}
		return nil, err
	}
	if userCart.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}

	products, err := s.productRepo.FindByIDs(ctx, productIDsOf(userCart))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]*order.OrderItem, 0, len(userCart.Items))
	for i := range userCart.Items {
		line := &userCart.Items[i]
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "A cart item is no longer available")
		}
		// the cart line's captured price wins over the current catalog price
		item, err := order.NewOrderItem(product.ID, product.Title, product.Slug, line.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return s.openSession(ctx, user, items)
}

// BuyNow creates a single-product order bypassing the cart
func (s *CheckoutService) BuyNow(ctx context.Context, userID uuid.UUID, productSlug string) (*CheckoutSessionResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

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

	item, err := order.NewOrderItem(product.ID, product.Title, product.Slug, product.Price)
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, user, []*order.OrderItem{item})
}

// openSession persists a pending order and hands off to the gateway.
// A gateway failure abandons the order as failed; the cart is untouched
// so the buyer can retry.
func (s *CheckoutService) openSession(ctx context.Context, user *identity.User, items []*order.OrderItem) (*CheckoutSessionResponse, error) {
	o, err := order.NewOrder(user.ID, user.Email, items)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	lines := make([]SessionLine, 0, len(o.Items))
	for i := range o.Items {
		lines = append(lines, SessionLine{
			Title:       o.Items[i].ProductTitle,
			AmountCents: o.Items[i].Price.Cents(),
			Quantity:    1,
		})
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CreateSessionInput{
		OrderID: o.ID,
		UserID:  user.ID,
		Email:   user.Email,
		Lines:   lines,
	})
	if err != nil {
		s.logger.Error("Checkout session creation failed, abandoning order",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		if _, failErr := s.orderRepo.FailPending(ctx, o.ID); failErr != nil {
			s.logger.Error("Failed to abandon order after gateway error",
				zap.String("order_id", o.ID.String()),
				zap.Error(failErr))
		}
		return nil, shared.ErrPaymentGateway
	}

	if err := o.AttachStripeSession(sess.ID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Opened checkout session",
		zap.String("order_id", o.ID.String()),
		zap.String("session_id", sess.ID),
		zap.String("total", o.TotalAmount.String()))

	return &CheckoutSessionResponse{
		OrderID:     o.ID,
		CheckoutURL: sess.URL,
	}, nil
}

// ConfirmSuccess handles the buyer returning from the hosted checkout page.
// It verifies payment with the provider and runs the completion sequence;
// if the webhook got there first the conditional update no-ops.
func (s *CheckoutService) ConfirmSuccess(ctx context.Context, userID uuid.UUID, sessionID string) (*ConfirmResultResponse, error) {
	if sessionID == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID is required")
	}

	o, err := s.orderRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrForbidden
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, shared.ErrPaymentGateway
	}

	if !sess.Paid {
		return &ConfirmResultResponse{
			OrderID: o.ID,
			Status:  o.Status.String(),
			Message: "Payment not confirmed yet",
		}, nil
	}

	won, err := s.completeOrder(ctx, o, sess.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	status := order.OrderStatusCompleted
	message := ""
	if !won {
		// another confirmation already finished this order
		current, err := s.orderRepo.FindByID(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		status = current.Status
		message = "Order was already finalized"
	}

	return &ConfirmResultResponse{
		OrderID:   o.ID,
		Status:    status.String(),
		Completed: status == order.OrderStatusCompleted,
		Message:   message,
	}, nil
}

// completeOrder runs the exactly-once completion sequence. The
// status-guarded update elects a single winner; only the winner clears
// the buyer's cart and bumps purchase counters.
func (s *CheckoutService) completeOrder(ctx context.Context, o *order.Order, paymentIntentID string) (bool, error) {
	won, err := s.orderRepo.CompletePending(ctx, o.ID, paymentIntentID)
	if err != nil {
		return false, err
	}
	if !won {
		s.logger.Debug("Completion lost the status race, skipping side effects",
			zap.String("order_id", o.ID.String()))
		return false, nil
	}

	if err := s.cartRepo.ClearByUserID(ctx, o.UserID); err != nil {
		s.logger.Error("Failed to clear cart after completion",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	if err := s.productRepo.IncrementPurchaseCounts(ctx, o.ProductIDs()); err != nil {
		s.logger.Error("Failed to increment purchase counters",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	if err := o.Complete(paymentIntentID); err == nil {
		s.publishEvents(ctx, o)
	}

	s.logger.Info("Order completed",
		zap.String("order_id", o.ID.String()),
		zap.String("payment_intent_id", paymentIntentID),
		zap.String("total", o.TotalAmount.String()))

	return true, nil
}

// ListOrders returns a buyer's order history, newest first, with
// download links attached to items of completed orders.
func (s *CheckoutService) ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) (*shared.Paginated[OrderResponse], error) {
	orders, total, err := s.orderRepo.FindAllForUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp := ToOrderResponse(o)
		if o.IsCompleted() {
			s.attachDownloadURLs(ctx, o, &resp)
		}
		responses = append(responses, resp)
	}

	result := shared.NewPaginated(responses, total, page, pageSize)
	return &result, nil
}

// GetOrder returns a single order scoped to its owner
func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	if o.IsCompleted() {
		s.attachDownloadURLs(ctx, o, &resp)
	}
	return &resp, nil
}

// DownloadItem issues a download link for a purchased product and
// counts the download
func (s *CheckoutService) DownloadItem(ctx context.Context, userID, orderID, productID uuid.UUID) (string, error) {
	o, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return "", err
	}
	if !o.IsCompleted() {
		return "", shared.ErrInvalidState
	}

	var item *order.OrderItem
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			item = &o.Items[i]
			break
		}
	}
	if item == nil {
		return "", shared.ErrNotFound
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return "", err
	}
	if product.MainFileKey == "" {
		return "", shared.NewDomainError("NO_FILE", "Product has no downloadable file")
	}

	url, err := s.signer.PresignDownload(ctx, product.MainFileKey, downloadURLTTL)
	if err != nil {
		return "", err
	}

	if err := s.productRepo.IncrementDownloadCount(ctx, productID); err != nil {
		s.logger.Error("Failed to increment download counter",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}

	return url, nil
}

func (s *CheckoutService) attachDownloadURLs(ctx context.Context, o *order.Order, resp *OrderResponse) {
	if s.signer == nil {
		return
	}

	products, err := s.productRepo.FindByIDs(ctx, o.ProductIDs())
	if err != nil {
		s.logger.Warn("Failed to load products for download links",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return
	}
	keys := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		keys[p.ID] = p.MainFileKey
	}

	for i := range resp.Items {
		key := keys[resp.Items[i].ProductID]
		if key == "" {
			continue
		}
		url, err := s.signer.PresignDownload(ctx, key, downloadURLTTL)
		if err != nil {
			s.logger.Warn("Failed to presign download URL",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
			continue
		}
		resp.Items[i].DownloadURL = url
	}
}

func (s *CheckoutService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventBus == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}

func productIDsOf(c *cart.Cart) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for i := range c.Items {
		ids = append(ids, c.Items[i].ProductID)
	}
	return ids
}
