package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/devmarket/backend/internal/domain/cart"
	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/identity"
	"github.com/devmarket/backend/internal/domain/order"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Stateful in-memory fakes. The order fake reproduces the status-guarded
// update semantics so the exactly-once tests mean something.

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*order.Order, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil || o.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) FindBySessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.StripeSessionID == sessionID {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.StripePaymentIntentID == paymentIntentID {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindAllForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeOrderRepo) CompletePending(ctx context.Context, id uuid.UUID, paymentIntentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != order.OrderStatusPending {
		return false, nil
	}
	now := time.Now()
	o.Status = order.OrderStatusCompleted
	o.StripePaymentIntentID = paymentIntentID
	o.CompletedAt = &now
	return true, nil
}

func (r *fakeOrderRepo) FailPending(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != order.OrderStatusPending {
		return false, nil
	}
	o.Status = order.OrderStatusFailed
	return true, nil
}

func (r *fakeOrderRepo) RefundPending(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != order.OrderStatusPending {
		return false, nil
	}
	o.Status = order.OrderStatusRefunded
	return true, nil
}

func (r *fakeOrderRepo) HasCompletedOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID != userID || !o.IsCompleted() {
			continue
		}
		for i := range o.Items {
			if o.Items[i].ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeCartRepo struct {
	mu         sync.Mutex
	carts      map[uuid.UUID]*cart.Cart
	clearCalls int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[uuid.UUID]*cart.Cart)}
}

func (r *fakeCartRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[userID]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCartRepo) FindOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[userID]; ok {
		return c, nil
	}
	c, err := cart.NewCart(userID)
	if err != nil {
		return nil, err
	}
	r.carts[userID] = c
	return c, nil
}

func (r *fakeCartRepo) Save(ctx context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[c.UserID] = c
	return nil
}

func (r *fakeCartRepo) ClearByUserID(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearCalls++
	if c, ok := r.carts[userID]; ok {
		c.Clear()
	}
	return nil
}

type fakeProductRepo struct {
	mu                 sync.Mutex
	products           map[uuid.UUID]*catalog.Product
	purchaseIncrements map[uuid.UUID]int
	downloadIncrements map[uuid.UUID]int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:           make(map[uuid.UUID]*catalog.Product),
		purchaseIncrements: make(map[uuid.UUID]int),
		downloadIncrements: make(map[uuid.UUID]int),
	}
}

func (r *fakeProductRepo) add(p *catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *fakeProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	r.add(p)
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	r.add(p)
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindActiveBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	p, err := r.FindBySlug(ctx, slug)
	if err != nil || !p.IsPurchasable() {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakeProductRepo) Search(ctx context.Context, filter catalog.SearchFilter) ([]*catalog.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) FindFeatured(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindLatest(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) FindRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	_, err := r.FindBySlug(ctx, slug)
	return err == nil, nil
}

func (r *fakeProductRepo) IncrementPurchaseCounts(ctx context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.purchaseIncrements[id]++
		if p, ok := r.products[id]; ok {
			p.PurchaseCount++
		}
	}
	return nil
}

func (r *fakeProductRepo) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloadIncrements[id]++
	if p, ok := r.products[id]; ok {
		p.DownloadCount++
	}
	return nil
}

func (r *fakeProductRepo) CountPurchasable(ctx context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) StatsForSeller(ctx context.Context, sellerID uuid.UUID) (*catalog.SellerStats, error) {
	return &catalog.SellerStats{}, nil
}

func (r *fakeProductRepo) CategoryStatsForSeller(ctx context.Context, sellerID uuid.UUID) ([]catalog.CategoryStats, error) {
	return nil, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *fakeUserRepo) add(u *identity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *fakeUserRepo) Create(ctx context.Context, u *identity.User) error {
	r.add(u)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *identity.User) error {
	r.add(u)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type fakeGateway struct {
	mu       sync.Mutex
	sessions map[string]*Session
	failNext bool
	created  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: make(map[string]*Session)}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, input CreateSessionInput) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failNext {
		return nil, shared.ErrPaymentGateway
	}
	g.created++
	sess := &Session{
		ID:  "cs_test_" + uuid.NewString(),
		URL: "https://checkout.stripe.test/" + input.OrderID.String(),
	}
	g.sessions[sess.ID] = sess
	return sess, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sess, ok := g.sessions[sessionID]; ok {
		return sess, nil
	}
	return nil, shared.ErrNotFound
}

func (g *fakeGateway) markPaid(sessionID, paymentIntentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sess, ok := g.sessions[sessionID]; ok {
		sess.Paid = true
		sess.PaymentIntentID = paymentIntentID
	}
}

type fakeSigner struct{}

func (fakeSigner) PresignDownload(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}
