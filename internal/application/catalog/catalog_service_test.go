package catalog

import (
	"context"
	"sort"
	"testing"

	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/identity"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*catalog.Category
	products   map[uuid.UUID]int // categoryID -> product count
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: make(map[uuid.UUID]*catalog.Category),
		products:   make(map[uuid.UUID]int),
	}
}

func (r *fakeCategoryRepo) Create(ctx context.Context, c *catalog.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, c *catalog.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	if c, ok := r.categories[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context) ([]*catalog.Category, error) {
	out := make([]*catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCategoryRepo) FindRoots(ctx context.Context) ([]*catalog.Category, error) {
	var out []*catalog.Category
	for _, c := range r.categories {
		if c.ParentID == nil && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindChildren(ctx context.Context, parentID uuid.UUID) ([]*catalog.Category, error) {
	var out []*catalog.Category
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == parentID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	_, err := r.FindBySlug(ctx, slug)
	return err == nil, nil
}

func (r *fakeCategoryRepo) HasProducts(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.products[id] > 0, nil
}

func (r *fakeCategoryRepo) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeProductRepo struct {
	catalog.ProductRepository
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *fakeProductRepo) add(p *catalog.Product) { r.products[p.ID] = p }

func (r *fakeProductRepo) purchasable() []*catalog.Product {
	var out []*catalog.Product
	for _, p := range r.products {
		if p.IsPurchasable() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (r *fakeProductRepo) FindActiveBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug && p.IsPurchasable() {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) Search(ctx context.Context, filter catalog.SearchFilter) ([]*catalog.Product, int64, error) {
	var out []*catalog.Product
	for _, p := range r.purchasable() {
		if len(filter.CategoryIDs) > 0 && !containsID(filter.CategoryIDs, p.CategoryID) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) FindFeatured(ctx context.Context, limit int) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, p := range r.purchasable() {
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindLatest(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return r.purchasable(), nil
}

func (r *fakeProductRepo) FindRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, p := range r.purchasable() {
		if p.CategoryID == categoryID && p.ID != excludeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) CountPurchasable(ctx context.Context) (int64, error) {
	return int64(len(r.purchasable())), nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type fakeUserRepo struct {
	identity.UserRepository
	users map[uuid.UUID]*identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

type catalogFixture struct {
	svc        *CatalogService
	categories *fakeCategoryRepo
	products   *fakeProductRepo
	users      *fakeUserRepo
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	f := &catalogFixture{
		categories: newFakeCategoryRepo(),
		products:   newFakeProductRepo(),
		users:      newFakeUserRepo(),
	}
	f.svc = NewCatalogService(CatalogServiceConfig{
		ProductRepo:  f.products,
		CategoryRepo: f.categories,
		UserRepo:     f.users,
		Logger:       zap.NewNop(),
	})
	return f
}

func (f *catalogFixture) addCategory(t *testing.T, name string, parent *catalog.Category) *catalog.Category {
	t.Helper()
	var c *catalog.Category
	var err error
	if parent == nil {
		c, err = catalog.NewCategory(name)
	} else {
		c, err = catalog.NewChildCategory(name, parent)
	}
	require.NoError(t, err)
	f.categories.categories[c.ID] = c
	return c
}

func (f *catalogFixture) addActiveProduct(t *testing.T, title string, categoryID uuid.UUID) *catalog.Product {
	t.Helper()
	seller, err := identity.NewUser("seller"+uuid.NewString()[:8], uuid.NewString()[:8]+"@example.com", "password123", identity.RoleSeller)
	require.NoError(t, err)
	f.users.users[seller.ID] = seller

	price, err := valueobject.NewMoneyFromString("9.99")
	require.NoError(t, err)
	p, err := catalog.NewProduct(seller.ID, categoryID, title, "desc", price)
	require.NoError(t, err)
	require.NoError(t, p.Submit())
	require.NoError(t, p.Approve())
	f.products.add(p)
	return p
}

func TestHome(t *testing.T) {
	f := newCatalogFixture(t)
	root := f.addCategory(t, "Icons", nil)
	p1 := f.addActiveProduct(t, "Icon Pack", root.ID)
	p1.SetFeatured(true)
	f.addActiveProduct(t, "Font Bundle", root.ID)

	home, err := f.svc.Home(context.Background())
	require.NoError(t, err)

	assert.Len(t, home.Categories, 1)
	assert.Len(t, home.Featured, 1)
	assert.Equal(t, "Icon Pack", home.Featured[0].Title)
	assert.Len(t, home.Latest, 2)
	assert.Equal(t, int64(2), home.TotalProducts)
}

func TestGetProduct(t *testing.T) {
	f := newCatalogFixture(t)
	root := f.addCategory(t, "Icons", nil)
	p := f.addActiveProduct(t, "Icon Pack", root.ID)
	f.addActiveProduct(t, "Other Pack", root.ID)

	detail, err := f.svc.GetProduct(context.Background(), p.Slug)
	require.NoError(t, err)

	assert.Equal(t, "Icon Pack", detail.Title)
	assert.NotEmpty(t, detail.SellerUsername)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "Icons", detail.Category.Name)
	require.Len(t, detail.Related, 1)
	assert.Equal(t, "Other Pack", detail.Related[0].Title)
}

func TestGetProductHiddenIsNotFound(t *testing.T) {
	f := newCatalogFixture(t)
	root := f.addCategory(t, "Icons", nil)
	p := f.addActiveProduct(t, "Icon Pack", root.ID)
	p.ToggleActive()

	_, err := f.svc.GetProduct(context.Background(), p.Slug)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetCategoryPageIncludesDescendantProducts(t *testing.T) {
	f := newCatalogFixture(t)
	root := f.addCategory(t, "Design", nil)
	child := f.addCategory(t, "Icons", root)
	grandchild := f.addCategory(t, "Flat Icons", child)

	f.addActiveProduct(t, "Root Product", root.ID)
	f.addActiveProduct(t, "Child Product", child.ID)
	f.addActiveProduct(t, "Grandchild Product", grandchild.ID)
	other := f.addCategory(t, "Fonts", nil)
	f.addActiveProduct(t, "Unrelated", other.ID)

	page, err := f.svc.GetCategoryPage(context.Background(), root.Slug, SearchRequest{})
	require.NoError(t, err)

	assert.Equal(t, "Design", page.Category.Name)
	require.Len(t, page.Subcategories, 1)
	assert.Equal(t, "Icons", page.Subcategories[0].Name)
	assert.Equal(t, int64(3), page.Products.TotalCount)
}

func TestGetCategoryPageInactiveIsNotFound(t *testing.T) {
	f := newCatalogFixture(t)
	root := f.addCategory(t, "Design", nil)
	root.Deactivate()

	_, err := f.svc.GetCategoryPage(context.Background(), root.Slug, SearchRequest{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSearchRejectsInvalidSort(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.Search(context.Background(), SearchRequest{Sort: "sideways"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SORT", domainErr.Code)
}

func TestSearchRejectsInvalidPriceRange(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.Search(context.Background(), SearchRequest{MinPrice: "10", MaxPrice: "5"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRICE_FILTER", domainErr.Code)
}

func TestSearchByCategorySlug(t *testing.T) {
	f := newCatalogFixture(t)
	icons := f.addCategory(t, "Icons", nil)
	fonts := f.addCategory(t, "Fonts", nil)
	f.addActiveProduct(t, "Icon Pack", icons.ID)
	f.addActiveProduct(t, "Font Bundle", fonts.ID)

	resp, err := f.svc.Search(context.Background(), SearchRequest{Category: "icons"})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Icon Pack", resp.Items[0].Title)
}
