package catalog

import (
	"context"
	"testing"

	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCategoryFixture(t *testing.T) (*CategoryService, *fakeCategoryRepo) {
	t.Helper()
	repo := newFakeCategoryRepo()
	return NewCategoryService(repo, zap.NewNop()), repo
}

func TestCreateCategory(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	resp, err := svc.Create(context.Background(), CreateCategoryRequest{
		Name:        "UI Kits",
		Description: "Complete interface kits",
		SortOrder:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, "UI Kits", resp.Name)
	assert.Equal(t, "ui-kits", resp.Slug)
	assert.Equal(t, 2, resp.SortOrder)
	assert.True(t, resp.IsActive)
	assert.Nil(t, resp.ParentID)
}

func TestCreateCategoryUnderParent(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	parent, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Design"})
	require.NoError(t, err)

	child, err := svc.Create(context.Background(), CreateCategoryRequest{
		Name:     "Icons",
		ParentID: &parent.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Icons"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateCategoryRequest{Name: "Icons"})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CATEGORY_EXISTS", domainErr.Code)
}

func TestCreateCategoryRejectsMissingParent(t *testing.T) {
	svc, _ := newCategoryFixture(t)
	missing := uuid.New()

	_, err := svc.Create(context.Background(), CreateCategoryRequest{
		Name:     "Icons",
		ParentID: &missing,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CATEGORY_PARENT", domainErr.Code)
}

func TestUpdateCategoryRejectsSelfParent(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	c, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Icons"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), c.ID, UpdateCategoryRequest{
		Name:     "Icons",
		ParentID: &c.ID,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CATEGORY_PARENT", domainErr.Code)
}

func TestUpdateCategoryRejectsCycle(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	// a -> b -> c, then try to re-parent a under c
	a, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)
	c, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "C", ParentID: &b.ID})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), a.ID, UpdateCategoryRequest{
		Name:     "A",
		ParentID: &c.ID,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CATEGORY_PARENT", domainErr.Code)
}

func TestUpdateCategoryReparentAndDeactivate(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	a, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "B"})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), b.ID, UpdateCategoryRequest{
		Name:     "B2",
		ParentID: &a.ID,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "B2", updated.Name)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, a.ID, *updated.ParentID)
	assert.False(t, updated.IsActive)
}

func TestDeleteCategory(t *testing.T) {
	svc, repo := newCategoryFixture(t)

	c, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Icons"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), c.ID))

	_, err = repo.FindByID(context.Background(), c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteCategoryWithProductsRejected(t *testing.T) {
	svc, repo := newCategoryFixture(t)

	c, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Icons"})
	require.NoError(t, err)
	repo.products[c.ID] = 3

	err = svc.Delete(context.Background(), c.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CATEGORY_IN_USE", domainErr.Code)
}

func TestDeleteCategoryWithChildrenRejected(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	parent, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Design"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateCategoryRequest{Name: "Icons", ParentID: &parent.ID})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), parent.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CATEGORY_IN_USE", domainErr.Code)
}

func TestListCategories(t *testing.T) {
	svc, _ := newCategoryFixture(t)

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Icons"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateCategoryRequest{Name: "Fonts"})
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
