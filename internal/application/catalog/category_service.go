package catalog

import (
	"context"

	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles admin category management
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category management service
func NewCategoryService(categoryRepo catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// List returns every category, active or not, for the admin tree view
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toCategoryResponses(categories), nil
}

// Create creates a category, optionally under a parent
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}

	taken, err := s.categoryRepo.ExistsBySlug(ctx, category.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("CATEGORY_EXISTS", "A category with this name already exists")
	}

	if err := category.Update(req.Name, req.Description, req.MetaDescription, req.Icon, req.SortOrder); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *req.ParentID); err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY_PARENT", "Parent category does not exist")
		}
		if err := category.SetParent(req.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug))

	resp := toCategoryResponse(category)
	return &resp, nil
}

// Update updates a category. Re-parenting is validated against the
// ancestor chain so the tree stays acyclic.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Update(req.Name, req.Description, req.MetaDescription, req.Icon, req.SortOrder); err != nil {
		return nil, err
	}

	if !parentUnchanged(category.ParentID, req.ParentID) {
		if req.ParentID != nil {
			if err := s.validateParent(ctx, id, *req.ParentID); err != nil {
				return nil, err
			}
		}
		if err := category.SetParent(req.ParentID); err != nil {
			return nil, err
		}
	}

	if req.IsActive != nil {
		if *req.IsActive {
			category.Activate()
		} else {
			category.Deactivate()
		}
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	resp := toCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category that has no products and no children
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	hasProducts, err := s.categoryRepo.HasProducts(ctx, id)
	if err != nil {
		return err
	}
	if hasProducts {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category still has products")
	}

	hasChildren, err := s.categoryRepo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category still has subcategories")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

// validateParent walks up from the proposed parent; finding the
// category itself on the way means the move would create a cycle.
func (s *CategoryService) validateParent(ctx context.Context, categoryID, parentID uuid.UUID) error {
	if parentID == categoryID {
		return shared.NewDomainError("INVALID_CATEGORY_PARENT", "A category cannot be its own parent")
	}

	current := parentID
	for depth := 0; depth < maxCategoryDepth; depth++ {
		parent, err := s.categoryRepo.FindByID(ctx, current)
		if err != nil {
			return shared.NewDomainError("INVALID_CATEGORY_PARENT", "Parent category does not exist")
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == categoryID {
			return shared.NewDomainError("INVALID_CATEGORY_PARENT", "Cannot move a category under its own descendant")
		}
		current = *parent.ParentID
	}

	return shared.NewDomainError("INVALID_CATEGORY_PARENT", "Category tree is too deep")
}

func parentUnchanged(current, proposed *uuid.UUID) bool {
	if current == nil && proposed == nil {
		return true
	}
	if current != nil && proposed != nil {
		return *current == *proposed
	}
	return false
}
