package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// Create creates a new category
	Create(ctx context.Context, category *Category) error

	// Update updates an existing category
	Update(ctx context.Context, category *Category) error

	// Delete deletes a category by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a category by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindBySlug finds a category by slug
	FindBySlug(ctx context.Context, slug string) (*Category, error)

	// FindAll returns all categories ordered by sort order then name
	FindAll(ctx context.Context) ([]*Category, error)

	// FindRoots returns all active root categories
	FindRoots(ctx context.Context) ([]*Category, error)

	// FindChildren returns the direct active children of a category
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]*Category, error)

	// ExistsBySlug checks if a slug is already taken
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// HasProducts reports whether any product references the category
	HasProducts(ctx context.Context, id uuid.UUID) (bool, error)

	// HasChildren reports whether the category has child categories
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
}
