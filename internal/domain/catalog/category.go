package catalog

import (
	"strings"
	"time"

	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category represents a node in the hierarchical catalog tree.
// Acyclicity is enforced at write time by the category service,
// which walks the ancestor chain before reparenting.
type Category struct {
	shared.BaseAggregateRoot
	Name            string     `gorm:"type:varchar(100);not null"`
	Slug            string     `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description     string     `gorm:"type:text"`
	MetaDescription string     `gorm:"type:varchar(300)"`
	Icon            string     `gorm:"type:varchar(100)"`
	ParentID        *uuid.UUID `gorm:"type:uuid;index"`
	SortOrder       int        `gorm:"not null;default:0"`
	IsActive        bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new root category
func NewCategory(name string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		IsActive:          true,
	}
	category.Slug = Slugify(category.Name)

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// NewChildCategory creates a new category under a parent
func NewChildCategory(name string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY_PARENT", "Parent category is required")
	}

	category, err := NewCategory(name)
	if err != nil {
		return nil, err
	}
	category.ParentID = &parent.ID

	return category, nil
}

// Update updates the category's display fields
func (c *Category) Update(name, description, metaDescription, icon string, sortOrder int) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if len(metaDescription) > 300 {
		return shared.NewDomainError("INVALID_CATEGORY", "Meta description cannot exceed 300 characters")
	}

	c.Name = strings.TrimSpace(name)
	c.Slug = Slugify(c.Name)
	c.Description = description
	c.MetaDescription = metaDescription
	c.Icon = icon
	c.SortOrder = sortOrder
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// SetParent moves the category under a new parent.
// Cycle checks against the ancestor chain happen in the service,
// which can see the whole tree; the aggregate only rejects self-parenting.
func (c *Category) SetParent(parentID *uuid.UUID) error {
	if parentID != nil && *parentID == c.ID {
		return shared.NewDomainError("INVALID_CATEGORY_PARENT", "Category cannot be its own parent")
	}

	c.ParentID = parentID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate makes the category visible
func (c *Category) Activate() {
	if c.IsActive {
		return
	}
	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate hides the category
func (c *Category) Deactivate() {
	if !c.IsActive {
		return
	}
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsRoot reports whether the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category name cannot exceed 100 characters")
	}
	if Slugify(name) == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category name must contain at least one letter or digit")
	}
	return nil
}
