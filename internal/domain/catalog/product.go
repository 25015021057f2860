package catalog

import (
	"strings"
	"time"

	"github.com/devmarket/backend/internal/domain/shared"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ProductStatus represents the moderation status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusRejected ProductStatus = "rejected"
)

// IsValid checks if the status is a known status
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusPending, ProductStatusActive,
		ProductStatusInactive, ProductStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ProductStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ProductStatus) CanTransitionTo(target ProductStatus) bool {
	switch s {
	case ProductStatusDraft:
		return target == ProductStatusPending
	case ProductStatusPending:
		return target == ProductStatusActive || target == ProductStatusRejected
	case ProductStatusActive:
		return target == ProductStatusInactive
	case ProductStatusInactive:
		return target == ProductStatusActive
	case ProductStatusRejected:
		return target == ProductStatusPending
	}
	return false
}

// MaxProductTags limits the number of comma-separated tags
const MaxProductTags = 20

// Product represents a digital good listed by a seller.
// Download and purchase counters are incremented with atomic SQL
// updates in the repository, never through aggregate saves.
type Product struct {
	shared.BaseAggregateRoot
	SellerID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	CategoryID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	Title            string            `gorm:"type:varchar(200);not null"`
	Slug             string            `gorm:"type:varchar(220);not null;uniqueIndex"`
	Description      string            `gorm:"type:text"`
	ShortDescription string            `gorm:"type:varchar(300)"`
	Price            valueobject.Money `gorm:"type:decimal(10,2);not null"`
	Tags             string            `gorm:"type:varchar(500)"`
	FileFormat       string            `gorm:"type:varchar(50)"`
	FileSize         string            `gorm:"type:varchar(50)"`
	Compatibility    string            `gorm:"type:varchar(200)"`
	MainFileKey      string            `gorm:"type:varchar(512)"`
	PreviewFileKey   string            `gorm:"type:varchar(512)"`
	FeaturedImageKey string            `gorm:"type:varchar(512)"`
	Status           ProductStatus     `gorm:"type:varchar(20);not null;default:'draft';index"`
	IsActive         bool              `gorm:"not null;default:true"`
	IsFeatured       bool              `gorm:"not null;default:false"`
	DownloadCount    int64             `gorm:"not null;default:0"`
	PurchaseCount    int64             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new draft product owned by a seller
func NewProduct(sellerID, categoryID uuid.UUID, title, description string, price valueobject.Money) (*Product, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Seller is required")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Category is required")
	}
	if err := validateProductTitle(title); err != nil {
		return nil, err
	}
	if err := validateProductPrice(price); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		CategoryID:        categoryID,
		Title:             strings.TrimSpace(title),
		Description:       description,
		Price:             price,
		Status:            ProductStatusDraft,
		IsActive:          true,
	}
	product.Slug = Slugify(product.Title)

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the listing fields a seller may edit
func (p *Product) Update(categoryID uuid.UUID, title, description, shortDescription string, price valueobject.Money) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Category is required")
	}
	if err := validateProductTitle(title); err != nil {
		return err
	}
	if err := validateProductPrice(price); err != nil {
		return err
	}
	if len(shortDescription) > 300 {
		return shared.NewDomainError("INVALID_PRODUCT", "Short description cannot exceed 300 characters")
	}

	p.CategoryID = categoryID
	p.Title = strings.TrimSpace(title)
	p.Slug = Slugify(p.Title)
	p.Description = description
	p.ShortDescription = shortDescription
	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetTags replaces the tag list
func (p *Product) SetTags(tags []string) error {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}
	if len(cleaned) > MaxProductTags {
		return shared.NewDomainError("INVALID_PRODUCT", "Too many tags")
	}

	p.Tags = strings.Join(cleaned, ",")
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// TagList returns the tags as a slice
func (p *Product) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	return strings.Split(p.Tags, ",")
}

// SetFileMetadata sets the delivery file details
func (p *Product) SetFileMetadata(format, size, compatibility string) {
	p.FileFormat = strings.TrimSpace(format)
	p.FileSize = strings.TrimSpace(size)
	p.Compatibility = strings.TrimSpace(compatibility)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetStorageKeys sets the object storage keys for the product files
func (p *Product) SetStorageKeys(mainFileKey, previewFileKey, featuredImageKey string) {
	if mainFileKey != "" {
		p.MainFileKey = mainFileKey
	}
	if previewFileKey != "" {
		p.PreviewFileKey = previewFileKey
	}
	if featuredImageKey != "" {
		p.FeaturedImageKey = featuredImageKey
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Submit moves a draft or rejected product into moderation
func (p *Product) Submit() error {
	return p.transitionTo(ProductStatusPending)
}

// Approve makes a pending product live
func (p *Product) Approve() error {
	return p.transitionTo(ProductStatusActive)
}

// Reject declines a pending product
func (p *Product) Reject() error {
	return p.transitionTo(ProductStatusRejected)
}

// Retire takes an active product off the market
func (p *Product) Retire() error {
	return p.transitionTo(ProductStatusInactive)
}

// Relist brings a retired product back to the market
func (p *Product) Relist() error {
	return p.transitionTo(ProductStatusActive)
}

func (p *Product) transitionTo(target ProductStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			"Cannot transition product from "+p.Status.String()+" to "+target.String())
	}

	oldStatus := p.Status
	p.Status = target
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, target))

	return nil
}

// ToggleActive flips the seller-controlled visibility switch
func (p *Product) ToggleActive() {
	p.IsActive = !p.IsActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetFeatured marks or unmarks the product for the home page
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsPurchasable reports whether the product can be bought or carted
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive && p.IsActive
}

// IsOwnedBy reports whether the given user is the seller of the product
func (p *Product) IsOwnedBy(userID uuid.UUID) bool {
	return p.SellerID == userID
}

func validateProductTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_PRODUCT", "Title cannot exceed 200 characters")
	}
	if Slugify(title) == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Title must contain at least one letter or digit")
	}
	return nil
}

func validateProductPrice(price valueobject.Money) error {
	if price.Cents() < 1 {
		return shared.NewDomainError("INVALID_PRODUCT", "Price must be at least $0.01")
	}
	return nil
}
