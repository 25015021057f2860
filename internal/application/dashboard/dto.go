package dashboard

import (
	"time"

	"github.com/devmarket/backend/internal/domain/catalog"
	"github.com/devmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverviewResponse is the dashboard landing page payload
type OverviewResponse struct {
	TotalProducts   int64           `json:"total_products"`
	ActiveProducts  int64           `json:"active_products"`
	PendingProducts int64           `json:"pending_products"`
	TotalDownloads  int64           `json:"total_downloads"`
	TotalPurchases  int64           `json:"total_purchases"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	Recent          []ProductRow    `json:"recent"`
	Popular         []ProductRow    `json:"popular"`
}

// ProductRow is a seller's product in dashboard listings
type ProductRow struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	Price         valueobject.Money `json:"price"`
	Status        string            `json:"status"`
	IsActive      bool              `json:"is_active"`
	IsFeatured    bool              `json:"is_featured"`
	DownloadCount int64             `json:"download_count"`
	PurchaseCount int64             `json:"purchase_count"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ListProductsRequest filters the seller's product list
type ListProductsRequest struct {
	Query    string `form:"q"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ProductListResponse is a paginated dashboard product listing
type ProductListResponse struct {
	Items      []ProductRow `json:"items"`
	TotalCount int64        `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
}

// SaveProductRequest creates or updates a product listing
type SaveProductRequest struct {
	Title            string    `json:"title" binding:"required,min=3,max=200"`
	Description      string    `json:"description" binding:"required"`
	ShortDescription string    `json:"short_description" binding:"max=300"`
	Price            string    `json:"price" binding:"required"`
	CategoryID       uuid.UUID `json:"category_id" binding:"required"`
	Tags             []string  `json:"tags"`
	FileFormat       string    `json:"file_format"`
	FileSize         string    `json:"file_size"`
	Compatibility    string    `json:"compatibility"`
	MainFileKey      string    `json:"main_file_key"`
	PreviewFileKey   string    `json:"preview_file_key"`
	FeaturedImageKey string    `json:"featured_image_key"`
	SubmitForReview  bool      `json:"submit_for_review"`
}

// TopProduct is a product row enriched with sales analytics
type TopProduct struct {
	ProductRow
	Earnings       decimal.Decimal `json:"earnings"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// CategoryRollup is a per-category sales summary
type CategoryRollup struct {
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Products     int64           `json:"products"`
	Purchases    int64           `json:"purchases"`
	Earnings     decimal.Decimal `json:"earnings"`
}

// AnalyticsResponse is the seller analytics payload
type AnalyticsResponse struct {
	TopProducts []TopProduct     `json:"top_products"`
	Categories  []CategoryRollup `json:"categories"`
}

// UploadURLRequest asks for a presigned upload slot
type UploadURLRequest struct {
	Kind     string `json:"kind" binding:"required,oneof=main preview image"`
	Filename string `json:"filename" binding:"required,max=255"`
}

// UploadURLResponse carries a presigned PUT URL and the storage key to
// record on the product once the upload finishes
type UploadURLResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toProductRow(p *catalog.Product) ProductRow {
	return ProductRow{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Price:         p.Price,
		Status:        p.Status.String(),
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		DownloadCount: p.DownloadCount,
		PurchaseCount: p.PurchaseCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toProductRows(products []*catalog.Product) []ProductRow {
	out := make([]ProductRow, 0, len(products))
	for _, p := range products {
		out = append(out, toProductRow(p))
	}
	return out
}
