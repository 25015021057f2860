package handler

import (
	dashboardapp "github.com/devmarket/backend/internal/application/dashboard"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler serves the seller dashboard endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.DashboardService
	authMW           gin.HandlerFunc
	sellerMW         gin.HandlerFunc
	adminMW          gin.HandlerFunc
}

// NewDashboardHandler creates a new dashboard handler. sellerMW admits
// sellers and admins; adminMW guards the featured toggle.
func NewDashboardHandler(dashboardService *dashboardapp.DashboardService, authMW, sellerMW, adminMW gin.HandlerFunc) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		authMW:           authMW,
		sellerMW:         sellerMW,
		adminMW:          adminMW,
	}
}

// RegisterRoutes registers dashboard routes behind the seller guard
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard", h.authMW, h.sellerMW)
	{
		dashboard.GET("", h.Overview)
		dashboard.GET("/products", h.ListProducts)
		dashboard.POST("/products", h.CreateProduct)
		dashboard.PUT("/products/:id", h.UpdateProduct)
		dashboard.POST("/products/:id/toggle-active", h.ToggleActive)
		dashboard.POST("/products/:id/toggle-featured", h.adminMW, h.ToggleFeatured)
		dashboard.POST("/products/:id/upload-url", h.UploadURL)
		dashboard.GET("/analytics", h.Analytics)
	}
}

// Overview returns the seller's aggregate stats and recent products
func (h *DashboardHandler) Overview(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.dashboardService.Overview(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListProducts returns the seller's own products with filters
func (h *DashboardHandler) ListProducts(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dashboardapp.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.dashboardService.ListProducts(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateProduct creates a new product listing for the seller
func (h *DashboardHandler) CreateProduct(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dashboardapp.SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	row, err := h.dashboardService.CreateProduct(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, row)
}

// UpdateProduct updates a product the actor owns (admins may edit any)
func (h *DashboardHandler) UpdateProduct(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req dashboardapp.SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	row, err := h.dashboardService.UpdateProduct(c.Request.Context(), actorID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// ToggleActive flips a product's visibility
func (h *DashboardHandler) ToggleActive(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	row, err := h.dashboardService.ToggleActive(c.Request.Context(), actorID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// ToggleFeatured flips a product's featured flag (admin only)
func (h *DashboardHandler) ToggleFeatured(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	row, err := h.dashboardService.ToggleFeatured(c.Request.Context(), actorID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// UploadURL issues a presigned PUT URL for a product file upload
func (h *DashboardHandler) UploadURL(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req dashboardapp.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.dashboardService.UploadURL(c.Request.Context(), actorID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Analytics returns the seller's per-product and per-category rollups
func (h *DashboardHandler) Analytics(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.dashboardService.Analytics(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
