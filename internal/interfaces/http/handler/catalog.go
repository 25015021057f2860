package handler

import (
	catalogapp "github.com/devmarket/backend/internal/application/catalog"
	"github.com/devmarket/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the public storefront endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService  *catalogapp.CatalogService
	categoryService *catalogapp.CategoryService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalogapp.CatalogService, categoryService *catalogapp.CategoryService) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		categoryService: categoryService,
	}
}

// RegisterRoutes registers public catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalog := rg.Group("/catalog")
	{
		catalog.GET("/home", h.Home)
		catalog.GET("/products/:slug", h.GetProduct)
		catalog.GET("/categories/:slug", h.GetCategoryPage)
		catalog.GET("/search", h.Search)
	}

	rg.GET("/categories", h.ListCategories)
}

// Home returns the landing feed: category tree, featured and latest products
func (h *CatalogHandler) Home(c *gin.Context) {
	resp, err := h.catalogService.Home(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetProduct returns a product detail page by slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	var req dto.SlugRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid product slug")
		return
	}

	resp, err := h.catalogService.GetProduct(c.Request.Context(), req.Slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetCategoryPage returns a category browse page with subcategories and
// a filtered product listing that spans the category subtree
func (h *CatalogHandler) GetCategoryPage(c *gin.Context) {
	var uriReq dto.SlugRequest
	if err := c.ShouldBindUri(&uriReq); err != nil {
		h.BadRequest(c, "Invalid category slug")
		return
	}

	var req catalogapp.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid search parameters")
		return
	}

	resp, err := h.catalogService.GetCategoryPage(c.Request.Context(), uriReq.Slug, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Search runs a filtered, sorted product search
func (h *CatalogHandler) Search(c *gin.Context) {
	var req catalogapp.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid search parameters")
		return
	}

	resp, err := h.catalogService.Search(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListCategories returns all active categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
