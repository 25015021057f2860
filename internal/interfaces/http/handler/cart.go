package handler

import (
	cartapp "github.com/devmarket/backend/internal/application/cart"
	"github.com/devmarket/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CartHandler serves the buyer cart endpoints
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
	authMW      gin.HandlerFunc
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cartapp.CartService, authMW gin.HandlerFunc) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		authMW:      authMW,
	}
}

// RegisterRoutes registers cart routes; all of them require auth
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart", h.authMW)
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.Count)
		cart.POST("/items/:slug", h.AddItem)
		cart.DELETE("/items/:slug", h.RemoveItem)
		cart.DELETE("", h.Clear)
	}
}

// GetCart returns the authenticated user's cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Count returns the number of lines in the cart
func (h *CartHandler) Count(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	count, err := h.cartService.Count(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: int64(count)})
}

// AddItem puts a product in the cart at its current price. Adding a
// product that is already in the cart is a no-op reported in the
// response rather than an error.
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.SlugRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid product slug")
		return
	}

	resp, err := h.cartService.AddItem(c.Request.Context(), userID, req.Slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem removes a product from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.SlugRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid product slug")
		return
	}

	resp, err := h.cartService.RemoveItem(c.Request.Context(), userID, req.Slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
