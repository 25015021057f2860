package handler

import (
	cartapp "github.com/devmarket/backend/internal/application/cart"
	checkoutapp "github.com/devmarket/backend/internal/application/checkout"
	"github.com/devmarket/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckoutHandler serves checkout, confirmation and order history
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
	cartService     *cartapp.CartService
	authMW          gin.HandlerFunc
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService, cartService *cartapp.CartService, authMW gin.HandlerFunc) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cartService:     cartService,
		authMW:          authMW,
	}
}

// RegisterRoutes registers checkout and order routes; all require auth
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	checkout := rg.Group("/checkout", h.authMW)
	{
		checkout.GET("", h.Review)
		checkout.POST("/session", h.CreateSession)
		checkout.POST("/buy-now/:slug", h.BuyNow)
		checkout.GET("/success", h.ConfirmSuccess)
		checkout.GET("/cancel", h.Cancel)
	}

	orders := rg.Group("/orders", h.authMW)
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/items/:product_id/download", h.DownloadItem)
	}
}

// Review shows what a checkout session would be opened for
func (h *CheckoutHandler) Review(c *gin.Context) {
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

// CreateSession opens a hosted checkout session for the whole cart
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.checkoutService.CreateSession(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// BuyNow opens a single-product checkout session bypassing the cart
func (h *CheckoutHandler) BuyNow(c *gin.Context) {
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

	resp, err := h.checkoutService.BuyNow(c.Request.Context(), userID, req.Slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmSuccess handles the success redirect from the payment page. It
// verifies payment state with the provider and races the webhook to
// complete the order; whichever runs first wins, the other is a no-op.
func (h *CheckoutHandler) ConfirmSuccess(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.BadRequest(c, "Missing session_id")
		return
	}

	resp, err := h.checkoutService.ConfirmSuccess(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles the cancel redirect. The order stays pending; the
// session-expiry webhook settles it later.
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	h.Success(c, gin.H{
		"message": "Checkout cancelled. Your cart is unchanged.",
	})
}

// ListOrders returns the buyer's order history, newest first
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		req = dto.DefaultListRequest()
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	result, err := h.checkoutService.ListOrders(c.Request.Context(), userID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, req.Page, req.PageSize)
}

// GetOrder returns one of the buyer's orders with download links for
// completed items
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.checkoutService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DownloadItem returns a fresh presigned download URL for a purchased item
func (h *CheckoutHandler) DownloadItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	url, err := h.checkoutService.DownloadItem(c.Request.Context(), userID, orderID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"download_url": url})
}
