package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/retailcore/backend/internal/application/trade"
)

// CartHandler handles the per-session shopping cart. The session comes from
// the X-Session-ID header.
type CartHandler struct {
	BaseHandler
	cartService *tradeapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *tradeapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get returns the session's cart with totals at the current rate
func (h *CartHandler) Get(c *gin.Context) {
	session, ok := h.sessionID(c)
	if !ok {
		return
	}
	cart, err := h.cartService.Get(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddLine adds one unit of a product
func (h *CartHandler) AddLine(c *gin.Context) {
	session, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req tradeapp.AddCartLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.AddProduct(c.Request.Context(), session, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// SetQuantity sets a line's quantity; zero or less removes the line
func (h *CartHandler) SetQuantity(c *gin.Context) {
	session, ok := h.sessionID(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}
	var req tradeapp.SetCartQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.SetQuantity(c.Request.Context(), session, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveLine drops a product from the cart
func (h *CartHandler) RemoveLine(c *gin.Context) {
	session, ok := h.sessionID(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveLine(c.Request.Context(), session, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	session, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.cartService.Clear(c.Request.Context(), session); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
