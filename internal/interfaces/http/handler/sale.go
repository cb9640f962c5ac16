package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/retailcore/backend/internal/application/trade"
)

// SaleHandler handles sale settlement and the receivables ledger
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Settle turns the session's cart into a sale
func (h *SaleHandler) Settle(c *gin.Context) {
	session, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req tradeapp.SettleSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.Settle(c.Request.Context(), session, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID returns one sale
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List returns a page of sales
func (h *SaleHandler) List(c *gin.Context) {
	var filter tradeapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	sales, total, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// Amend replaces the items of a sale, moving stock by the difference
func (h *SaleHandler) Amend(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.AmendSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.Amend(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Cancel cancels a sale and restocks its items. The body is optional.
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelSaleRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// RegisterPayment records a payment against the sale's debt
func (h *SaleHandler) RegisterPayment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RegisterPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.RegisterPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// RemovePayment deletes a payment and re-derives the sale's status
func (h *SaleHandler) RemovePayment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "payment_id")
	if !ok {
		return
	}
	sale, err := h.saleService.RemovePayment(c.Request.Context(), id, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Receivables sums what customers still owe
func (h *SaleHandler) Receivables(c *gin.Context) {
	summary, err := h.saleService.Receivables(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
