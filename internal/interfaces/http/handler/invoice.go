package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/retailcore/backend/internal/application/trade"
)

// InvoiceHandler handles supplier invoices and the payables ledger
type InvoiceHandler struct {
	BaseHandler
	invoiceService *tradeapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *tradeapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Receive books an invoice into stock and the supplier's catalog
func (h *InvoiceHandler) Receive(c *gin.Context) {
	var req tradeapp.ReceiveInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByID returns one invoice
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List returns a page of invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter tradeapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// EditItems corrects the lines and freight of an invoice. Stock is not
// touched.
func (h *InvoiceHandler) EditItems(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.EditInvoiceItemsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.EditLineItems(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RegisterPayment records a payment to the supplier
func (h *InvoiceHandler) RegisterPayment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RegisterPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.RegisterPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// RemovePayment deletes a supplier payment
func (h *InvoiceHandler) RemovePayment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.pathUUID(c, "payment_id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.RemovePayment(c.Request.Context(), id, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Payables sums what is owed to suppliers
func (h *InvoiceHandler) Payables(c *gin.Context) {
	summary, err := h.invoiceService.Payables(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Overdue lists unpaid invoices past their due date
func (h *InvoiceHandler) Overdue(c *gin.Context) {
	invoices, err := h.invoiceService.Overdue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}
