package handler

import (
	"github.com/gin-gonic/gin"
	pricingapp "github.com/retailcore/backend/internal/application/pricing"
)

// SettingsHandler serves the pricing settings and ad hoc quotes
type SettingsHandler struct {
	BaseHandler
	settingsService *pricingapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *pricingapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get returns the current exchange rates, margin and VAT
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Update changes the fields present in the body. Stored products are
// re-priced on read, so the change applies to every price immediately.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req pricingapp.UpdateSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	settings, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Quote prices a cost that is not stored as a product
func (h *SettingsHandler) Quote(c *gin.Context) {
	var req pricingapp.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	breakdown, err := h.settingsService.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}
