package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Cart DTOs ====================

// AddCartLineRequest adds one unit of a product to the cart
type AddCartLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// SetCartQuantityRequest sets the quantity of a line; zero or less removes it
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse represents a cart with its totals at the current primary rate
type CartResponse struct {
	SessionID    string           `json:"session_id"`
	Lines        []trade.CartLine `json:"lines"`
	Totals       trade.CartTotals `json:"totals"`
	ExchangeRate decimal.Decimal  `json:"exchange_rate"`
	UpdatedAt    time.Time        `json:"updated_at"`

	LocalCurrency     valueobject.Currency `json:"local_currency"`
	TotalUSDDisplay   string               `json:"total_usd_display"`
	TotalLocalDisplay string               `json:"total_local_display"`
}

// ToCartResponse converts a cart to a response
func ToCartResponse(cart *trade.Cart, primaryRate decimal.Decimal, display valueobject.Formatter) CartResponse {
	totals := cart.Totals(primaryRate)
	totals.FinalLocal = valueobject.Round2(totals.FinalLocal)
	return CartResponse{
		SessionID:         cart.SessionID,
		Lines:             cart.Lines,
		Totals:            totals,
		ExchangeRate:      primaryRate,
		UpdatedAt:         cart.UpdatedAt,
		LocalCurrency:     display.LocalCurrency(),
		TotalUSDDisplay:   display.USD(totals.FinalUSD),
		TotalLocalDisplay: display.Local(totals.FinalLocal),
	}
}

// ==================== Sale DTOs ====================

// SettleSaleRequest turns the session's cart into a sale. A nil initial
// payment means the sale is paid in full.
type SettleSaleRequest struct {
	PaymentMethod     string           `json:"payment_method" binding:"required,max=50"`
	ClientID          string           `json:"client_id" binding:"max=100"`
	InitialPaymentUSD *decimal.Decimal `json:"initial_payment_usd"`
}

// AmendSaleItemInput is one line of an amended sale. Without a unit price the
// price already on the sale is kept, or the product is priced at current
// settings when it is new to the sale.
type AmendSaleItemInput struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	Quantity     int              `json:"quantity" binding:"required,min=1"`
	UnitPriceUSD *decimal.Decimal `json:"unit_price_usd"`
}

// AmendSaleRequest replaces the items of a sale
type AmendSaleRequest struct {
	Items []AmendSaleItemInput `json:"items" binding:"required,min=1,dive"`
}

// CancelSaleRequest cancels a sale
type CancelSaleRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RegisterPaymentRequest records a payment against a sale or an invoice
type RegisterPaymentRequest struct {
	AmountUSD decimal.Decimal `json:"amount_usd" binding:"required"`
	Method    string          `json:"method" binding:"required,max=50"`
	Note      string          `json:"note" binding:"max=500"`
}

// SaleListFilter represents filter options for sale list
type SaleListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=COMPLETED PARTIAL PENDING CANCELLED"`
	ClientID   string     `form:"client_id"`
	CreditOnly bool       `form:"credit_only"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=date number total_usd created_at"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID         `json:"id"`
	Number        string            `json:"number"`
	Date          time.Time         `json:"date"`
	Items         []trade.SaleItem  `json:"items"`
	TotalUSD      decimal.Decimal   `json:"total_usd"`
	TotalLocal    decimal.Decimal   `json:"total_local"`
	ExchangeRate  decimal.Decimal   `json:"exchange_rate"`
	PaymentMethod string            `json:"payment_method"`
	ClientID      string            `json:"client_id,omitempty"`
	SellerID      string            `json:"seller_id,omitempty"`
	SellerName    string            `json:"seller_name,omitempty"`
	Status        string            `json:"status"`
	PaidAmountUSD decimal.Decimal   `json:"paid_amount_usd"`
	RemainingUSD  decimal.Decimal   `json:"remaining_usd"`
	IsCredit      bool              `json:"is_credit"`
	Payments      []finance.Payment `json:"payments"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason  string            `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Version       int               `json:"version"`

	LocalCurrency       valueobject.Currency `json:"local_currency"`
	TotalUSDDisplay     string               `json:"total_usd_display"`
	TotalLocalDisplay   string               `json:"total_local_display"`
	RemainingUSDDisplay string               `json:"remaining_usd_display"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale, display valueobject.Formatter) SaleResponse {
	remaining := valueobject.Round2(s.Ledger.Remaining())
	return SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		Date:          s.Date,
		Items:         s.Items,
		TotalUSD:      s.TotalUSD(),
		TotalLocal:    s.TotalLocal,
		ExchangeRate:  s.ExchangeRate,
		PaymentMethod: s.PaymentMethod,
		ClientID:      s.ClientID,
		SellerID:      s.SellerID,
		SellerName:    s.SellerName,
		Status:        string(s.Status),
		PaidAmountUSD: s.PaidAmountUSD(),
		RemainingUSD:  remaining,
		IsCredit:      s.IsCredit(),
		Payments:      s.Ledger.Payments,
		CancelledAt:   s.CancelledAt,
		CancelReason:  s.CancelReason,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Version:       s.Version,

		LocalCurrency:       display.LocalCurrency(),
		TotalUSDDisplay:     display.USD(s.TotalUSD()),
		TotalLocalDisplay:   display.Local(s.TotalLocal),
		RemainingUSDDisplay: display.USD(remaining),
	}
}

// ToSaleResponses converts a slice of sales
func ToSaleResponses(sales []trade.Sale, display valueobject.Formatter) []SaleResponse {
	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i], display)
	}
	return responses
}

// ==================== Invoice DTOs ====================

// InvoiceItemInput is one line of a received invoice
type InvoiceItemInput struct {
	SKU         string          `json:"sku" binding:"required,min=1,max=50"`
	Name        string          `json:"name" binding:"max=200"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitCostUSD decimal.Decimal `json:"unit_cost_usd" binding:"decimal_gte0"`
	MinStock    *int            `json:"min_stock" binding:"omitempty,min=0"`
}

// InitialPaymentInput is a payment made when the invoice is received
type InitialPaymentInput struct {
	AmountUSD decimal.Decimal `json:"amount_usd" binding:"required"`
	Method    string          `json:"method" binding:"required,max=50"`
	Note      string          `json:"note" binding:"max=500"`
}

// ReceiveInvoiceRequest represents a supplier invoice being received
type ReceiveInvoiceRequest struct {
	Number          string               `json:"number" binding:"required,min=1,max=100"`
	Supplier        string               `json:"supplier" binding:"required,min=1,max=200"`
	DateIssue       *time.Time           `json:"date_issue"`
	DateDue         *time.Time           `json:"date_due"`
	Items           []InvoiceItemInput   `json:"items" binding:"required,min=1,dive"`
	FreightTotalUSD decimal.Decimal      `json:"freight_total_usd" binding:"decimal_gte0"`
	CostBasis       string               `json:"cost_basis" binding:"omitempty,oneof=PRIMARY_RATE SECONDARY_RATE"`
	InitialPayment  *InitialPaymentInput `json:"initial_payment"`
}

// EditInvoiceItemsRequest corrects the lines and freight of an invoice
type EditInvoiceItemsRequest struct {
	Items           []InvoiceItemInput `json:"items" binding:"required,min=1,dive"`
	FreightTotalUSD decimal.Decimal    `json:"freight_total_usd" binding:"decimal_gte0"`
}

// InvoiceListFilter represents filter options for invoice list
type InvoiceListFilter struct {
	Supplier  string     `form:"supplier"`
	Status    string     `form:"status" binding:"omitempty,oneof=PAID PARTIAL PENDING"`
	DueBefore *time.Time `form:"due_before" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by" binding:"omitempty,oneof=date_issue date_due number total_usd created_at"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Supplier        string              `json:"supplier"`
	DateIssue       time.Time           `json:"date_issue"`
	DateDue         *time.Time          `json:"date_due,omitempty"`
	Items           []trade.InvoiceItem `json:"items"`
	FreightTotalUSD decimal.Decimal     `json:"freight_total_usd"`
	UnitFreightUSD  decimal.Decimal     `json:"unit_freight_usd"`
	SubtotalUSD     decimal.Decimal     `json:"subtotal_usd"`
	TotalUSD        decimal.Decimal     `json:"total_usd"`
	CostBasis       string              `json:"cost_basis"`
	Status          string              `json:"status"`
	PaidAmountUSD   decimal.Decimal     `json:"paid_amount_usd"`
	OutstandingUSD  decimal.Decimal     `json:"outstanding_usd"`
	Overdue         bool                `json:"overdue"`
	Payments        []finance.Payment   `json:"payments"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Version         int                 `json:"version"`

	TotalUSDDisplay       string `json:"total_usd_display"`
	OutstandingUSDDisplay string `json:"outstanding_usd_display"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse. Supplier
// debt is kept in dollars only.
func ToInvoiceResponse(inv *trade.Invoice, now time.Time) InvoiceResponse {
	total, outstanding := inv.TotalUSD(), inv.Outstanding()
	return InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		Supplier:        inv.Supplier,
		DateIssue:       inv.DateIssue,
		DateDue:         inv.DateDue,
		Items:           inv.Items,
		FreightTotalUSD: inv.FreightTotalUSD,
		UnitFreightUSD:  inv.UnitFreight(),
		SubtotalUSD:     inv.SubtotalUSD,
		TotalUSD:        total,
		CostBasis:       string(inv.CostBasis),
		Status:          string(inv.Status),
		PaidAmountUSD:   inv.Ledger.PaidAmountUSD,
		OutstandingUSD:  outstanding,
		Overdue:         inv.IsOverdue(now),
		Payments:        inv.Ledger.Payments,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		Version:         inv.Version,

		TotalUSDDisplay:       valueobject.USDAmount(total).Format(),
		OutstandingUSDDisplay: valueobject.USDAmount(outstanding).Format(),
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []trade.Invoice, now time.Time) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i], now)
	}
	return responses
}

func toInvoiceItems(inputs []InvoiceItemInput) []trade.InvoiceItem {
	items := make([]trade.InvoiceItem, len(inputs))
	for i, in := range inputs {
		items[i] = trade.InvoiceItem{
			SKU:         in.SKU,
			Name:        in.Name,
			Quantity:    in.Quantity,
			UnitCostUSD: in.UnitCostUSD,
			MinStock:    in.MinStock,
		}
	}
	return items
}
