package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a business rule violation. Code is stable and is
// what the HTTP layer maps to a status; Details carries the context a
// caller needs to act on the failure.
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on Code so sentinels compare equal to errors built from them
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a copy of the error with one more detail attached
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// AsDomainError unwraps err into a *DomainError if it is one
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Error codes
const (
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidState      = "INVALID_STATE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeOverpayment       = "OVERPAYMENT"
	CodePaymentNotFound   = "PAYMENT_NOT_FOUND"
	CodeDuplicateInvoice  = "DUPLICATE_INVOICE"
	CodeProductInUse      = "PRODUCT_IN_USE"
	CodeSaleCancelled     = "SALE_CANCELLED"
	CodeEmptyCart         = "EMPTY_CART"
	CodeCartLineNotFound  = "CART_LINE_NOT_FOUND"
	CodeSupplierExists    = "SUPPLIER_EXISTS"
)

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists     = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState      = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrUnauthorized      = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInsufficientStock = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrEmptyCart         = NewDomainError(CodeEmptyCart, "Cart is empty")
)

// NewInsufficientStockError reports a stock shortfall for one product
func NewInsufficientStockError(productName string, requested, available int) *DomainError {
	return &DomainError{
		Code: CodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s: requested %d, available %d",
			productName, requested, available),
		Details: map[string]any{
			"product":   productName,
			"requested": requested,
			"available": available,
		},
	}
}
