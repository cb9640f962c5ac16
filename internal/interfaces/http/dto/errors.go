package dto

import (
	"net/http"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Error codes raised by the HTTP layer itself. Domain codes from
// shared.DomainError pass through unchanged.
const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeTokenExpired   = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid   = "INVALID_TOKEN"
	ErrCodeTokenRevoked   = "TOKEN_REVOKED"
	ErrCodeMissingSession = "MISSING_SESSION"
	ErrCodeRouteNotFound  = "ROUTE_NOT_FOUND"
	ErrCodeTooLarge       = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Domain codes
	shared.CodeNotFound:          http.StatusNotFound,
	shared.CodeAlreadyExists:     http.StatusConflict,
	shared.CodeInvalidInput:      http.StatusBadRequest,
	shared.CodeInvalidAmount:     http.StatusBadRequest,
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	shared.CodeUnauthorized:      http.StatusUnauthorized,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeOverpayment:       http.StatusUnprocessableEntity,
	shared.CodePaymentNotFound:   http.StatusNotFound,
	shared.CodeDuplicateInvoice:  http.StatusConflict,
	shared.CodeProductInUse:      http.StatusConflict,
	shared.CodeSaleCancelled:     http.StatusConflict,
	shared.CodeEmptyCart:         http.StatusUnprocessableEntity,
	shared.CodeCartLineNotFound:  http.StatusNotFound,
	shared.CodeSupplierExists:    http.StatusConflict,

	// HTTP layer codes
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	ErrCodeMissingSession: http.StatusBadRequest,
	ErrCodeRouteNotFound:  http.StatusNotFound,
	ErrCodeTooLarge:       http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
