package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes without an entry fall back to 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	"ITEM_NOT_FOUND":  http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"ALREADY_CONVERTED":    http.StatusConflict,
	"DUPLICATE_NUMBER":     http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Rejected state transitions and bad domain input
	"INVALID_STATE":          http.StatusBadRequest,
	"INVALID_STATUS":         http.StatusBadRequest,
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_NUMBER":         http.StatusBadRequest,
	"INVALID_CUSTOMER":       http.StatusBadRequest,
	"INVALID_QUANTITY":       http.StatusBadRequest,
	"INVALID_PRICE":          http.StatusBadRequest,
	"INVALID_DISCOUNT":       http.StatusBadRequest,
	"INVALID_TAX":            http.StatusBadRequest,
	"INVALID_TOTAL":          http.StatusBadRequest,
	"INVALID_REFERENCE":      http.StatusBadRequest,
	"INVALID_DESCRIPTION":    http.StatusBadRequest,
	"INVALID_LINE_SOURCE":    http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"NO_ITEMS":               http.StatusBadRequest,

	// A multi-step operation failed partway
	"INTEGRITY_FAILURE": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
