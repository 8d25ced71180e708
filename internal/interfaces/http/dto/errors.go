package dto

import (
	"net/http"

	"github.com/vitrina/backend/internal/domain/shared"
)

// Error code constants. Domain codes are passed through unchanged so that
// clients see the same vocabulary the catalog and cart report.
const (
	ErrCodeValidation           = shared.CodeValidation
	ErrCodeTransport            = shared.CodeTransport
	ErrCodeSchema               = shared.CodeSchema
	ErrCodeNotFound             = shared.CodeNotFound
	ErrCodeIndexOutOfRange      = shared.CodeIndexOutOfRange
	ErrCodeEmptyCart            = shared.CodeEmptyCart
	ErrCodeConfirmationRequired = shared.CodeConfirmationRequired
	ErrCodeInternal             = shared.CodeInternal
)

// Transport-level error codes raised by the HTTP layer itself
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeSessionUnavailable is used when a visitor session cannot be opened
	ErrCodeSessionUnavailable = "SESSION_UNAVAILABLE"
	// ErrCodeStorageUnavailable is used by the health check
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Caller mistakes -> 400 Bad Request
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeIndexOutOfRange:      http.StatusBadRequest,
	ErrCodeConfirmationRequired: http.StatusBadRequest,
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	// Business rule -> 422 Unprocessable Entity
	ErrCodeEmptyCart: http.StatusUnprocessableEntity,

	// Upstream catalog failures -> 502 Bad Gateway
	ErrCodeTransport: http.StatusBadGateway,
	ErrCodeSchema:    http.StatusBadGateway,

	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeSessionUnavailable: http.StatusServiceUnavailable,
	ErrCodeStorageUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
