package catalog

import (
	"fmt"

	"github.com/vitrina/backend/internal/domain/shared"
)

// TransportError reports a failed exchange with the catalog source.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	StatusCode int
	Cause      error
}

// NewTransportError creates a transport error for a non-2xx response
func NewTransportError(statusCode int) *TransportError {
	return &TransportError{StatusCode: statusCode}
}

// WrapTransportError creates a transport error for a network, read or decode fault
func WrapTransportError(cause error) *TransportError {
	return &TransportError{Cause: cause}
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog source returned HTTP %d", e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("catalog source request failed: %v", e.Cause)
	}
	return shared.ErrTransport.Message
}

// Unwrap exposes both the domain classification and the underlying cause
func (e *TransportError) Unwrap() []error {
	domainErr := shared.NewDomainError(shared.CodeTransport, e.Error())
	if e.Cause != nil {
		return []error{domainErr, e.Cause}
	}
	return []error{domainErr}
}

// NewSchemaError reports a response body that is not a JSON array of products
func NewSchemaError(detail string) *shared.DomainError {
	msg := shared.ErrSchema.Message
	if detail != "" {
		msg = msg + ": " + detail
	}
	return shared.NewDomainError(shared.CodeSchema, msg)
}

// NewValidationError reports unusable load parameters
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeValidation, message)
}

// NewProductNotFoundError reports a product id missing from the registry
func NewProductNotFoundError(productID string) *shared.DomainError {
	return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Product %q not found in catalog", productID))
}
