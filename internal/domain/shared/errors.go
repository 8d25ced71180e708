package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors built with NewDomainError match the sentinels below via errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by the catalog and cart contexts
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeTransport            = "TRANSPORT_ERROR"
	CodeSchema               = "SCHEMA_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeIndexOutOfRange      = "INDEX_OUT_OF_RANGE"
	CodeEmptyCart            = "EMPTY_CART"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeInternal             = "INTERNAL_ERROR"
)

// Common domain errors
var (
	ErrValidation           = NewDomainError(CodeValidation, "Invalid input provided")
	ErrTransport            = NewDomainError(CodeTransport, "Catalog source request failed")
	ErrSchema               = NewDomainError(CodeSchema, "Catalog source returned an unexpected response")
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrIndexOutOfRange      = NewDomainError(CodeIndexOutOfRange, "Cart line index out of range")
	ErrEmptyCart            = NewDomainError(CodeEmptyCart, "Cart is empty")
	ErrConfirmationRequired = NewDomainError(CodeConfirmationRequired, "Operation requires explicit confirmation")
	ErrInternal             = NewDomainError(CodeInternal, "Internal error")
)
