package errors

import "fmt"

// ErrorCode represents an algenova error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrUnsupportedFormula ErrorCode = "UNSUPPORTED_FORMULA" // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFormulaTooLarge    ErrorCode = "FORMULA_TOO_LARGE"   // 413
	ErrRateLimited        ErrorCode = "RATE_LIMITED"        // 429
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// ExampleFormula is echoed back to clients that send a malformed request.
const ExampleFormula = "2x + 5 = 13"

// NovaError represents a structured error with code, status, and details.
type NovaError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *NovaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *NovaError {
	return &NovaError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewMissingFormula creates a 400 error for a missing or non-string formula.
// The details carry an example payload so clients can correct the request.
func NewMissingFormula() *NovaError {
	return &NovaError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: "No formula provided. Please provide a mathematical expression to solve.",
		Details: map[string]any{"example": map[string]string{"formula": ExampleFormula}},
	}
}

// NewUnsupportedFormula creates a 400 error for a formula the pipeline could not process.
func NewUnsupportedFormula(formula string, cause error) *NovaError {
	detail := "unknown failure"
	if cause != nil {
		detail = cause.Error()
	}
	return &NovaError{
		Code:    ErrUnsupportedFormula,
		Status:  400,
		Message: "Invalid or unsupported formula.",
		Details: map[string]any{"details": detail, "formula": formula},
	}
}

// NewNotFound creates a 404 error for when a stored solution cannot be found.
func NewNotFound(identifier string) *NovaError {
	return &NovaError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("solution not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFormulaTooLarge creates a 413 error when a formula exceeds the size limit.
func NewFormulaTooLarge(max, actual int) *NovaError {
	return &NovaError{
		Code:    ErrFormulaTooLarge,
		Status:  413,
		Message: fmt.Sprintf("formula exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewRateLimited creates a 429 error for clients over their request budget.
func NewRateLimited(perMinute int) *NovaError {
	return &NovaError{
		Code:    ErrRateLimited,
		Status:  429,
		Message: fmt.Sprintf("too many requests: limit is %d per minute", perMinute),
		Details: map[string]any{"limit_per_minute": perMinute},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *NovaError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &NovaError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a NovaError with the given code.
func Is(err error, code ErrorCode) bool {
	if nErr, ok := err.(*NovaError); ok {
		return nErr.Code == code
	}
	return false
}
