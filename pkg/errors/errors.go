package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNetwork indicates a transport failure or timeout
	ErrorTypeNetwork ErrorType = "NETWORK"

	// ErrorTypeParsing indicates a malformed upstream payload (XML/JSON)
	ErrorTypeParsing ErrorType = "PARSING"

	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeRateLimit indicates the upstream quota was exhausted
	ErrorTypeRateLimit ErrorType = "RATE_LIMIT"

	// ErrorTypeAPI indicates a non-2xx upstream response not covered above
	ErrorTypeAPI ErrorType = "API"

	// ErrorTypeConfiguration indicates invalid or missing configuration;
	// fatal, raised at service construction only
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind returns the ErrorType of err if it is (or wraps) an AppError,
// ErrorTypeInternal otherwise.
func Kind(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsKind reports whether err is (or wraps) an AppError of the given type.
func IsKind(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsRetryable reports whether err is worth retrying against the upstream.
// Transport failures and upstream rate limits are retryable; parsing and
// not-found errors never are.
func IsRetryable(err error) bool {
	switch Kind(err) {
	case ErrorTypeNetwork, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new parsing error
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeRateLimit,
		Message: message,
	}
}

// NewAPIError creates a new API error
func NewAPIError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeAPI,
		Message: message,
		Err:     err,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}
