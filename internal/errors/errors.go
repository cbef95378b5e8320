package errors

import (
	"fmt"
)

// WikigenError is the structured error type for wikigen.
// It provides rich context for error handling, logging, and user presentation.
type WikigenError struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *WikigenError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *WikigenError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with WikigenError.
func (e *WikigenError) Is(target error) bool {
	if t, ok := target.(*WikigenError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *WikigenError) WithDetail(key, value string) *WikigenError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new WikigenError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *WikigenError {
	return &WikigenError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a WikigenError from an existing error.
// The error's message becomes the WikigenError message.
func Wrap(code string, err error) *WikigenError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// PersistenceError creates a fatal persistence error.
// Raised when an index write could silently corrupt on-disk state.
func PersistenceError(message string, cause error) *WikigenError {
	return New(ErrCodePersistenceFailed, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *WikigenError {
	return New(ErrCodeInvalidInput, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a WikigenError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if we, ok := err.(*WikigenError); ok {
		return we.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if we, ok := err.(*WikigenError); ok {
		return we.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a WikigenError.
// Returns empty string if not a WikigenError.
func GetCode(err error) string {
	if we, ok := err.(*WikigenError); ok {
		return we.Code
	}
	return ""
}

// GetCategory extracts the category from a WikigenError.
// Returns empty string if not a WikigenError.
func GetCategory(err error) Category {
	if we, ok := err.(*WikigenError); ok {
		return we.Category
	}
	return ""
}
