package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents required lookups that matched nothing
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeAmbiguous represents should-be-unique lookups that matched more than one node
	ErrorTypeAmbiguous ErrorType = "ambiguous_result"
	// ErrorTypeConfiguration represents programmer misuse (bad label/filter shape)
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeStorageUnavailable represents connectivity/timeout failures of the graph store
	ErrorTypeStorageUnavailable ErrorType = "storage_unavailable"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// NotFoundError is returned when a required single-entity or single-relationship
// lookup found zero matches.
type NotFoundError struct {
	*BaseError
	Label  string
	Filter map[string]interface{}
}

func NewNotFound(label string, filter map[string]interface{}) *NotFoundError {
	return &NotFoundError{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("no %s node matching filter", label), nil),
		Label:     label,
		Filter:    filter,
	}
}

// AmbiguousResultError is returned when a uniqueness-assumed lookup matched more
// than one node. Multiple matches are a data integrity fault, surfaced rather
// than silently picking one.
type AmbiguousResultError struct {
	*BaseError
	Label  string
	Filter map[string]interface{}
}

func NewAmbiguousResult(label string, filter map[string]interface{}) *AmbiguousResultError {
	return &AmbiguousResultError{
		BaseError: NewBaseError(ErrorTypeAmbiguous, fmt.Sprintf("filter matched more than one %s node", label), nil),
		Label:     label,
		Filter:    filter,
	}
}

// ConfigurationError is returned on programmer misuse: malformed labels, filter
// field names or unsupported filter value types. Non-retryable.
type ConfigurationError struct {
	*BaseError
	Detail string
}

func NewConfiguration(detail string) *ConfigurationError {
	return &ConfigurationError{
		BaseError: NewBaseError(ErrorTypeConfiguration, detail, nil),
		Detail:    detail,
	}
}

// StorageUnavailableError is returned when the backing graph store cannot be
// reached or a statement fails at the driver level. Retryable by caller policy,
// never retried internally.
type StorageUnavailableError struct {
	*BaseError
	Operation string
}

func NewStorageUnavailable(operation string, err error) *StorageUnavailableError {
	return &StorageUnavailableError{
		BaseError: NewBaseError(ErrorTypeStorageUnavailable, fmt.Sprintf("graph store operation failed: %s", operation), err),
		Operation: operation,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if baseErr, ok := err.(interface{ base() *BaseError }); ok {
			return baseErr.base().Type == errType
		}
		if baseErr, ok := err.(*BaseError); ok {
			return baseErr.Type == errType
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

func (e *NotFoundError) base() *BaseError           { return e.BaseError }
func (e *AmbiguousResultError) base() *BaseError    { return e.BaseError }
func (e *ConfigurationError) base() *BaseError      { return e.BaseError }
func (e *StorageUnavailableError) base() *BaseError { return e.BaseError }

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}

// IsAmbiguousResult reports whether err is an AmbiguousResultError
func IsAmbiguousResult(err error) bool {
	return IsErrorType(err, ErrorTypeAmbiguous)
}

// IsConfiguration reports whether err is a ConfigurationError
func IsConfiguration(err error) bool {
	return IsErrorType(err, ErrorTypeConfiguration)
}

// IsStorageUnavailable reports whether err is a StorageUnavailableError
func IsStorageUnavailable(err error) bool {
	return IsErrorType(err, ErrorTypeStorageUnavailable)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Store connectivity failures may succeed on retry
	if IsErrorType(err, ErrorTypeStorageUnavailable) {
		return true
	}
	// Programmer faults and integrity faults never resolve on retry
	return false
}
