// Package errors defines the error taxonomy shared across the connector.
package errors

import (
	"fmt"
)

// Error types
const (
	// ErrTokenInvalid is returned when a token fails signature or structural validation
	ErrTokenInvalid = "token_invalid"

	// ErrTokenRejected is returned when a well-formed token carries the wrong
	// operation or is missing a required claim
	ErrTokenRejected = "token_rejected"

	// ErrUnsupportedFormat is returned when a file extension has no registered
	// document type
	ErrUnsupportedFormat = "unsupported_format"

	// ErrPermissionDenied is returned when the caller lacks the required
	// content permission
	ErrPermissionDenied = "permission_denied"

	// ErrContentStore is returned when a Confluence REST call fails
	ErrContentStore = "content_store"

	// ErrUnknownCallbackStatus is returned when a callback carries a status
	// code outside the known set
	ErrUnknownCallbackStatus = "unknown_callback_status"

	// ErrForceSaveUnsupported is returned when a callback requests a force save
	ErrForceSaveUnsupported = "force_save_unsupported"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// StatusCode carries the upstream HTTP status for content store errors,
	// zero otherwise
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewTokenInvalidError creates a new token invalid error
func NewTokenInvalidError(message string, cause error) *Error {
	return NewError(ErrTokenInvalid, message, cause)
}

// NewTokenRejectedError creates a new token rejected error
func NewTokenRejectedError(message string, cause error) *Error {
	return NewError(ErrTokenRejected, message, cause)
}

// NewUnsupportedFormatError creates a new unsupported format error
func NewUnsupportedFormatError(message string, cause error) *Error {
	return NewError(ErrUnsupportedFormat, message, cause)
}

// NewPermissionDeniedError creates a new permission denied error
func NewPermissionDeniedError(message string, cause error) *Error {
	return NewError(ErrPermissionDenied, message, cause)
}

// NewContentStoreError creates a new content store error carrying the
// upstream HTTP status code
func NewContentStoreError(message string, statusCode int, cause error) *Error {
	return &Error{
		Type:       ErrContentStore,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewUnknownCallbackStatusError creates a new unknown callback status error
func NewUnknownCallbackStatusError(message string, cause error) *Error {
	return NewError(ErrUnknownCallbackStatus, message, cause)
}

// NewForceSaveUnsupportedError creates a new force save unsupported error
func NewForceSaveUnsupportedError(message string, cause error) *Error {
	return NewError(ErrForceSaveUnsupported, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// IsTokenInvalid checks if the error is a token invalid error
func IsTokenInvalid(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrTokenInvalid
}

// IsTokenRejected checks if the error is a token rejected error
func IsTokenRejected(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrTokenRejected
}

// IsUnsupportedFormat checks if the error is an unsupported format error
func IsUnsupportedFormat(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrUnsupportedFormat
}

// IsPermissionDenied checks if the error is a permission denied error
func IsPermissionDenied(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrPermissionDenied
}

// IsContentStore checks if the error is a content store error
func IsContentStore(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrContentStore
}

// IsUnknownCallbackStatus checks if the error is an unknown callback status error
func IsUnknownCallbackStatus(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrUnknownCallbackStatus
}

// IsForceSaveUnsupported checks if the error is a force save unsupported error
func IsForceSaveUnsupported(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrForceSaveUnsupported
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrInternal
}
