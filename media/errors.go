package media

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the media pipeline.
type ErrorCode string

// Capability error codes.
const (
	// ErrArgument marks invalid or empty caller input. Never retried,
	// surfaced before any network activity.
	ErrArgument ErrorCode = "ARGUMENT_ERROR"
	// ErrConfiguration marks a missing or rejected credential. Fatal until
	// the caller reconfigures.
	ErrConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrUnavailable marks a transiently unready backend. The caller may
	// retry with backoff; the core never retries on its own.
	ErrUnavailable ErrorCode = "UNAVAILABLE"
	// ErrTimeout marks an operation that exceeded its configured wall-clock
	// bound. The message carries the elapsed time.
	ErrTimeout ErrorCode = "TIMEOUT"
	// ErrCancelled marks a caller-initiated abort. Always terminal; the
	// result is never cached.
	ErrCancelled ErrorCode = "CANCELLED"
	// ErrProtocol marks a response whose shape matched no known schema.
	ErrProtocol ErrorCode = "PROTOCOL_ERROR"
	// ErrDecode marks payload bytes that could not become usable media.
	ErrDecode ErrorCode = "DECODE_ERROR"
	// ErrNotSupported marks a provider identifier with no registered
	// implementation.
	ErrNotSupported ErrorCode = "NOT_SUPPORTED"
	// ErrBusy marks a second request issued while the adapter's single
	// operation slot is occupied.
	ErrBusy ErrorCode = "BUSY"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
