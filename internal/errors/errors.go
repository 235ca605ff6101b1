package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Pairing flow
	ErrCodeMalformedPairingString ErrorCode = "MALFORMED_PAIRING_STRING"
	ErrCodePairingDenied          ErrorCode = "PAIRING_DENIED"
	ErrCodePairingFailed          ErrorCode = "PAIRING_FAILED"
	ErrCodePendingStateLost       ErrorCode = "PENDING_STATE_LOST"

	// Session
	ErrCodeSessionExpired ErrorCode = "SESSION_EXPIRED"
	ErrCodeNotConnected   ErrorCode = "NOT_CONNECTED"

	// Gateway transport
	ErrCodeGatewayUnauthenticated ErrorCode = "GATEWAY_UNAUTHENTICATED"
	ErrCodeGatewayTransport       ErrorCode = "GATEWAY_TRANSPORT_ERROR"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func MalformedPairingString(reason string) *AppError {
	return New(ErrCodeMalformedPairingString, fmt.Sprintf("Invalid pairing string: %s", reason))
}

func PairingDenied() *AppError {
	return New(ErrCodePairingDenied, "Connection was denied by the gateway owner")
}

func PairingFailed(cause error) *AppError {
	return Wrap(ErrCodePairingFailed, "Pairing request failed", cause)
}

func PendingStateLost() *AppError {
	return New(ErrCodePendingStateLost, "Pending pairing state is missing or already consumed")
}

func SessionExpired() *AppError {
	return New(ErrCodeSessionExpired, "Gateway session has expired")
}

func NotConnected() *AppError {
	return New(ErrCodeNotConnected, "No active gateway session")
}

func GatewayUnauthenticated(message string) *AppError {
	return New(ErrCodeGatewayUnauthenticated, message)
}

func GatewayTransport(cause error) *AppError {
	return Wrap(ErrCodeGatewayTransport, "Gateway request failed", cause)
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
