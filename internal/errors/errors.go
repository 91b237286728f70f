package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthUnauthorized     ErrorCode = "AUTH-001"
	ErrCodeAuthBadCredentials   ErrorCode = "AUTH-002"
	ErrCodeAuthValidation       ErrorCode = "AUTH-003"
	ErrCodeAuthNotAuthenticated ErrorCode = "AUTH-004"

	// CSRF priming errors (CSRF-001 to CSRF-099)
	ErrCodeCSRFAcquisition ErrorCode = "CSRF-001"
	ErrCodeCSRFTokenEmpty  ErrorCode = "CSRF-002"

	// API transport errors (API-001 to API-099)
	ErrCodeAPITransport ErrorCode = "API-001"
	ErrCodeAPIDecode    ErrorCode = "API-002"
	ErrCodeAPIRequest   ErrorCode = "API-003"
	ErrCodeAPIStatus    ErrorCode = "API-004"

	// Persisted record errors (STORE-001 to STORE-099)
	ErrCodeStoreRead  ErrorCode = "STORE-001"
	ErrCodeStoreWrite ErrorCode = "STORE-002"

	// Resource errors (RES-001 to RES-099)
	ErrCodeResourceNotFound   ErrorCode = "RES-001"
	ErrCodeResourceBackend    ErrorCode = "RES-002"
	ErrCodeResourceValidation ErrorCode = "RES-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigLoad    ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid ErrorCode = "CONFIG-002"
)

// AppError is an error with a stable code, an optional cause, and the
// backend's field-level validation messages when the failure carried any.
type AppError struct {
	Code    ErrorCode
	Message string
	Fields  map[string][]string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Cause
}

// FlatMessage returns the human-readable message shown next to a form:
// all field-level messages joined, else the top-level message.
func (e *AppError) FlatMessage() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k]...)
	}
	return strings.Join(msgs, " ")
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new AppError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewValidation creates an AppError carrying the backend's field→messages map.
func NewValidation(code ErrorCode, message string, fields map[string][]string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Fields:  fields,
	}
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the code of err if it is (or wraps) an AppError, else "".
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// FlatMessageOf returns the flattened user-facing message for any error.
func FlatMessageOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.FlatMessage()
	}
	return err.Error()
}
