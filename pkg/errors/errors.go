package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the API client, the coordinator and the HTTP surface.
const (
	CodeNetwork              = "NETWORK_ERROR"
	CodeTimeout              = "TIMEOUT"
	CodeHTTP                 = "HTTP_ERROR"
	CodeValidation           = "VALIDATION_ERROR"
	CodeDecode               = "DECODE_ERROR"
	CodeConflict             = "CONFLICT"
	CodeNotFound             = "NOT_FOUND"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeConfirmationDeclined = "CONFIRMATION_DECLINED"
	CodeRefreshSuperseded    = "REFRESH_SUPERSEDED"
	CodeCacheMiss            = "CACHE_MISS"
	CodeInternal             = "INTERNAL_ERROR"
)

// Error represents a typed error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// Field and Reason are populated for validation failures.
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
	// UpstreamStatus is the backend status code for HTTP and validation failures.
	UpstreamStatus int   `json:"upstream_status,omitempty"`
	Err            error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s: %s)", msg, e.Field, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so sentinels match wrapped copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Sentinels for the client-side error taxonomy.
var (
	ErrNetwork              = New(CodeNetwork, http.StatusBadGateway, "backend unreachable")
	ErrTimeout              = New(CodeTimeout, http.StatusGatewayTimeout, "backend request timed out")
	ErrHTTP                 = New(CodeHTTP, http.StatusBadGateway, "backend returned an error status")
	ErrValidation           = New(CodeValidation, http.StatusBadRequest, "validation failed")
	ErrDecode               = New(CodeDecode, http.StatusBadGateway, "unexpected backend response shape")
	ErrConflict             = New(CodeConflict, http.StatusConflict, "a mutation for this item is already in flight")
	ErrNotFound             = New(CodeNotFound, http.StatusNotFound, "resource not found")
	ErrConfirmationRequired = New(CodeConfirmationRequired, http.StatusPreconditionRequired, "destructive action requires confirmation")
	ErrConfirmationDeclined = New(CodeConfirmationDeclined, http.StatusPreconditionFailed, "destructive action was not confirmed")
	ErrRefreshSuperseded    = New(CodeRefreshSuperseded, http.StatusConflict, "refresh superseded by a newer request")
	ErrCacheMiss            = New(CodeCacheMiss, http.StatusNotFound, "cache miss")
	ErrInternal             = New(CodeInternal, http.StatusInternalServerError, "internal server error")
)

// NewNetworkError reports a transport failure with no response.
func NewNetworkError(err error) *Error {
	return Wrap(err, ErrNetwork.Code, ErrNetwork.Status, ErrNetwork.Message)
}

// NewTimeoutError reports that the bounded wait elapsed.
func NewTimeoutError(err error) *Error {
	return Wrap(err, ErrTimeout.Code, ErrTimeout.Status, ErrTimeout.Message)
}

// NewHTTPError reports a non-2xx response without a structured body.
func NewHTTPError(statusCode int) *Error {
	e := Clone(ErrHTTP, fmt.Sprintf("backend returned status %d", statusCode))
	e.UpstreamStatus = statusCode
	if statusCode == http.StatusNotFound {
		e.Status = http.StatusNotFound
	}
	return e
}

// NewValidationError reports a field-level validation failure.
func NewValidationError(field, reason string) *Error {
	e := Clone(ErrValidation, "")
	e.Field = field
	e.Reason = reason
	return e
}

// NewDecodeError reports a response body that does not match the expected shape.
func NewDecodeError(err error) *Error {
	return Wrap(err, ErrDecode.Code, ErrDecode.Status, ErrDecode.Message)
}

// NewConflictError reports a duplicate in-flight mutation for key.
func NewConflictError(key string) *Error {
	e := Clone(ErrConflict, "")
	e.Field = "key"
	e.Reason = key
	return e
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// CodeOf returns the code carried by err, or an empty string.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
