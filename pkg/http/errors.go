package http

import (
	"fmt"
	"net/http"
)

// Error codes carried by AppError. Clients switch on these, not on messages.
const (
	CodeNotFound      = "ERR_NOT_FOUND"
	CodeUnknownDomain = "ERR_UNKNOWN_DOMAIN"
	CodeRateLimited   = "ERR_RATE_LIMITED"
	CodeInternal      = "ERR_INTERNAL"
)

// AppError is an API failure rendered inside the envelope's data list.
// Status picks the HTTP code; Err stays server-side.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func newAppError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCode replaces the generic code with a more specific one.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithParam attaches a value the client may render, e.g. the rejected domain.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundError(message string) *AppError {
	return newAppError(http.StatusNotFound, CodeNotFound, message)
}

func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return NotFoundError(fmt.Sprintf(format, a...))
}

// TooManyRequestsError is returned by the mutating risk routes when a client's bucket is empty.
func TooManyRequestsError(message string) *AppError {
	return newAppError(http.StatusTooManyRequests, CodeRateLimited, message)
}

// InternalError hides err from the client and keeps it for logging.
func InternalError(err error) *AppError {
	return newAppError(http.StatusInternalServerError, CodeInternal, "internal error").WithError(err)
}
