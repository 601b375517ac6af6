// Package apperr defines the request-facing error kinds of schema.md's
// §7 error handling design: sentinel errors per kind, an AppError
// wrapper carrying an HTTP status, and a resolver from any error to a
// status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrBadRequest         = errors.New("bad request")
	ErrNoContent          = errors.New("no content")
	ErrUnknownRoute       = errors.New("unknown route")
	ErrSchemaInvalid      = errors.New("invalid schema")
	ErrScraping           = errors.New("scraping failed")
	ErrCacheIO            = errors.New("cache I/O failed")
)

// AppError carries the sentinel it wraps, a human-readable message and
// the HTTP status it maps to.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError from a sentinel, status and message.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, StatusCode: statusCode}
}

// Newf is New with a formatted message.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...), StatusCode: statusCode}
}

// BadRequest is a convenience constructor for the most common
// request-time error kind.
func BadRequest(message string) *AppError {
	return New(ErrBadRequest, http.StatusBadRequest, message)
}

// NotFound is a convenience constructor for an unresolved identifier lookup.
func NotFound(message string) *AppError {
	return New(ErrNotFound, http.StatusNotFound, message)
}

// ServiceUnavailable is a convenience constructor for a controller that
// failed or has not finished initializing.
func ServiceUnavailable(message string) *AppError {
	return New(ErrServiceUnavailable, http.StatusServiceUnavailable, message)
}

// HTTPStatus resolves any error to the status code §6 of the spec
// assigns it. AppError values carry their own status; other errors are
// matched against the sentinels above, defaulting to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrScraping):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrNoContent):
		return http.StatusNoContent
	case errors.Is(err, ErrUnknownRoute):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
