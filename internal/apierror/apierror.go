// Package apierror provides standardized error response structures for the API
// together with the domain error taxonomy raised by the service layer.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// ── Domain errors ─────────────────────────────────────────────────────────────

// Sentinels for errors.Is matching. Services never return these directly;
// they return *Error values that unwrap to one of them.
var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
)

// Error is a classified domain error. Msg is safe to show to API clients.
type Error struct {
	Kind error
	Msg  string

	// Available is set for insufficient-stock errors only.
	Available *int
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validationf reports malformed input.
func Validationf(format string, args ...any) *Error {
	return newError(ErrValidation, format, args...)
}

// Conflictf reports a state-machine violation; callers may retry after refetching.
func Conflictf(format string, args ...any) *Error {
	return newError(ErrConflict, format, args...)
}

// NotFound reports a missing entity or one outside the caller's company scope.
func NotFound(entity string) *Error {
	return newError(ErrNotFound, "%s not found", entity)
}

// Forbiddenf reports an explicit cross-company request by a non-SUPERADMIN.
func Forbiddenf(format string, args ...any) *Error {
	return newError(ErrForbidden, format, args...)
}

// Unauthorizedf reports bad credentials or an unusable token.
func Unauthorizedf(format string, args ...any) *Error {
	return newError(ErrUnauthorized, format, args...)
}

// InsufficientStock carries the quantity that is actually available so the
// client can correct the request.
func InsufficientStock(item string, available int) *Error {
	e := newError(ErrInsufficientStock, "insufficient stock for %s: %d available", item, available)
	e.Available = &available
	return e
}

// AvailableQuantity extracts the available quantity from an insufficient-stock error.
func AvailableQuantity(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Available != nil {
		return *e.Available, true
	}
	return 0, false
}

// HTTPStatus maps a domain error to its HTTP status code. Unclassified errors
// are 500 and must not be echoed to the client.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// IsDomain reports whether err carries a client-safe message.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
