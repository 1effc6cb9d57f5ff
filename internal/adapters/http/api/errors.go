package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/achievehub/achievehub/internal/domain/errs"
)

// Sentinel kinds for transport-level failures.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// NewKind returns an error of the given kind tagged with op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags err with op and kind, keeping both matchable.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// classify turns any handler error into an errs.Error.
func classify(err error) *errs.Error {
	var e *errs.Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, ErrBadRequest):
		return &errs.Error{Op: "api", Kind: errs.Validation, Code: errs.CodeInvalidInput, Message: err.Error()}
	case errors.Is(err, ErrUnauthorized):
		return &errs.Error{Op: "api", Kind: errs.Unauthorized, Code: errs.CodeInvalidToken, Message: "missing or invalid bearer token"}
	case errors.Is(err, ErrForbidden):
		return &errs.Error{Op: "api", Kind: errs.Forbidden, Code: errs.CodeForbidden, Message: "not allowed for this user"}
	}
	return errs.As(err)
}

// statusOf maps an error kind to its HTTP status.
func statusOf(e *errs.Error) int {
	switch e.Kind {
	case errs.Validation:
		return http.StatusBadRequest
	case errs.NotFound:
		return http.StatusNotFound
	case errs.StateConflict:
		return http.StatusConflict
	case errs.Timing:
		return http.StatusUnprocessableEntity
	case errs.Unauthorized:
		return http.StatusUnauthorized
	case errs.Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
