// Package errs carries the error taxonomy shared by the service and transport layers.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Kinds are sentinels so callers can use errors.Is.
type Kind struct{ name string }

func (k *Kind) Error() string { return k.name }

// Error kinds.
var (
	Validation    = &Kind{"validation error"}
	NotFound      = &Kind{"not found"}
	StateConflict = &Kind{"state conflict"}
	Timing        = &Kind{"timing error"}
	Unauthorized  = &Kind{"unauthorized"}
	Forbidden     = &Kind{"forbidden"}
	Store         = &Kind{"store error"}
	Unexpected    = &Kind{"unexpected error"}
)

// Stable machine-readable codes.
const (
	CodeInvalidInput      = "InvalidInput"
	CodeInvalidRating     = "InvalidRating"
	CodeNotFound          = "NotFound"
	CodeActivityNotFound  = "ActivityNotFound"
	CodeStudentNotFound   = "StudentNotFound"
	CodeSkillNotFound     = "SkillNotFound"
	CodeCodeNotFound      = "CodeNotFound"
	CodeDuplicateCode     = "DuplicateCode"
	CodeNotRegistered     = "NotRegistered"
	CodeAlreadyRegistered = "AlreadyRegistered"
	CodeAlreadyConfirmed  = "AlreadyConfirmed"
	CodeAlreadySurveyed   = "AlreadySurveyed"
	CodeNotConfirmed      = "NotConfirmed"
	CodeSurveyIncomplete  = "SurveyIncomplete"
	CodeActivityPast      = "ActivityPast"
	CodeTooEarly          = "TooEarly"
	CodeTooLate           = "TooLate"
	CodeOutOfRange        = "OutOfRange"
	CodeNotEligible       = "NotEligible"
	CodeBadCredentials    = "BadCredentials"
	CodeInvalidToken      = "InvalidToken"
	CodeForbidden         = "Forbidden"
	CodeStoreFailure      = "StoreFailure"
	CodeInternal          = "Internal"
)

// Error is a classified failure with an operation name and optional details.
type Error struct {
	Op      string
	Kind    *Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := []error{e.Kind}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// E builds a classified error.
func E(op string, kind *Kind, code, message string) *Error {
	return &Error{Op: op, Kind: kind, Code: code, Message: message}
}

// With attaches a detail key to the error and returns it.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// Wrap classifies an underlying error.
func Wrap(op string, kind *Kind, code string, err error) *Error {
	return &Error{Op: op, Kind: kind, Code: code, Err: err}
}

// StoreFailure wraps a record store error.
func StoreFailure(op string, err error) *Error {
	return &Error{Op: op, Kind: Store, Code: CodeStoreFailure, Message: "record store failure", Err: err}
}

// As extracts an *Error, classifying anything else as Unexpected.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Op: "unknown", Kind: Unexpected, Code: CodeInternal, Err: err}
}

// CodeOf returns the stable code of err, or "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return As(err).Code
}
