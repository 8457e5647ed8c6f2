// Package jerrors holds the error taxonomy of the GraphQL exposure layer.
//
// Interaction vetoes (hidden, disabled, invalid) and lookup failures are
// returned by data fetchers and surface as per-field GraphQL errors. Each of
// them implements Extensions so the GraphQL engine reports a machine readable
// code next to the message.
package jerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for clients.
type Code string

const (
	CodeHidden   Code = "HIDDEN"
	CodeDisabled Code = "DISABLED"
	CodeInvalid  Code = "INVALID"
	CodeNotFound Code = "NOT_FOUND"
	CodeInternal Code = "INTERNAL"
	CodeUnknown  Code = "UNKNOWN"
)

var (
	// ErrNotBuilt is returned when field coordinates are requested from a
	// node whose object type has not been built yet.
	ErrNotBuilt = errors.New("object type has not been built")

	// ErrNoRequestContext is returned by fetchers that need request scoped
	// state when the execution context carries none.
	ErrNoRequestContext = errors.New("no request context attached to execution")

	// ErrDuplicateCoordinates is returned when two fetchers are registered
	// for the same field coordinates.
	ErrDuplicateCoordinates = errors.New("data fetcher already registered for coordinates")
)

// HiddenError reports that a feature is not visible to the caller.
type HiddenError struct {
	Feature string
}

func (e *HiddenError) Error() string {
	return fmt.Sprintf("%s is not visible", e.Feature)
}

// Extensions implements gqlerrors.ExtendedError.
func (e *HiddenError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(CodeHidden), "feature": e.Feature}
}

// DisabledError reports that a feature is visible but not usable.
type DisabledError struct {
	Feature string
	Reason  string
}

func (e *DisabledError) Error() string {
	return fmt.Sprintf("%s is disabled: %s", e.Feature, e.Reason)
}

// Extensions implements gqlerrors.ExtendedError.
func (e *DisabledError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(CodeDisabled), "feature": e.Feature, "reason": e.Reason}
}

// InvalidError reports that an argument or association value was rejected
// by the domain object. Reason is the text supplied by the domain.
type InvalidError struct {
	Feature string
	Reason  string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%s is invalid: %s", e.Feature, e.Reason)
}

// Extensions implements gqlerrors.ExtendedError.
func (e *InvalidError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(CodeInvalid), "feature": e.Feature, "reason": e.Reason}
}

// NotFoundError reports a reference that could not be resolved to a live
// domain object.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.What)
}

// Extensions implements gqlerrors.ExtendedError.
func (e *NotFoundError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(CodeNotFound)}
}

// Hidden builds a HiddenError for feature.
func Hidden(feature string) error {
	return &HiddenError{Feature: feature}
}

// Disabled builds a DisabledError for feature.
func Disabled(feature, reason string) error {
	return &DisabledError{Feature: feature, Reason: reason}
}

// Invalid builds an InvalidError for feature.
func Invalid(feature, reason string) error {
	return &InvalidError{Feature: feature, Reason: reason}
}

// NotFound builds a NotFoundError.
func NotFound(format string, args ...interface{}) error {
	return &NotFoundError{What: fmt.Sprintf(format, args...)}
}

// CodeOf classifies err, looking through wrapped errors.
func CodeOf(err error) Code {
	var (
		hidden   *HiddenError
		disabled *DisabledError
		invalid  *InvalidError
		notFound *NotFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &hidden):
		return CodeHidden
	case errors.As(err, &disabled):
		return CodeDisabled
	case errors.As(err, &invalid):
		return CodeInvalid
	case errors.As(err, &notFound):
		return CodeNotFound
	case errors.Is(err, ErrNotBuilt), errors.Is(err, ErrNoRequestContext), errors.Is(err, ErrDuplicateCoordinates):
		return CodeInternal
	default:
		return CodeUnknown
	}
}
