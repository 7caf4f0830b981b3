// Package apperr defines the error taxonomy returned by workspace intents.
//
// Every error is produced synchronously and leaves workspace state unchanged.
// Callers classify errors with errors.As or the Is* helpers.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// ErrForbidden is returned when the authorizer rejects an intent.
var ErrForbidden = errors.New("forbidden")

// ValidationError reports an empty or malformed field on an intent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation creates a new ValidationError.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a reference to a nonexistent entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NotFound creates a new NotFoundError.
func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvariantViolation signals a data-integrity problem, such as a reply that
// points forward in time or into another workspace.
type InvariantViolation struct {
	Rule   string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Rule, e.Detail)
}

// Invariant creates a new InvariantViolation.
func Invariant(rule, detail string) *InvariantViolation {
	return &InvariantViolation{Rule: rule, Detail: detail}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsInvariant(err error) bool {
	var target *InvariantViolation
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsRetryable reports whether repeating the failed call could succeed.
// Workspace errors are deterministic against the state they were checked
// against, so none of them are retryable; neither is a cancelled context.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsValidation(err) || IsNotFound(err) || IsInvariant(err) || IsForbidden(err) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsValidation(err):
		return "validation"
	case IsNotFound(err):
		return "not_found"
	case IsInvariant(err):
		return "invariant"
	case IsForbidden(err):
		return "forbidden"
	default:
		return "internal"
	}
}
