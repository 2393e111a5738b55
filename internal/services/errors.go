package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the moderation and interaction workflows. Handlers map
// these to HTTP statuses and machine-readable kinds; anything else is treated
// as a retryable storage error and reported generically.
var (
	// ErrNotFound means the referenced submission, resource, or comment does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyProcessed means a state transition was attempted on a
	// submission that already left the pending state. Callers treat it as a
	// benign no-op, not a failure.
	ErrAlreadyProcessed = errors.New("submission already processed")

	// ErrNotAuthorized means the actor failed the moderation gate or has no
	// session at all.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrEmailNotVerified means a session is present but its email is not
	// verified. Distinct from ErrNotAuthorized so the UI can prompt for
	// verification instead of login.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrRateLimited means the rolling window for this actor is exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrSlugExhausted means the slug probe budget and its fallback both
	// collided.
	ErrSlugExhausted = errors.New("slug namespace exhausted")
)

// ErrorKind returns the machine-readable kind for an error, or "storage" for
// anything outside the taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, ErrEmailNotVerified):
		return "email_not_verified"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrSlugExhausted):
		return "slug_exhausted"
	default:
		var verr *ValidationError
		if errors.As(err, &verr) {
			return "validation"
		}
		return "storage"
	}
}

// ValidationError carries field-level messages from intake validation. It is
// detected before any write, so a validation failure never leaves partial
// state.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}
