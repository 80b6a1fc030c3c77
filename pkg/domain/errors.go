package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that an identifier does not resolve, or that no
// relationship path connects two people.
var ErrNotFound = errors.New("not found")

var (
	// ErrUnknownPerson is returned by path queries when an endpoint id is not in the population.
	ErrUnknownPerson = fmt.Errorf("unknown person: %w", ErrNotFound)
	// ErrNoPath is returned by path queries when both people exist but are not connected.
	ErrNoPath = fmt.Errorf("no path: %w", ErrNotFound)
)

// ValidationError reports a rejected argument or record field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid argument: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError constructs a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
