package ledger

import (
	"errors"
	"fmt"
)

// ErrNotOnboarded is returned when an operation needs a profile and none is stored.
var ErrNotOnboarded = errors.New("not onboarded: run `stipend setup` first")

// ValidationError reports a missing or invalid field. State is unchanged when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
