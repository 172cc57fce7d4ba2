package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no live result exists for an email.
	// Missing and expired entries are reported the same way.
	ErrNotFound = errors.New("result not found")

	// ErrInvalidInput is returned when a classifier gets nothing it can score.
	ErrInvalidInput = errors.New("invalid classifier input")
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
