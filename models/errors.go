package models

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid option parameters")

// ValidationError names the offending parameter and the constraint it broke.
type ValidationError struct {
	Field      string
	Constraint string
	Value      interface{}
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Constraint)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Constraint, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
