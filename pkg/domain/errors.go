package domain

import (
	"errors"
	"fmt"
)

// InputError reports user-supplied input that cannot be used as given. It is
// fatal for the invocation and must not be retried.
type InputError struct {
	Field    string
	RawValue any
	Reason   string
}

func NewInputError(field string, rawValue any, reason string) *InputError {
	return &InputError{
		Field:    field,
		RawValue: rawValue,
		Reason:   reason,
	}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.RawValue, e.Reason)
}

func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}
