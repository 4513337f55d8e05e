package query

import (
	"errors"
)

// ErrInvalidRequest is matched by every parameter validation failure
var ErrInvalidRequest = errors.New("invalid request")

// ValidationError describes a rejected query parameter
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports ValidationError values as ErrInvalidRequest
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func invalid(param, message string) error {
	return &ValidationError{Param: param, Message: message}
}
