package core

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when an upstream source could not be reached
// or answered with an unexpected response. It is distinct from a confirmed
// empty result, which is a normal answer, not an error.
var ErrUnavailable = errors.New("upstream unavailable")

// UnavailableError wraps ErrUnavailable with the failing source named.
type UnavailableError struct {
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// Unavailable wraps err as an UnavailableError for the given source.
func Unavailable(source string, err error) error {
	return &UnavailableError{Source: source, Err: err}
}
