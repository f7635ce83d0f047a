package middleware

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated indicates the request carried no valid credential.
	ErrUnauthenticated = errors.New("middleware: unauthenticated")

	// ErrInvalidInput indicates the request failed sanitization.
	ErrInvalidInput = errors.New("middleware: invalid input")
)

// SanitizeError reports which part of the input was rejected and why.
type SanitizeError struct {
	Field  string
	Reason string
}

func (e *SanitizeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("middleware: invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("middleware: invalid input: %s: %s", e.Field, e.Reason)
}

func (e *SanitizeError) Unwrap() error { return ErrInvalidInput }
