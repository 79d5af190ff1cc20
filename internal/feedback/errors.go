package feedback

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks empty or missing required input.
	ErrValidation = errors.New("validation error")
	// ErrRange marks a malformed date or a start date after the end date.
	ErrRange = errors.New("range error")
	// ErrStorage marks an unreadable or unwritable feedback log.
	ErrStorage = errors.New("storage error")
	// ErrOracle marks a failed or timed out text generation call.
	ErrOracle = errors.New("oracle error")

	// ErrLogNotFound is returned when reporting runs before any feedback was logged.
	ErrLogNotFound = fmt.Errorf("%w: feedback log not found", ErrStorage)
)

// ParseError is returned when the oracle's reply is missing a labeled field
// or carries a value that cannot be read.
type ParseError struct {
	Field  string
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse analysis: field %s: %s", e.Field, e.Reason)
}
