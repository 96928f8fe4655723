// SPDX-License-Identifier: MIT

package dataset

import (
	"errors"
	"fmt"
)

// ErrInput is the sentinel every *InputError unwraps to.
var ErrInput = errors.New("dataset: invalid input")

// Precondition messages shared with the pipeline.
const (
	MsgNoResponses   = "at least one response required"
	MsgNoSchema      = "schema must be provided"
	MsgTooFewNumeric = "at least two numeric fields required"
)

// InputError reports a batch that violates a precondition of the analysis.
// Field is empty for batch-level problems.
type InputError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *InputError) Error() string {
	if e.Field == "" {
		return "input error: " + e.Reason
	}

	return fmt.Sprintf("input error: %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInput) match.
func (e *InputError) Unwrap() error { return ErrInput }

// NewInputError returns a batch-level *InputError.
func NewInputError(reason string) *InputError {
	return &InputError{Reason: reason}
}

// FieldErrorf returns an *InputError bound to one variable.
func FieldErrorf(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
