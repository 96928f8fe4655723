// SPDX-License-Identifier: MIT

package copula

import (
	"errors"
	"fmt"
)

// ErrConstruction is the sentinel every *ConstructionError unwraps to.
var ErrConstruction = errors.New("copula: cannot build joint distribution")

// ConstructionError reports inputs that cannot form a joint distribution.
// Err, when set, is the underlying cause (e.g. a matrix sentinel).
type ConstructionError struct {
	Reason string
	Err    error
}

// Error implements error.
func (e *ConstructionError) Error() string {
	if e.Err == nil {
		return "construction error: " + e.Reason
	}

	return fmt.Sprintf("construction error: %s: %v", e.Reason, e.Err)
}

// Unwrap exposes both ErrConstruction and the cause to errors.Is / errors.As.
func (e *ConstructionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConstruction}
	}

	return []error{ErrConstruction, e.Err}
}

func constructionf(err error, format string, args ...any) *ConstructionError {
	return &ConstructionError{Reason: fmt.Sprintf(format, args...), Err: err}
}
