// SPDX-License-Identifier: MIT

package distribution

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFitting is the sentinel every *FittingError unwraps to.
	ErrFitting = errors.New("distribution: could not fit any distribution")

	// ErrUnknownFamily is returned for an unrecognised family name.
	ErrUnknownFamily = errors.New("distribution: unknown family")

	// ErrInvalidParameters is returned when parameters do not define a proper distribution.
	ErrInvalidParameters = errors.New("distribution: invalid parameters")
)

// FittingError reports why no family could be fitted to Variable.
// Reasons maps each attempted family to the reason it was rejected.
type FittingError struct {
	Variable string
	Cause    string
	Reasons  map[Family]string
}

// Error implements error.
func (e *FittingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not fit any distribution to %q: %s", e.Variable, e.Cause)
	for _, f := range allFamilies {
		if r, ok := e.Reasons[f]; ok {
			fmt.Fprintf(&b, "; %s: %s", f, r)
		}
	}

	return b.String()
}

// Unwrap lets errors.Is(err, ErrFitting) match.
func (e *FittingError) Unwrap() error { return ErrFitting }

func invalidParams(f Family, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameters, f, fmt.Sprintf(format, args...))
}
