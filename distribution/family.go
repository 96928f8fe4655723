// SPDX-License-Identifier: MIT

package distribution

import (
	"fmt"
	"strings"
)

// Family names a distribution variant.
type Family string

const (
	FamilyNormal      Family = "normal"
	FamilyUniform     Family = "uniform"
	FamilyExponential Family = "exponential"
	FamilyBeta        Family = "beta"
	FamilyLogNormal   Family = "log-normal"
	FamilyDegenerate  Family = "degenerate"
)

// DefaultFamilies is the candidate set tried by Fit when none is given.
var DefaultFamilies = []Family{
	FamilyNormal,
	FamilyUniform,
	FamilyExponential,
	FamilyBeta,
	FamilyLogNormal,
}

// allFamilies fixes the iteration order used in messages and tie-breaks.
var allFamilies = append(append([]Family(nil), DefaultFamilies...), FamilyDegenerate)

// ParseFamily maps a configuration string onto a Family. Matching ignores
// case and surrounding space; "lognormal" and "log_normal" alias log-normal.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "gaussian":
		return FamilyNormal, nil
	case "uniform":
		return FamilyUniform, nil
	case "exponential":
		return FamilyExponential, nil
	case "beta":
		return FamilyBeta, nil
	case "log-normal", "lognormal", "log_normal":
		return FamilyLogNormal, nil
	case "degenerate", "point":
		return FamilyDegenerate, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

// ParseFamilies parses every name; an empty list yields DefaultFamilies.
func ParseFamilies(names []string) ([]Family, error) {
	if len(names) == 0 {
		return append([]Family(nil), DefaultFamilies...), nil
	}
	out := make([]Family, 0, len(names))
	for _, n := range names {
		f, err := ParseFamily(n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, nil
}

func (f Family) rank() int {
	for i, g := range allFamilies {
		if g == f {
			return i
		}
	}

	return len(allFamilies)
}
