// SPDX-License-Identifier: MIT

package distribution

import (
	"fmt"
	"math"
)

// New rebuilds a Distribution from a family and its named parameters, as
// produced by Distribution.Parameters. Missing or non-finite parameters and
// parameter values outside the family's domain yield ErrInvalidParameters.
func New(f Family, params map[string]float64) (Distribution, error) {
	get := func(keys ...string) ([]float64, error) {
		out := make([]float64, len(keys))
		for i, k := range keys {
			v, ok := params[k]
			if !ok {
				return nil, invalidParams(f, "missing %q", k)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, invalidParams(f, "%q is not finite", k)
			}
			out[i] = v
		}
		return out, nil
	}

	switch f {
	case FamilyNormal:
		p, err := get("mean", "std")
		if err != nil {
			return nil, err
		}
		if p[1] <= 0 {
			return nil, invalidParams(f, "std must be > 0")
		}
		return Normal{Mu: p[0], Sigma: p[1]}, nil

	case FamilyUniform:
		p, err := get("min", "max")
		if err != nil {
			return nil, err
		}
		if !(p[0] < p[1]) {
			return nil, invalidParams(f, "min must be < max")
		}
		return Uniform{Min: p[0], Max: p[1]}, nil

	case FamilyExponential:
		p, err := get("rate")
		if err != nil {
			return nil, err
		}
		if p[0] <= 0 {
			return nil, invalidParams(f, "rate must be > 0")
		}
		return Exponential{Rate: p[0]}, nil

	case FamilyBeta:
		p, err := get("alpha", "beta", "loc", "scale")
		if err != nil {
			return nil, err
		}
		if p[0] <= 0 || p[1] <= 0 || p[3] <= 0 {
			return nil, invalidParams(f, "alpha, beta and scale must be > 0")
		}
		return Beta{Alpha: p[0], Beta: p[1], Loc: p[2], Scale: p[3]}, nil

	case FamilyLogNormal:
		p, err := get("mu", "sigma")
		if err != nil {
			return nil, err
		}
		if p[1] <= 0 {
			return nil, invalidParams(f, "sigma must be > 0")
		}
		return LogNormal{Mu: p[0], Sigma: p[1]}, nil

	case FamilyDegenerate:
		p, err := get("value")
		if err != nil {
			return nil, err
		}
		return Degenerate{Value: p[0]}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, f)
}
