// SPDX-License-Identifier: MIT

package distribution

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// minCandidateSamples is the smallest finite sample a parametric candidate accepts.
const minCandidateSamples = 3

// minFitSamples is the smallest finite sample Fit accepts at all.
const minFitSamples = 2

// betaEdge keeps rescaled beta data strictly inside (0,1).
const betaEdge = 1e-6

var errSkipped = errors.New("skipped")

// Candidate is one fitted family with its score.
type Candidate struct {
	Family        Family             `json:"name"`
	Parameters    map[string]float64 `json:"parameters"`
	GoodnessOfFit float64            `json:"goodnessOfFit"`
}

// Distribution rebuilds the Distribution described by c.
func (c Candidate) Distribution() (Distribution, error) { return New(c.Family, c.Parameters) }

// Fit is the outcome of fitting one variable.
type Fit struct {
	Variable     string      `json:"variable"`
	Best         Candidate   `json:"bestFit"`
	Alternatives []Candidate `json:"alternatives"`
}

// Distribution rebuilds the best-fitting Distribution.
func (f Fit) Distribution() (Distribution, error) { return f.Best.Distribution() }

// Fitter fits variables against a fixed candidate set.
// The zero value tries DefaultFamilies.
type Fitter struct {
	Families []Family
}

// Fit is FitSample with the fitter's families.
func (f Fitter) Fit(variable string, samples []float64) (Fit, error) {
	return FitSample(variable, samples, f.Families...)
}

// FitSample fits samples for variable against families (DefaultFamilies when
// none are given).
//
// Behavior highlights:
//   - NaN and ±Inf are dropped first. Fewer than 2 finite values ⇒ *FittingError.
//   - A zero-variance sample returns a Degenerate best fit with score 1.
//   - A family needs at least 3 finite values and its own support
//     (exponential: min ≥ 0 and mean > 0; log-normal: all > 0); otherwise it
//     is skipped and its reason recorded.
//   - No surviving candidate ⇒ *FittingError listing every reason.
//
// Determinism:
//   - Pure; ties in score keep the family order of DefaultFamilies.
func FitSample(variable string, samples []float64, families ...Family) (Fit, error) {
	xs := finite(samples)
	if len(xs) < minFitSamples {
		return Fit{}, &FittingError{
			Variable: variable,
			Cause:    fmt.Sprintf("%d finite values, need at least %d", len(xs), minFitSamples),
		}
	}
	if len(families) == 0 {
		families = DefaultFamilies
	}

	if lo, hi := minMax(xs); lo == hi {
		d := Degenerate{Value: lo}
		return Fit{
			Variable:     variable,
			Best:         Candidate{Family: FamilyDegenerate, Parameters: d.Parameters(), GoodnessOfFit: 1},
			Alternatives: []Candidate{},
		}, nil
	}

	cands := make([]Candidate, 0, len(families))
	reasons := make(map[Family]string)
	for _, f := range families {
		d, err := estimate(f, xs)
		if err != nil {
			reasons[f] = err.Error()
			continue
		}
		cands = append(cands, Candidate{
			Family:        f,
			Parameters:    d.Parameters(),
			GoodnessOfFit: 1 - KSStatistic(xs, d.CDF),
		})
	}
	if len(cands) == 0 {
		return Fit{}, &FittingError{Variable: variable, Cause: "no candidate family succeeded", Reasons: reasons}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].GoodnessOfFit != cands[j].GoodnessOfFit {
			return cands[i].GoodnessOfFit > cands[j].GoodnessOfFit
		}
		return cands[i].Family.rank() < cands[j].Family.rank()
	})

	return Fit{Variable: variable, Best: cands[0], Alternatives: cands[1:]}, nil
}

// estimate runs the closed-form moment estimator of family f.
func estimate(f Family, xs []float64) (Distribution, error) {
	if len(xs) < minCandidateSamples {
		return nil, fmt.Errorf("%w: %d values, need %d", errSkipped, len(xs), minCandidateSamples)
	}
	lo, hi := minMax(xs)
	m, v := meanVar(xs)

	switch f {
	case FamilyNormal:
		return Normal{Mu: m, Sigma: math.Sqrt(v)}, nil

	case FamilyUniform:
		return Uniform{Min: lo, Max: hi}, nil

	case FamilyExponential:
		if lo < 0 || m <= 0 {
			return nil, fmt.Errorf("%w: needs non-negative data with positive mean", errSkipped)
		}
		return Exponential{Rate: 1 / m}, nil

	case FamilyBeta:
		return estimateBeta(xs, lo, hi)

	case FamilyLogNormal:
		if lo <= 0 {
			return nil, fmt.Errorf("%w: needs strictly positive data", errSkipped)
		}
		logs := make([]float64, len(xs))
		for i, x := range xs {
			logs[i] = math.Log(x)
		}
		lm, lv := meanVar(logs)
		if lv == 0 {
			return nil, fmt.Errorf("%w: zero variance of logs", errSkipped)
		}
		return LogNormal{Mu: lm, Sigma: math.Sqrt(lv)}, nil

	case FamilyDegenerate:
		return nil, fmt.Errorf("%w: sample is not constant", errSkipped)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, f)
}

// estimateBeta uses the method of moments on data mapped into (0,1).
// Data already inside [0,1] keeps loc=0, scale=1; anything else is rescaled
// by its observed range.
func estimateBeta(xs []float64, lo, hi float64) (Distribution, error) {
	loc, scale := 0.0, 1.0
	if lo < 0 || hi > 1 {
		loc, scale = lo, hi-lo
	}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = math.Max(betaEdge, math.Min(1-betaEdge, (x-loc)/scale))
	}
	m, v := meanVar(ys)
	common := m*(1-m)/v - 1
	if !(common > 0) || math.IsInf(common, 0) {
		return nil, fmt.Errorf("%w: variance too large for a beta shape", errSkipped)
	}

	return Beta{Alpha: m * common, Beta: (1 - m) * common, Loc: loc, Scale: scale}, nil
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}

	return out
}

// meanVar returns the mean and the unbiased (n−1) variance.
func meanVar(xs []float64) (mean, variance float64) {
	n := float64(len(xs))
	for _, x := range xs {
		mean += x
	}
	mean /= n
	if len(xs) < 2 {
		return mean, 0
	}
	var d float64
	for _, x := range xs {
		d = x - mean
		variance += d * d
	}

	return mean, variance / (n - 1)
}

func minMax(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}

	return lo, hi
}
