// SPDX-License-Identifier: MIT

package distribution

import (
	"math"
	"math/rand"
)

// Distribution is the capability shared by every fitted family.
type Distribution interface {
	Family() Family
	// Parameters returns the named parameters as stored in a Candidate.
	Parameters() map[string]float64
	CDF(x float64) float64
	// Quantile is the inverse CDF; p outside (0,1) returns the support bounds.
	Quantile(p float64) float64
	Mean() float64
	Variance() float64
	// Sample draws one value by inverse transform on rng.
	Sample(rng *rand.Rand) float64
}

// Compile-time checks.
var (
	_ Distribution = Normal{}
	_ Distribution = Uniform{}
	_ Distribution = Exponential{}
	_ Distribution = Beta{}
	_ Distribution = LogNormal{}
	_ Distribution = Degenerate{}
)

// openUnit draws from (0,1); rand.Float64 may return exactly 0.
func openUnit(rng *rand.Rand) float64 {
	for {
		if u := rng.Float64(); u > 0 {
			return u
		}
	}
}

// Normal is N(Mu, Sigma²).
type Normal struct{ Mu, Sigma float64 }

func (Normal) Family() Family { return FamilyNormal }
func (d Normal) Parameters() map[string]float64 {
	return map[string]float64{"mean": d.Mu, "std": d.Sigma}
}
func (d Normal) CDF(x float64) float64 { return StdNormalCDF((x - d.Mu) / d.Sigma) }
func (d Normal) Quantile(p float64) float64 {
	return d.Mu + d.Sigma*StdNormalQuantile(p)
}
func (d Normal) Mean() float64                 { return d.Mu }
func (d Normal) Variance() float64             { return d.Sigma * d.Sigma }
func (d Normal) Sample(rng *rand.Rand) float64 { return d.Mu + d.Sigma*rng.NormFloat64() }

// Uniform is U[Min, Max].
type Uniform struct{ Min, Max float64 }

func (Uniform) Family() Family { return FamilyUniform }
func (d Uniform) Parameters() map[string]float64 {
	return map[string]float64{"min": d.Min, "max": d.Max}
}
func (d Uniform) CDF(x float64) float64 {
	switch {
	case x <= d.Min:
		return 0
	case x >= d.Max:
		return 1
	}

	return (x - d.Min) / (d.Max - d.Min)
}
func (d Uniform) Quantile(p float64) float64 {
	p = math.Max(0, math.Min(1, p))

	return d.Min + p*(d.Max-d.Min)
}
func (d Uniform) Mean() float64 { return 0.5 * (d.Min + d.Max) }
func (d Uniform) Variance() float64 {
	w := d.Max - d.Min

	return w * w / 12
}
func (d Uniform) Sample(rng *rand.Rand) float64 { return d.Quantile(rng.Float64()) }

// Exponential has density Rate·exp(−Rate·x) on [0, ∞).
type Exponential struct{ Rate float64 }

func (Exponential) Family() Family { return FamilyExponential }
func (d Exponential) Parameters() map[string]float64 {
	return map[string]float64{"rate": d.Rate}
}
func (d Exponential) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}

	return -math.Expm1(-d.Rate * x)
}
func (d Exponential) Quantile(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return math.Inf(1)
	}

	return -math.Log1p(-p) / d.Rate
}
func (d Exponential) Mean() float64                 { return 1 / d.Rate }
func (d Exponential) Variance() float64             { return 1 / (d.Rate * d.Rate) }
func (d Exponential) Sample(rng *rand.Rand) float64 { return rng.ExpFloat64() / d.Rate }

// Beta is a Beta(Alpha, Beta) variable mapped onto [Loc, Loc+Scale].
// Data already in [0,1] uses Loc=0, Scale=1.
type Beta struct{ Alpha, Beta, Loc, Scale float64 }

func (Beta) Family() Family { return FamilyBeta }
func (d Beta) Parameters() map[string]float64 {
	return map[string]float64{"alpha": d.Alpha, "beta": d.Beta, "loc": d.Loc, "scale": d.Scale}
}
func (d Beta) CDF(x float64) float64 {
	return regIncBeta((x-d.Loc)/d.Scale, d.Alpha, d.Beta)
}
func (d Beta) Quantile(p float64) float64 {
	switch {
	case p <= 0:
		return d.Loc
	case p >= 1:
		return d.Loc + d.Scale
	}
	y := invertCDF(func(y float64) float64 { return regIncBeta(y, d.Alpha, d.Beta) }, p, 0, 1)

	return d.Loc + d.Scale*y
}
func (d Beta) Mean() float64 { return d.Loc + d.Scale*d.Alpha/(d.Alpha+d.Beta) }
func (d Beta) Variance() float64 {
	s := d.Alpha + d.Beta

	return d.Scale * d.Scale * d.Alpha * d.Beta / (s * s * (s + 1))
}
func (d Beta) Sample(rng *rand.Rand) float64 { return d.Quantile(openUnit(rng)) }

// LogNormal is exp(N(Mu, Sigma²)).
type LogNormal struct{ Mu, Sigma float64 }

func (LogNormal) Family() Family { return FamilyLogNormal }
func (d LogNormal) Parameters() map[string]float64 {
	return map[string]float64{"mu": d.Mu, "sigma": d.Sigma}
}
func (d LogNormal) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}

	return StdNormalCDF((math.Log(x) - d.Mu) / d.Sigma)
}
func (d LogNormal) Quantile(p float64) float64 {
	return math.Exp(d.Mu + d.Sigma*StdNormalQuantile(p))
}
func (d LogNormal) Mean() float64 { return math.Exp(d.Mu + d.Sigma*d.Sigma/2) }
func (d LogNormal) Variance() float64 {
	s2 := d.Sigma * d.Sigma

	return math.Expm1(s2) * math.Exp(2*d.Mu+s2)
}
func (d LogNormal) Sample(rng *rand.Rand) float64 {
	return math.Exp(d.Mu + d.Sigma*rng.NormFloat64())
}

// Degenerate is a point mass at Value.
type Degenerate struct{ Value float64 }

func (Degenerate) Family() Family { return FamilyDegenerate }
func (d Degenerate) Parameters() map[string]float64 {
	return map[string]float64{"value": d.Value}
}
func (d Degenerate) CDF(x float64) float64 {
	if x < d.Value {
		return 0
	}

	return 1
}
func (d Degenerate) Quantile(float64) float64  { return d.Value }
func (d Degenerate) Mean() float64             { return d.Value }
func (d Degenerate) Variance() float64         { return 0 }
func (d Degenerate) Sample(*rand.Rand) float64 { return d.Value }
