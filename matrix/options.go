// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the numeric policy and the
// spectral routines. This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the tolerance used by structural checks (symmetry,
	// "already a valid correlation matrix" short-circuit).
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation on Set.
	DefaultValidateNaNInf = true

	// DefaultEigenTolerance is the Jacobi convergence threshold on the
	// largest off-diagonal magnitude.
	DefaultEigenTolerance = 1e-12

	// DefaultEigenMaxIter caps Jacobi rotations; the effective cap is
	// max(DefaultEigenMaxIter, 50*n*n) so larger inputs still converge.
	DefaultEigenMaxIter = 2000

	// DefaultEigenFloor is the minimum eigenvalue kept by NearestCorrelation.
	// A strictly positive floor makes the repaired matrix Cholesky-safe.
	DefaultEigenFloor = 1e-8
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicEpsilonInvalid    = "matrix: WithEpsilon: eps must be finite, non-negative"
	panicEigenTolInvalid   = "matrix: WithEigenTolerance: tol must be finite, positive"
	panicEigenIterInvalid  = "matrix: WithEigenMaxIter: maxIter must be positive"
	panicEigenFloorInvalid = "matrix: WithEigenFloor: floor must be finite, positive and < 1"
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
// Constructors MUST panic only on nonsensical values (programmer error).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept `...Option`.
type Options struct {
	eps          float64 // >= 0; DefaultEpsilon
	eigenTol     float64 // > 0; DefaultEigenTolerance
	eigenMaxIter int     // > 0; DefaultEigenMaxIter
	eigenFloor   float64 // (0,1); DefaultEigenFloor
}

// WithEpsilon sets the numeric tolerance eps used by structural checks.
// Panics when eps is NaN, ±Inf or negative.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithEigenTolerance sets the Jacobi convergence threshold.
// Panics when tol is not finite and strictly positive.
func WithEigenTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 0 {
		panic(panicEigenTolInvalid)
	}

	return func(o *Options) { o.eigenTol = tol }
}

// WithEigenMaxIter caps the number of Jacobi rotations.
// Panics when maxIter <= 0.
func WithEigenMaxIter(maxIter int) Option {
	if maxIter <= 0 {
		panic(panicEigenIterInvalid)
	}

	return func(o *Options) { o.eigenMaxIter = maxIter }
}

// WithEigenFloor sets the minimum eigenvalue kept by NearestCorrelation.
//
// Notes:
//   - Larger floors move the repaired matrix further from the input but make
//     the Cholesky factor better conditioned.
//
// AI-Hints:
//   - 1e-8 is enough for float64 Cholesky on n ≤ a few hundred variables.
func WithEigenFloor(floor float64) Option {
	if math.IsNaN(floor) || math.IsInf(floor, 0) || floor <= 0 || floor >= 1 {
		panic(panicEigenFloorInvalid)
	}

	return func(o *Options) { o.eigenFloor = floor }
}

// defaultOptions returns the documented defaults (single source of truth).
func defaultOptions() Options {
	return Options{
		eps:          DefaultEpsilon,
		eigenTol:     DefaultEigenTolerance,
		eigenMaxIter: DefaultEigenMaxIter,
		eigenFloor:   DefaultEigenFloor,
	}
}

// gatherOptions applies user-provided Option setters on top of defaults.
// Last-writer-wins; nil setters are ignored.
func gatherOptions(user ...Option) Options {
	o := defaultOptions()
	for _, set := range user {
		if set != nil {
			set(&o)
		}
	}

	return o
}

// eigenIterCap returns the effective rotation cap for an n×n input.
func (o Options) eigenIterCap(n int) int {
	scaled := 50 * n * n
	if scaled > o.eigenMaxIter {
		return scaled
	}

	return o.eigenMaxIter
}
