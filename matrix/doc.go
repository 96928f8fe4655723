// SPDX-License-Identifier: MIT

// Package matrix is the small dense linear-algebra layer used by lvsynth.
//
// What it provides:
//
//   - Dense: a row-major float64 matrix with bounds-checked At/Set and a
//     finite-only numeric policy.
//   - Kernels: Add, Mul, Transpose, Scale, MatVec, Symmetrize.
//   - Spectral and factorization routines: Eigen (Jacobi, symmetric input)
//     and Cholesky (lower-triangular, positive-definite input).
//   - NearestCorrelation: repairs an indefinite "correlation" matrix by
//     clipping negative eigenvalues to a floor and restoring the unit diagonal.
//   - Column statistics: Correlation; AllClose and Clip for comparisons.
//
// Every public function returns sentinel errors (see errors.go) wrapped with an
// operation tag; callers match them with errors.Is. Nothing in this package
// panics on user input and nothing logs.
//
// Determinism:
//
//	All loops run in a fixed i→j order, so identical inputs produce identical
//	bits. The copula sampler relies on this for seeded reproducibility.
package matrix
