// SPDX-License-Identifier: MIT
// Package matrix — public API facades.
//
// Purpose:
//   - Thin entry points that compose or forward to the canonical kernels.
//   - Validation lives in the kernels; facades never duplicate loops.
//
// AI-Hints:
//   - Prefer passing *Dense to unlock fast paths in kernels.
//   - For correlation repair call NearestCorrelation; for factorization Cholesky.

package matrix

// NewIdentity returns I_n (ones on the diagonal, zeros elsewhere).
// Complexity: O(n^2) zeroing + O(n) diagonal writes.
func NewIdentity(n int) (*Dense, error) {
	I, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		I.data[i*n+i] = 1.0
	}

	return I, nil
}

// Symmetrize returns (m + mᵀ)/2. Deterministic composition: Transpose → Add → Scale.
// Complexity: O(rc).
//
// AI-Hints: repairs asymmetry drift in pairwise correlation estimates.
func Symmetrize(m Matrix) (Matrix, error) {
	mt, err := Transpose(m)
	if err != nil {
		return nil, matrixErrorf("Symmetrize", err)
	}
	sum, err := Add(m, mt)
	if err != nil {
		return nil, matrixErrorf("Symmetrize", err)
	}

	return Scale(sum, 0.5)
}

// Clip returns a copy of m with elements clamped into [lo, hi] (both finite).
// Policy: if lo > hi the bounds are swapped; NaN/Inf bounds are rejected.
//
// AI-Hints: keeps correlation coefficients inside [-1, 1] after rounding.
func Clip(m Matrix, lo, hi float64) (Matrix, error) { return ewClipRange(m, lo, hi) }

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
//
// AI-Hints: the copula builder uses it to confirm L·Lᵀ reproduces the
// correlation it factorized.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	return ewAllClose(a, b, rtol, atol)
}

// Correlation computes Pearson correlation of columns via z-scoring:
//
//	Z = (X - mean) / std,  std^2 = Σ (Xc)^2 / (n-1),  degenerate std==0 ⇒ column zeroed.
//	Corr = (Zᵀ Z)/(n-1).
//
// Returns Corr, means, stds.
func Correlation(X Matrix) (Matrix, []float64, []float64, error) { return correlation(X) }
