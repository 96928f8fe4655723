// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Cholesky factorization of symmetric positive-definite matrices.
//   - Nearest-correlation repair by eigenvalue clipping, so that correlation
//     estimates assembled pairwise can still be factorized.

package matrix

import (
	"fmt"
	"math"
)

const (
	opCholesky           = "Cholesky"
	opNearestCorrelation = "NearestCorrelation"
)

// Cholesky returns the lower-triangular L with A = L·Lᵀ.
//
// Implementation:
//   - Stage 1: ValidateSymmetric(A, DefaultEpsilon); copy into a Dense buffer.
//   - Stage 2: Cholesky–Banachiewicz row by row:
//     L[i,j] = (A[i,j] − Σ_k<j L[i,k]·L[j,k]) / L[j,j] for j < i,
//     L[i,i] = sqrt(A[i,i] − Σ_k<i L[i,k]^2).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrAsymmetry.
//   - ErrNotPositiveDefinite when a pivot is ≤ 0 or not finite; the message
//     carries the failing pivot index.
//
// Determinism:
//   - Fixed i→j→k order.
//
// Complexity:
//   - Time O(n^3/3), Space O(n^2).
func Cholesky(m Matrix) (Matrix, error) {
	if err := ValidateSymmetric(m, DefaultEpsilon); err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	a, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	n := a.r
	l, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}

	var i, j, k int
	var sum, pivot float64
	for i = 0; i < n; i++ {
		for j = 0; j <= i; j++ {
			sum = a.data[i*n+j]
			for k = 0; k < j; k++ {
				sum -= l.data[i*n+k] * l.data[j*n+k]
			}
			if i == j {
				if !(sum > 0) || math.IsInf(sum, 0) {
					return nil, matrixErrorf(opCholesky, fmt.Errorf("pivot %d: %w", i, ErrNotPositiveDefinite))
				}
				pivot = math.Sqrt(sum)
				l.data[i*n+i] = pivot
				continue
			}
			l.data[i*n+j] = sum / l.data[j*n+j]
		}
	}

	return l, nil
}

// NearestCorrelation projects a symmetric matrix onto a valid correlation
// matrix (symmetric, unit diagonal, positive definite).
//
// Implementation:
//   - Stage 1: Symmetrize; if Cholesky already succeeds and the diagonal is 1
//     within eps, return that symmetric copy unchanged.
//   - Stage 2: Jacobi Eigen; clip every eigenvalue to at least eigenFloor.
//   - Stage 3: Recompose Q·diag(λ')·Qᵀ and rescale by D^{-1/2} so the diagonal is 1.
//   - Stage 4: Symmetrize again to remove rounding asymmetry.
//
// Options:
//   - WithEigenFloor, WithEigenTolerance, WithEigenMaxIter, WithEpsilon.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrAsymmetry (beyond eps).
//   - ErrNaNInf for non-finite input.
//   - ErrMatrixEigenFailed when Jacobi does not converge.
//
// Notes:
//   - This is a single spectral projection, not the iterated alternating
//     projections of Higham; it is exact when only the eigenvalues are off.
//
// Complexity:
//   - Time O(iter*n^2 + n^3), Space O(n^2).
func NearestCorrelation(m Matrix, opts ...Option) (Matrix, error) {
	o := gatherOptions(opts...)
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opNearestCorrelation, err)
	}
	if err := ValidateFinite(m); err != nil {
		return nil, matrixErrorf(opNearestCorrelation, err)
	}
	// Tolerate small asymmetry from pairwise estimation; reject gross ones.
	if err := ValidateSymmetric(m, math.Max(o.eps, 1e-6)); err != nil {
		return nil, matrixErrorf(opNearestCorrelation, err)
	}

	sym, err := Symmetrize(m)
	if err != nil {
		return nil, matrixErrorf(opNearestCorrelation, err)
	}
	s := sym.(*Dense)
	n := s.r
	if isUnitDiagonal(s, o.eps) {
		if _, cerr := Cholesky(s); cerr == nil {
			return s, nil
		}
	}

	eigs, q, err := Eigen(s, o.eigenTol, o.eigenIterCap(n))
	if err != nil {
		return nil, matrixErrorf(opNearestCorrelation, err)
	}
	qd := q.(*Dense)
	for i := range eigs {
		if eigs[i] < o.eigenFloor {
			eigs[i] = o.eigenFloor
		}
	}

	// B = Q·diag(λ')·Qᵀ, computed directly to avoid two dense products.
	b, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opNearestCorrelation, err)
	}
	var i, j, k int
	var acc float64
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			acc = ZeroSum
			for k = 0; k < n; k++ {
				acc += qd.data[i*n+k] * eigs[k] * qd.data[j*n+k]
			}
			b.data[i*n+j] = acc
			b.data[j*n+i] = acc
		}
	}

	// D^{-1/2} B D^{-1/2}; the clipped spectrum keeps every diagonal > 0.
	inv := make([]float64, n)
	for i = 0; i < n; i++ {
		inv[i] = 1.0 / math.Sqrt(b.data[i*n+i])
	}
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			b.data[i*n+j] *= inv[i] * inv[j]
		}
		b.data[i*n+i] = 1
	}

	out, err := Symmetrize(b)
	if err != nil {
		return nil, matrixErrorf(opNearestCorrelation, err)
	}

	return out, nil
}

// isUnitDiagonal reports whether every |d[i,i] - 1| ≤ eps.
func isUnitDiagonal(d *Dense, eps float64) bool {
	for i := 0; i < d.r; i++ {
		if math.Abs(d.data[i*d.c+i]-1) > eps {
			return false
		}
	}

	return true
}
