// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Column statistics over an observation matrix X (rows = records,
//     columns = variables): centering and Pearson correlation.
//   - Built as compositions of the canonical kernels (Transpose, Mul, Scale)
//     and the ew* micro-kernels.
//
// Exposed API (see api.go):
//   - Correlation(X) -> (Corr, means, stds) // z-scored; degenerate std=0 → zero column
//
// AI-Hints:
//   - Pass *Dense to unlock the flat-slice fast paths.
//   - Pairwise-complete statistics with missing values live in package
//     correlation; this file assumes a complete, finite X.

package matrix

import "math"

const (
	opCenterColumns = "centerColumns"
	opCorrelation   = "Correlation"
)

// centerColumns subtracts the per-column mean from every element.
//
// Returns:
//   - Matrix: centered copy (r×c).
//   - []float64: column means Σ_i X[i,j] / r.
//
// Errors:
//   - ErrNilMatrix; wrapped At errors from the fallback path.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func centerColumns(X Matrix) (Matrix, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opCenterColumns, err)
	}
	r, c := X.Rows(), X.Cols()
	means := make([]float64, c)

	var i, j int
	var v float64
	if d, ok := X.(*Dense); ok {
		for i = 0; i < r; i++ {
			base := i * c
			for j = 0; j < c; j++ {
				means[j] += d.data[base+j]
			}
		}
	} else {
		var err error
		for i = 0; i < r; i++ {
			for j = 0; j < c; j++ {
				if v, err = X.At(i, j); err != nil {
					return nil, nil, matrixErrorf(opCenterColumns, err)
				}
				means[j] += v
			}
		}
	}

	invR := 1.0 / float64(r)
	for j = 0; j < c; j++ {
		means[j] *= invR
	}

	Xc, err := ewBroadcastSubCols(X, means)
	if err != nil {
		return nil, nil, matrixErrorf(opCenterColumns, err)
	}

	return Xc, means, nil
}

// gram returns (Aᵀ A)/(r-1) for an r×c matrix A.
func gram(A Matrix, tag string) (Matrix, error) {
	At, err := Transpose(A)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}
	G, err := Mul(At, A)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}
	out, err := Scale(G, 1.0/float64(A.Rows()-1))
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}

	return out, nil
}

// correlation computes Pearson correlation of columns via z-scoring:
// Corr = (Zᵀ Z)/(r-1) with Z = (X − mean) * diag(1/std).
//
// Behavior highlights:
//   - Symmetric; diagonal is 1 for non-degenerate columns and 0 for constant ones.
//   - Scale-invariant: Corr(α*X) == Corr(X) for α > 0.
//
// Errors:
//   - ErrNilMatrix; ErrDimensionMismatch when r < 2.
//
// Complexity:
//   - Time O(r*c^2), Space O(r*c + c^2).
//
// AI-Hints:
//   - The copula sampler uses this on freshly drawn latent normals; callers
//     that need a strict unit diagonal must overwrite degenerate entries.
func correlation(X Matrix) (Matrix, []float64, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	r, c := X.Rows(), X.Cols()
	if r < 2 {
		return nil, nil, nil, matrixErrorf(opCorrelation, ErrDimensionMismatch)
	}

	Xc, means, err := centerColumns(X)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}

	// std[j] = sqrt(Σ_i Xc[i,j]^2 / (r-1)); Xc is always *Dense here.
	xd := Xc.(*Dense)
	sumsq := make([]float64, c)
	var i, j int
	var v float64
	for i = 0; i < r; i++ {
		base := i * c
		for j = 0; j < c; j++ {
			v = xd.data[base+j]
			sumsq[j] += v * v
		}
	}

	stds := make([]float64, c)
	invStd := make([]float64, c)
	inv := 1.0 / float64(r-1)
	for j = 0; j < c; j++ {
		stds[j] = math.Sqrt(sumsq[j] * inv)
		if stds[j] > 0 {
			invStd[j] = 1.0 / stds[j]
		}
	}

	Z, err := ewScaleCols(Xc, invStd)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	corr, err := gram(Z, opCorrelation)
	if err != nil {
		return nil, nil, nil, err
	}

	return corr, means, stds, nil
}
