// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Private element-wise and broadcast kernels (ew*) shared by the statistics
//     and correlation-repair code paths.
//   - Dense fast paths walk the flat row-major buffer; other Matrix values go
//     through At with full error propagation.

package matrix

import "math"

const (
	ewTagSubCols  = "broadcastSubCols"
	ewTagScaleCol = "scaleCols"
	ewTagClip     = "Clip"
	ewTagAllClose = "AllClose"
)

// ewMap builds out[i,j] = f(j, X[i,j]) in fixed i→j order.
// Every ew* kernel below is a thin specialisation of it.
func ewMap(X Matrix, tag string, f func(j int, v float64) float64) (*Dense, error) {
	r, c := X.Rows(), X.Cols()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}

	var i, j, base int
	if d, ok := X.(*Dense); ok {
		for i = 0; i < r; i++ {
			base = i * c
			for j = 0; j < c; j++ {
				out.data[base+j] = f(j, d.data[base+j])
			}
		}

		return out, nil
	}

	var v float64
	for i = 0; i < r; i++ {
		base = i * c
		for j = 0; j < c; j++ {
			if v, err = X.At(i, j); err != nil {
				return nil, matrixErrorf(tag, err)
			}
			out.data[base+j] = f(j, v)
		}
	}

	return out, nil
}

// ewBroadcastSubCols computes out[i,j] = X[i,j] - colMeans[j].
// Time: O(r*c). Space: O(r*c).
func ewBroadcastSubCols(X Matrix, colMeans []float64) (Matrix, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(ewTagSubCols, err)
	}
	if len(colMeans) != X.Cols() {
		return nil, matrixErrorf(ewTagSubCols, ErrDimensionMismatch)
	}

	return ewMap(X, ewTagSubCols, func(j int, v float64) float64 { return v - colMeans[j] })
}

// ewScaleCols computes out[i,j] = X[i,j] * scale[j].
//
// AI-Hint: pass 1/std for z-scoring and 0 for degenerate columns.
func ewScaleCols(X Matrix, scale []float64) (Matrix, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(ewTagScaleCol, err)
	}
	if len(scale) != X.Cols() {
		return nil, matrixErrorf(ewTagScaleCol, ErrDimensionMismatch)
	}

	return ewMap(X, ewTagScaleCol, func(j int, v float64) float64 { return v * scale[j] })
}

// ewClipRange copies X clamping each entry into [lo, hi].
// Bounds must be finite; lo > hi is normalized by swapping.
func ewClipRange(X Matrix, lo, hi float64) (Matrix, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(ewTagClip, err)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, matrixErrorf(ewTagClip, ErrNaNInf)
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	return ewMap(X, ewTagClip, func(_ int, v float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}

		return v
	})
}

// ewAllClose reports whether |a-b| ≤ atol + rtol*|b| holds element-wise.
// Negative tolerances are normalized with Abs; non-finite ones are rejected.
// Time: O(r*c). Space: O(1).
func ewAllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(ewTagAllClose, ErrNaNInf)
	}
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf(ewTagAllClose, err)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)

	var i, j int
	var av, bv float64
	var err error
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			if av, err = a.At(i, j); err != nil {
				return false, matrixErrorf(ewTagAllClose, err)
			}
			if bv, err = b.At(i, j); err != nil {
				return false, matrixErrorf(ewTagAllClose, err)
			}
			if math.Abs(av-bv) > atol+rtol*math.Abs(bv) {
				return false, nil
			}
		}
	}

	return true, nil
}
