// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for universal Matrix (linear algebra) operations.
package matrix_test

import (
	"math"
	"sort"
	"testing"

	"github.com/katalvlaran/lvsynth/matrix"
	"github.com/stretchr/testify/require"
)

func TestAdd_FastPathMatchesFallback(t *testing.T) {
	t.Parallel()

	a := MustDense(t, 4, 5)
	b := MustDense(t, 4, 5)
	RandomFill(t, a, 1)
	RandomFill(t, b, 2)

	for _, op := range []struct {
		name string
		fn   func(x, y matrix.Matrix) (matrix.Matrix, error)
		want func(x, y float64) float64
	}{
		{"Add", matrix.Add, func(x, y float64) float64 { return x + y }},
	} {
		op := op
		t.Run(op.name, func(t *testing.T) {
			fast, err := op.fn(a, b)
			require.NoError(t, err)
			slow, err := op.fn(hide{a}, b)
			require.NoError(t, err)
			for i := 0; i < 4; i++ {
				for j := 0; j < 5; j++ {
					want := op.want(MustAt(t, a, i, j), MustAt(t, b, i, j))
					require.Equal(t, want, MustAt(t, fast, i, j))
					require.Equal(t, want, MustAt(t, slow, i, j))
				}
			}
		})
	}
}

func TestAdd_DimensionMismatch(t *testing.T) {
	_, err := matrix.Add(MustDense(t, 2, 2), MustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Add(nil, MustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestMul_Known2x3x2(t *testing.T) {
	t.Parallel()

	a := NewFilledDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := NewFilledDense(t, 3, 2, []float64{7, 8, 9, 10, 11, 12})
	want := NewFilledDense(t, 2, 2, []float64{58, 64, 139, 154})

	got, err := matrix.Mul(a, b)
	require.NoError(t, err)
	requireClose(t, want, got, 0)

	got, err = matrix.Mul(hide{a}, hide{b})
	require.NoError(t, err)
	requireClose(t, want, got, 0)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestTranspose_Involution(t *testing.T) {
	t.Parallel()

	a := MustDense(t, 3, 5)
	RandomFill(t, a, 7)
	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	require.Equal(t, 5, at.Rows())
	require.Equal(t, MustAt(t, a, 2, 4), MustAt(t, at, 4, 2))

	att, err := matrix.Transpose(hide{at})
	require.NoError(t, err)
	requireClose(t, a, att, 0)
}

func TestScale(t *testing.T) {
	a := NewFilledDense(t, 1, 3, []float64{1, -2, 3})
	got, err := matrix.Scale(a, -2)
	require.NoError(t, err)
	requireClose(t, NewFilledDense(t, 1, 3, []float64{-2, 4, -6}), got, 0)

	got, err = matrix.Scale(hide{a}, 0.5)
	require.NoError(t, err)
	requireClose(t, NewFilledDense(t, 1, 3, []float64{0.5, -1, 1.5}), got, 0)

	_, err = matrix.Scale(a, math.Inf(1))
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestMatVec(t *testing.T) {
	a := NewFilledDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	y, err := matrix.MatVec(a, []float64{1, 0, -1})
	require.NoError(t, err)
	require.Equal(t, []float64{-2, -2}, y)

	y, err = matrix.MatVec(hide{a}, []float64{1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{6, 15}, y)

	_, err = matrix.MatVec(a, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestEigen_Errors(t *testing.T) {
	_, _, err := matrix.Eigen(nil, 1e-9, 10)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	_, _, err = matrix.Eigen(MustDense(t, 2, 3), 1e-9, 10)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	asym := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 1})
	_, _, err = matrix.Eigen(asym, 1e-9, 10)
	require.ErrorIs(t, err, matrix.ErrAsymmetry)

	// One rotation is not enough for a dense 3×3.
	dense := NewFilledDense(t, 3, 3, []float64{4, 1, 2, 1, 3, 1, 2, 1, 5})
	_, _, err = matrix.Eigen(dense, 1e-14, 1)
	require.ErrorIs(t, err, matrix.ErrMatrixEigenFailed)
}

func TestEigen_2x2_Analytic(t *testing.T) {
	t.Parallel()

	// [[2,1],[1,2]] has eigenvalues 1 and 3.
	a := NewFilledDense(t, 2, 2, []float64{2, 1, 1, 2})
	vals, _, err := matrix.Eigen(a, 1e-12, 100)
	require.NoError(t, err)
	sort.Float64s(vals)
	require.InDelta(t, 1.0, vals[0], 1e-12)
	require.InDelta(t, 3.0, vals[1], 1e-12)
}

func TestEigen_Reconstruction(t *testing.T) {
	t.Parallel()

	const n = 5
	x := MustDense(t, n, n)
	RandomFill(t, x, 42)
	xt, err := matrix.Transpose(x)
	require.NoError(t, err)
	a, err := matrix.Mul(x, xt)
	require.NoError(t, err)

	vals, q, err := matrix.Eigen(a, 1e-12, 10_000)
	require.NoError(t, err)

	// A = Q·diag(λ)·Qᵀ
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			acc := 0.0
			for k := 0; k < n; k++ {
				acc += MustAt(t, q, i, k) * vals[k] * MustAt(t, q, j, k)
			}
			require.InDelta(t, MustAt(t, a, i, j), acc, 1e-9)
		}
	}
}
