// SPDX-License-Identifier: MIT

package distribution_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvsynth/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(d distribution.Distribution, n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Sample(rng)
	}

	return out
}

func TestFit_ConstantIsDegenerate(t *testing.T) {
	fit, err := distribution.FitSample("x", []float64{5, 5, 5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, distribution.FamilyDegenerate, fit.Best.Family)
	assert.Equal(t, 5.0, fit.Best.Parameters["value"])
	assert.Equal(t, 1.0, fit.Best.GoodnessOfFit)
	assert.Empty(t, fit.Alternatives)

	d, err := fit.Distribution()
	require.NoError(t, err)
	assert.Equal(t, 5.0, d.Quantile(0.3))
}

func TestFit_TooFewValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []float64
	}{
		{"two points", []float64{1, 2}},
		{"one point", []float64{1}},
		{"empty", nil},
		{"non-finite only", []float64{math.NaN(), math.Inf(1), 3}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := distribution.FitSample("v", tc.samples)
			require.Error(t, err)
			require.ErrorIs(t, err, distribution.ErrFitting)
			assert.Contains(t, err.Error(), "could not fit")
			var fe *distribution.FittingError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "v", fe.Variable)
		})
	}
}

func TestFit_RestrictedFamiliesAllFail(t *testing.T) {
	// Negative data cannot be exponential or log-normal.
	_, err := distribution.FitSample("neg", []float64{-3, -2, -1, -4},
		distribution.FamilyExponential, distribution.FamilyLogNormal)
	require.ErrorIs(t, err, distribution.ErrFitting)
	assert.Contains(t, err.Error(), "exponential")
	assert.Contains(t, err.Error(), "log-normal")
}

func TestFit_DropsNonFinite(t *testing.T) {
	fit, err := distribution.FitSample("x", []float64{1, math.NaN(), 2, math.Inf(-1), 3, 4},
		distribution.FamilyUniform)
	require.NoError(t, err)
	assert.Equal(t, 1.0, fit.Best.Parameters["min"])
	assert.Equal(t, 4.0, fit.Best.Parameters["max"])
}

func TestFit_IdempotentAndOrdered(t *testing.T) {
	t.Parallel()

	xs := draw(distribution.LogNormal{Mu: 1, Sigma: 0.4}, 500, 11)
	a, err := distribution.FitSample("income", xs)
	require.NoError(t, err)
	b, err := distribution.FitSample("income", xs)
	require.NoError(t, err)

	assert.Equal(t, a.Best.Family, b.Best.Family)
	for k, v := range a.Best.Parameters {
		assert.InDelta(t, v, b.Best.Parameters[k], 1e-12)
	}

	require.NotEmpty(t, a.Alternatives)
	assert.GreaterOrEqual(t, a.Best.GoodnessOfFit, a.Alternatives[0].GoodnessOfFit)
	for i := 0; i+1 < len(a.Alternatives); i++ {
		assert.GreaterOrEqual(t, a.Alternatives[i].GoodnessOfFit, a.Alternatives[i+1].GoodnessOfFit)
	}
	for _, c := range append([]distribution.Candidate{a.Best}, a.Alternatives...) {
		assert.GreaterOrEqual(t, c.GoodnessOfFit, 0.0)
		assert.LessOrEqual(t, c.GoodnessOfFit, 1.0)
	}
}

func TestFit_RecoversFamily(t *testing.T) {
	t.Parallel()

	base := []distribution.Family{distribution.FamilyNormal, distribution.FamilyUniform, distribution.FamilyExponential}
	tests := []struct {
		name string
		src  distribution.Distribution
		want distribution.Family
	}{
		{"normal", distribution.Normal{Mu: 40, Sigma: 8}, distribution.FamilyNormal},
		{"uniform", distribution.Uniform{Min: 0, Max: 10}, distribution.FamilyUniform},
		{"exponential", distribution.Exponential{Rate: 0.5}, distribution.FamilyExponential},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fit, err := distribution.Fitter{Families: base}.Fit(tc.name, draw(tc.src, 2000, 5))
			require.NoError(t, err)
			assert.Equal(t, tc.want, fit.Best.Family)
			assert.Greater(t, fit.Best.GoodnessOfFit, 0.95)
		})
	}
}

func TestFit_BetaMoments(t *testing.T) {
	xs := draw(distribution.Beta{Alpha: 2, Beta: 5, Loc: 0, Scale: 1}, 2000, 9)
	fit, err := distribution.FitSample("share", xs, distribution.FamilyBeta, distribution.FamilyNormal)
	require.NoError(t, err)

	var beta distribution.Candidate
	for _, c := range append([]distribution.Candidate{fit.Best}, fit.Alternatives...) {
		if c.Family == distribution.FamilyBeta {
			beta = c
		}
	}
	require.Equal(t, distribution.FamilyBeta, beta.Family)
	assert.InDelta(t, 2.0, beta.Parameters["alpha"], 0.4)
	assert.InDelta(t, 5.0, beta.Parameters["beta"], 1.0)
	assert.Equal(t, 0.0, beta.Parameters["loc"])
	assert.Equal(t, 1.0, beta.Parameters["scale"])
	assert.Equal(t, distribution.FamilyBeta, fit.Best.Family)
}

func TestFit_BetaRescalesOutsideUnit(t *testing.T) {
	fit, err := distribution.FitSample("age", []float64{20, 25, 30, 35, 40, 45, 50}, distribution.FamilyBeta)
	require.NoError(t, err)
	assert.Equal(t, 20.0, fit.Best.Parameters["loc"])
	assert.Equal(t, 30.0, fit.Best.Parameters["scale"])

	d, err := fit.Distribution()
	require.NoError(t, err)
	assert.InDelta(t, 35.0, d.Mean(), 1e-9)
	assert.GreaterOrEqual(t, d.Quantile(0.001), 20.0)
	assert.LessOrEqual(t, d.Quantile(0.999), 50.0)
}
