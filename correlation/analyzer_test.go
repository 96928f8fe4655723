// SPDX-License-Identifier: MIT

package correlation_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvsynth/correlation"
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ageIncome() []dataset.Record {
	out := make([]dataset.Record, 0, 5)
	for k := 0; k < 5; k++ {
		out = append(out, dataset.Record{
			"age":    dataset.Numeric(float64(25 + 5*k)),
			"income": dataset.Numeric(float64(50000 + 10000*k)),
		})
	}

	return out
}

func TestPearson_PerfectLinear(t *testing.T) {
	m := correlation.CalculatePearson(ageIncome(), []string{"age", "income"})
	assert.Equal(t, correlation.Pearson, m.Method)
	assert.Equal(t, []string{"age", "income"}, m.Variables)
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-6)
	assert.InDelta(t, 1.0, m.Values[1][0], 1e-6)
}

// requireWellFormed checks shape, symmetry, finiteness and the unit diagonal.
func requireWellFormed(t *testing.T, m correlation.Matrix, n int) {
	t.Helper()
	require.Len(t, m.Values, n)
	for i := 0; i < n; i++ {
		require.Len(t, m.Values[i], n)
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := 0; j < n; j++ {
			v := m.Values[i][j]
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			assert.Equal(t, v, m.Values[j][i])
		}
	}
}

func randomRecords(n int, seed int64) []dataset.Record {
	rng := rand.New(rand.NewSource(seed))
	out := make([]dataset.Record, n)
	for k := range out {
		x := rng.NormFloat64()
		out[k] = dataset.Record{
			"x": dataset.Numeric(x),
			"y": dataset.Numeric(x*x + 0.1*rng.NormFloat64()),
			"z": dataset.Numeric(-2*x + rng.NormFloat64()),
		}
	}

	return out
}

func TestAllMethods_Shape(t *testing.T) {
	t.Parallel()

	recs := randomRecords(200, 1)
	vars := []string{"z", "x", "y"}
	for _, method := range []correlation.Method{correlation.Pearson, correlation.Spearman, correlation.MutualInformation} {
		method := method
		t.Run(string(method), func(t *testing.T) {
			m, err := correlation.Analyzer{}.Calculate(recs, vars, method)
			require.NoError(t, err)
			assert.Equal(t, vars, m.Variables)
			assert.Equal(t, method, m.Method)
			requireWellFormed(t, m, 3)
		})
	}

	_, err := correlation.Analyzer{}.Calculate(recs, vars, "kendall")
	require.ErrorIs(t, err, correlation.ErrUnknownMethod)
}

func TestMutualInformation_DetectsNonLinear(t *testing.T) {
	recs := randomRecords(2000, 2)
	lin := correlation.CalculatePearson(recs, []string{"x", "y"})
	mi := correlation.DetectNonLinear(recs, []string{"x", "y"})

	// y = x² is nearly uncorrelated linearly but strongly dependent.
	assert.Less(t, math.Abs(lin.Values[0][1]), 0.2)
	assert.Greater(t, mi.Values[0][1], 0.1)
	assert.LessOrEqual(t, mi.Values[0][1], 1.0)
}

func TestSpearman_MonotoneAndTies(t *testing.T) {
	recs := []dataset.Record{
		{"a": dataset.Numeric(1), "b": dataset.Numeric(1)},
		{"a": dataset.Numeric(2), "b": dataset.Numeric(8)},
		{"a": dataset.Numeric(3), "b": dataset.Numeric(27)},
		{"a": dataset.Numeric(4), "b": dataset.Numeric(1000)},
	}
	m := correlation.CalculateSpearman(recs, []string{"a", "b"})
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-12)

	assert.Equal(t, []float64{1.5, 1.5, 3, 4}, correlation.Ranks([]float64{7, 7, 8, 9}))
	assert.Equal(t, []float64{3, 1, 2}, correlation.Ranks([]float64{5, -1, 0}))
}

func TestPairwiseComplete(t *testing.T) {
	t.Parallel()

	recs := ageIncome()
	// Holes in one variable must not disturb the other pairs.
	recs = append(recs,
		dataset.Record{"age": dataset.Numeric(99)},
		dataset.Record{"age": dataset.Numeric(1), "income": dataset.Categorical("unknown")},
		dataset.Record{"age": dataset.Numeric(math.Inf(1)), "income": dataset.Numeric(1)},
	)
	for k := range recs {
		recs[k]["score"] = dataset.Numeric(float64(k % 2))
	}
	m := correlation.CalculatePearson(recs, []string{"age", "income", "score"})
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-9)
	requireWellFormed(t, m, 3)
}

func TestDegeneratePairs(t *testing.T) {
	recs := []dataset.Record{
		{"a": dataset.Numeric(1), "c": dataset.Numeric(5)},
		{"a": dataset.Numeric(2), "c": dataset.Numeric(5), "b": dataset.Numeric(3)},
		{"a": dataset.Numeric(3), "c": dataset.Numeric(5)},
	}
	for _, method := range []correlation.Method{correlation.Pearson, correlation.Spearman, correlation.MutualInformation} {
		m, err := correlation.Analyzer{Bins: 4}.Calculate(recs, []string{"a", "b", "c"}, method)
		require.NoError(t, err)
		// a–b has one co-observation, a–c has zero variance.
		assert.Equal(t, 0.0, m.Values[0][1], method)
		assert.Equal(t, 0.0, m.Values[0][2], method)
		requireWellFormed(t, m, 3)
	}

	empty := correlation.CalculatePearson(nil, []string{"a", "b"})
	requireWellFormed(t, empty, 2)
}

func TestMatrix_Helpers(t *testing.T) {
	m := correlation.Matrix{
		Variables: []string{"a", "b", "c"},
		Values: [][]float64{
			{1, 0.05, -0.6},
			{0.05, 1, 0.3},
			{-0.6, 0.3, 1},
		},
		Method: correlation.Pearson,
	}

	v, err := m.At("c", "a")
	require.NoError(t, err)
	assert.Equal(t, -0.6, v)
	_, err = m.At("a", "zz")
	require.ErrorIs(t, err, correlation.ErrUnknownVariable)

	sub, err := m.Subset([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, -0.6}, {-0.6, 1}}, sub.Values)
	assert.Equal(t, []string{"c", "a"}, sub.Variables)
	_, err = m.Subset([]string{"nope"})
	require.ErrorIs(t, err, correlation.ErrUnknownVariable)

	th := m.Threshold(0.1)
	assert.Equal(t, 0.0, th.Values[0][1])
	assert.Equal(t, -0.6, th.Values[0][2])
	assert.Equal(t, 0.05, m.Values[0][1], "Threshold must not mutate the receiver")

	assert.Equal(t, []float64{0.6, 0.3, 0.6}, m.MaxAbsOffDiagonal())

	d, err := m.Dense()
	require.NoError(t, err)
	assert.Equal(t, 3, d.Rows())
}

func TestParseMethod(t *testing.T) {
	m, err := correlation.ParseMethod("spearman")
	require.NoError(t, err)
	assert.Equal(t, correlation.Spearman, m)
	m, err = correlation.ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, correlation.Pearson, m)
	_, err = correlation.ParseMethod("tau")
	require.ErrorIs(t, err, correlation.ErrUnknownMethod)
}

func TestLatent_KeepsSignForEveryMethod(t *testing.T) {
	records := randomRecords(400, 3)
	vars := []string{"x", "y", "z"}
	var a correlation.Analyzer

	mi, err := a.Calculate(records, vars, correlation.MutualInformation)
	require.NoError(t, err)
	require.Greater(t, mi.Values[0][2], 0.0)

	for _, method := range []correlation.Method{correlation.Pearson, correlation.Spearman, correlation.MutualInformation} {
		latent, err := a.Latent(records, vars, method)
		require.NoError(t, err, method)
		requireWellFormed(t, latent, 3)
		assert.Equal(t, correlation.Pearson, latent.Method)
		assert.Less(t, latent.Values[0][2], -0.8, method)
	}

	pearson, err := a.Latent(records, vars, correlation.Pearson)
	require.NoError(t, err)
	assert.Equal(t, correlation.CalculatePearson(records, vars).Values, pearson.Values)

	_, err = a.Latent(records, vars, "tau")
	require.ErrorIs(t, err, correlation.ErrUnknownMethod)
}

func TestRankToLinear(t *testing.T) {
	cases := []struct {
		rho, want float64
	}{
		{-1, -1},
		{0, 0},
		{1, 1},
		{0.5, 2 * math.Sin(math.Pi/12)},
		{-0.5, -2 * math.Sin(math.Pi/12)},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, correlation.RankToLinear(tc.rho), 1e-12, "rho=%v", tc.rho)
	}
	assert.Greater(t, correlation.RankToLinear(0.5), 0.5)
}
