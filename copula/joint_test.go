// SPDX-License-Identifier: MIT

package copula_test

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvsynth/copula"
	"github.com/katalvlaran/lvsynth/correlation"
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/katalvlaran/lvsynth/distribution"
	"github.com/katalvlaran/lvsynth/matrix"
)

func normalFit(name string, mu, sigma float64) distribution.Fit {
	return distribution.Fit{
		Variable: name,
		Best: distribution.Candidate{
			Family:        distribution.FamilyNormal,
			Parameters:    map[string]float64{"mean": mu, "std": sigma},
			GoodnessOfFit: 1,
		},
	}
}

func uniformFit(name string, lo, hi float64) distribution.Fit {
	return distribution.Fit{
		Variable: name,
		Best: distribution.Candidate{
			Family:        distribution.FamilyUniform,
			Parameters:    map[string]float64{"min": lo, "max": hi},
			GoodnessOfFit: 1,
		},
	}
}

func corrOf(names []string, rows [][]float64) correlation.Matrix {
	return correlation.Matrix{Variables: names, Values: rows, Method: correlation.Pearson}
}

func identity(names ...string) correlation.Matrix {
	rows := make([][]float64, len(names))
	for i := range rows {
		rows[i] = make([]float64, len(names))
		rows[i][i] = 1
	}

	return corrOf(names, rows)
}

func column(recs []dataset.Record, name string) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i], _ = r[name].Float()
	}

	return out
}

func pearson(a, b []float64) float64 {
	var ma, mb float64
	for i := range a {
		ma += a[i]
		mb += b[i]
	}
	ma /= float64(len(a))
	mb /= float64(len(b))
	var sab, saa, sbb float64
	for i := range a {
		sab += (a[i] - ma) * (b[i] - mb)
		saa += (a[i] - ma) * (a[i] - ma)
		sbb += (b[i] - mb) * (b[i] - mb)
	}

	return sab / math.Sqrt(saa*sbb)
}

func TestBuild_ZeroCorrelationStaysUncorrelated(t *testing.T) {
	t.Parallel()
	names := []string{"a", "b", "c"}
	fits := []distribution.Fit{normalFit("a", 0, 1), uniformFit("b", 0, 10), normalFit("c", 50, 5)}

	j, err := copula.Build(fits, identity(names...), copula.WithSeed(7))
	require.NoError(t, err)
	assert.False(t, j.Repaired())

	recs := j.Sample(1000)
	require.Len(t, recs, 1000)
	for x := 0; x < len(names); x++ {
		for y := x + 1; y < len(names); y++ {
			r := pearson(column(recs, names[x]), column(recs, names[y]))
			assert.Less(t, math.Abs(r), 0.15, "%s/%s", names[x], names[y])
		}
	}
}

func TestBuild_ReproducesStrongCorrelation(t *testing.T) {
	t.Parallel()
	corr := corrOf([]string{"x", "y"}, [][]float64{{1, 0.9}, {0.9, 1}})
	j, err := copula.Build([]distribution.Fit{normalFit("x", 0, 1), normalFit("y", 10, 2)}, corr, copula.WithSeed(3))
	require.NoError(t, err)

	recs := j.Sample(4000)
	r := pearson(column(recs, "x"), column(recs, "y"))
	assert.InDelta(t, 0.9, r, 0.05)

	y := column(recs, "y")
	var mean float64
	for _, v := range y {
		mean += v
	}
	assert.InDelta(t, 10, mean/float64(len(y)), 0.2)
}

func TestBuild_SeedReproducible(t *testing.T) {
	t.Parallel()
	fits := []distribution.Fit{normalFit("a", 0, 1), normalFit("b", 0, 1)}
	corr := corrOf([]string{"a", "b"}, [][]float64{{1, 0.4}, {0.4, 1}})

	j1, err := copula.Build(fits, corr, copula.WithSeed(42))
	require.NoError(t, err)
	j2, err := copula.Build(fits, corr, copula.WithSeed(42))
	require.NoError(t, err)

	assert.Equal(t, j1.Sample(20), j2.Sample(20))
	// Successive calls use new streams.
	assert.NotEqual(t, j1.Sample(5), j1.Sample(5))
}

func TestBuild_RepairsIndefiniteMatrix(t *testing.T) {
	t.Parallel()
	names := []string{"a", "b", "c"}
	// Pairwise-consistent-looking but not positive definite.
	bad := corrOf(names, [][]float64{
		{1, 0.9, -0.9},
		{0.9, 1, 0.9},
		{-0.9, 0.9, 1},
	})
	fits := []distribution.Fit{normalFit("a", 0, 1), normalFit("b", 0, 1), normalFit("c", 0, 1)}

	j, err := copula.Build(fits, bad, copula.WithSeed(1))
	require.NoError(t, err)
	assert.True(t, j.Repaired())

	fixed := j.Copula()
	d, err := fixed.Dense()
	require.NoError(t, err)
	_, err = matrix.Cholesky(d)
	require.NoError(t, err)
	for i := range fixed.Values {
		assert.InDelta(t, 1, fixed.Values[i][i], 1e-9)
	}
	assert.Len(t, j.Sample(10), 10)
}

func TestBuild_ConstructionErrors(t *testing.T) {
	t.Parallel()
	two := corrOf([]string{"a", "b"}, [][]float64{{1, 0}, {0, 1}})

	cases := []struct {
		name string
		fits []distribution.Fit
		corr correlation.Matrix
		opts []copula.Option
	}{
		{"no fits", nil, identity(), nil},
		{"size mismatch", []distribution.Fit{normalFit("a", 0, 1)}, two, nil},
		{"name mismatch", []distribution.Fit{normalFit("a", 0, 1), normalFit("z", 0, 1)}, two, nil},
		{"ragged row", []distribution.Fit{normalFit("a", 0, 1), normalFit("b", 0, 1)},
			corrOf([]string{"a", "b"}, [][]float64{{1, 0}, {0}}), nil},
		{"bad parameters", []distribution.Fit{normalFit("a", 0, -1), normalFit("b", 0, 1)}, two, nil},
		{"non-finite", []distribution.Fit{normalFit("a", 0, 1), normalFit("b", 0, 1)},
			corrOf([]string{"a", "b"}, [][]float64{{1, math.NaN()}, {math.NaN(), 1}}), nil},
		{"categorical collides", []distribution.Fit{normalFit("a", 0, 1), normalFit("b", 0, 1)}, two,
			[]copula.Option{copula.WithCategorical(distribution.Categorical{
				Variable: "a", Kind: dataset.KindCategorical,
				Categories: []distribution.Category{{Label: "x", Probability: 1}},
			})}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := copula.Build(tc.fits, tc.corr, tc.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, copula.ErrConstruction)
			var ce *copula.ConstructionError
			require.True(t, errors.As(err, &ce))
			assert.Contains(t, err.Error(), "construction error")
		})
	}
}

func TestJoint_CorrelationMatrix(t *testing.T) {
	t.Parallel()
	names := []string{"a", "b"}
	corr := corrOf(names, [][]float64{{1, 0.7}, {0.7, 1}})
	j, err := copula.Build([]distribution.Fit{normalFit("a", 0, 1), uniformFit("b", 0, 1)}, corr,
		copula.WithSeed(11), copula.WithCheckSamples(3000))
	require.NoError(t, err)

	got := j.CorrelationMatrix()
	assert.Equal(t, names, got.Variables)
	assert.Equal(t, 1.0, got.Values[0][0])
	assert.Equal(t, 1.0, got.Values[1][1])
	assert.InDelta(t, 0.7, got.Values[0][1], 0.08)
	assert.Equal(t, got.Values[0][1], got.Values[1][0])
}

func TestJoint_DegenerateMarginal(t *testing.T) {
	t.Parallel()
	fits := []distribution.Fit{
		normalFit("a", 0, 1),
		{Variable: "k", Best: distribution.Candidate{
			Family: distribution.FamilyDegenerate, Parameters: map[string]float64{"value": 5}, GoodnessOfFit: 1,
		}},
	}
	j, err := copula.Build(fits, identity("a", "k"), copula.WithSeed(2))
	require.NoError(t, err)

	for _, r := range j.Sample(50) {
		v, ok := r["k"].Float()
		require.True(t, ok)
		assert.Equal(t, 5.0, v)
	}
	cm := j.CorrelationMatrix()
	assert.Equal(t, 1.0, cm.Values[1][1])
	assert.Equal(t, 0.0, cm.Values[0][1])
}

func TestJoint_CategoricalAndBounds(t *testing.T) {
	t.Parallel()
	lo, hi := -0.5, 0.5
	bounds := dataset.Schema{"a": {Kind: dataset.KindNumeric, Min: &lo, Max: &hi}}
	color := distribution.Categorical{
		Variable: "color", Kind: dataset.KindCategorical,
		Categories: []distribution.Category{{Label: "blue", Probability: 0.25}, {Label: "red", Probability: 0.75}},
	}
	j, err := copula.Build([]distribution.Fit{normalFit("a", 0, 1)}, identity("a"),
		copula.WithSeed(5), copula.WithBounds(bounds), copula.WithCategorical(color))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "color"}, j.Variables())

	red := 0
	recs := j.Sample(2000)
	for _, r := range recs {
		v, _ := r["a"].Float()
		assert.GreaterOrEqual(t, v, lo)
		assert.LessOrEqual(t, v, hi)
		require.Equal(t, dataset.KindCategorical, r["color"].Kind())
		if s, _ := r["color"].Text(); s == "red" {
			red++
		}
	}
	assert.InDelta(t, 0.75, float64(red)/float64(len(recs)), 0.05)
}

func TestJoint_SampleEdges(t *testing.T) {
	t.Parallel()
	j, err := copula.Build([]distribution.Fit{normalFit("a", 0, 1)}, identity("a"), copula.WithSeed(1))
	require.NoError(t, err)
	assert.Empty(t, j.Sample(0))
	assert.Empty(t, j.Sample(-3))
}

func TestJoint_ConcurrentSample(t *testing.T) {
	t.Parallel()
	j, err := copula.Build([]distribution.Fit{normalFit("a", 0, 1), normalFit("b", 0, 1)}, identity("a", "b"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, j.Sample(100), 100)
		}()
	}
	wg.Wait()
}

func TestSpec_RoundTrip(t *testing.T) {
	t.Parallel()
	color := distribution.Categorical{
		Variable: "ok", Kind: dataset.KindBoolean,
		Categories: []distribution.Category{{Label: "false", Probability: 0.5}, {Label: "true", Probability: 0.5}},
	}
	corr := corrOf([]string{"a", "b"}, [][]float64{{1, 0.3}, {0.3, 1}})
	j, err := copula.Build([]distribution.Fit{normalFit("a", 0, 1), uniformFit("b", 2, 4)}, corr,
		copula.WithSeed(9), copula.WithCategorical(color))
	require.NoError(t, err)

	raw, err := json.Marshal(j)
	require.NoError(t, err)
	var spec copula.Spec
	require.NoError(t, json.Unmarshal(raw, &spec))

	back, err := copula.FromSpec(spec, copula.WithSeed(9))
	require.NoError(t, err)
	assert.Equal(t, j.Variables(), back.Variables())
	assert.Equal(t, j.Sample(10), back.Sample(10))
}

func TestWithCheckSamples_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { copula.WithCheckSamples(1) })
}
