// SPDX-License-Identifier: MIT

package copula

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"sync"

	"github.com/katalvlaran/lvsynth/correlation"
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/katalvlaran/lvsynth/distribution"
	"github.com/katalvlaran/lvsynth/matrix"
)

// uEdge keeps Φ(x) away from 0 and 1 so unbounded quantiles stay finite.
const uEdge = 1e-12

// Joint is a Gaussian-copula joint distribution over numeric marginals, plus
// optional independent categorical fields.
type Joint struct {
	marginals   []distribution.Fit
	dists       []distribution.Distribution
	names       []string
	copula      correlation.Matrix
	chol        *matrix.Dense
	repaired    bool
	categorical []distribution.Categorical
	bounds      dataset.Schema
	check       int

	mu     sync.Mutex // guards base and stream
	base   *rand.Rand
	stream uint64
}

// Build assembles a Joint from fits and corr.
//
// Implementation:
//   - Stage 1: shape checks. fits non-empty, corr is len(fits)×len(fits) and
//     corr.Variables[i] == fits[i].Variable.
//   - Stage 2: rebuild every marginal Distribution from its best candidate.
//   - Stage 3: Cholesky of corr; on failure or a non-unit diagonal, repair
//     with matrix.NearestCorrelation and factorize the repaired matrix.
//
// Errors:
//   - *ConstructionError (errors.Is ErrConstruction) for every failure; the
//     matrix or distribution sentinel is kept as the cause.
func Build(fits []distribution.Fit, corr correlation.Matrix, opts ...Option) (*Joint, error) {
	o := gatherOptions(opts...)

	n := len(fits)
	if n == 0 {
		return nil, constructionf(nil, "at least one marginal fit required")
	}
	if len(corr.Variables) != n || len(corr.Values) != n {
		return nil, constructionf(nil, "correlation matrix has %d variables, want %d (one per fit)", len(corr.Values), n)
	}
	for i, row := range corr.Values {
		if len(row) != n {
			return nil, constructionf(matrix.ErrDimensionMismatch, "correlation row %d has %d entries, want %d", i, len(row), n)
		}
	}

	j := &Joint{
		marginals: append([]distribution.Fit(nil), fits...),
		dists:     make([]distribution.Distribution, n),
		names:     make([]string, n),
		bounds:    o.bounds,
		check:     o.checkSamples,
	}
	seen := make(map[string]bool, n)
	for i, f := range fits {
		if f.Variable != corr.Variables[i] {
			return nil, constructionf(nil, "fit %d is %q but correlation variable %d is %q", i, f.Variable, i, corr.Variables[i])
		}
		if seen[f.Variable] {
			return nil, constructionf(nil, "duplicate variable %q", f.Variable)
		}
		seen[f.Variable] = true
		d, err := f.Distribution()
		if err != nil {
			return nil, constructionf(err, "marginal %q", f.Variable)
		}
		j.dists[i] = d
		j.names[i] = f.Variable
	}
	for _, c := range o.categorical {
		if seen[c.Variable] {
			return nil, constructionf(nil, "duplicate variable %q", c.Variable)
		}
		if err := c.Validate(); err != nil {
			return nil, constructionf(err, "categorical %q", c.Variable)
		}
		seen[c.Variable] = true
		j.categorical = append(j.categorical, c)
	}

	if err := j.factorize(corr, o.matrixOpts); err != nil {
		return nil, err
	}

	if o.seeded {
		j.base = rngFromSeed(o.seed)
	} else {
		j.base = unseededRNG()
	}

	return j, nil
}

// factorize sets copula and chol, repairing corr when needed.
func (j *Joint) factorize(corr correlation.Matrix, mopts []matrix.Option) error {
	d, err := corr.Dense()
	if err != nil {
		return constructionf(err, "correlation matrix")
	}

	l, cerr := matrix.Cholesky(d)
	if cerr != nil || !unitDiagonal(corr.Values) {
		if cerr != nil && !errors.Is(cerr, matrix.ErrNotPositiveDefinite) && !errors.Is(cerr, matrix.ErrAsymmetry) {
			return constructionf(cerr, "correlation matrix")
		}
		fixed, err := matrix.NearestCorrelation(d, mopts...)
		if err != nil {
			return constructionf(err, "nearest correlation repair")
		}
		if l, err = matrix.Cholesky(fixed); err != nil {
			return constructionf(err, "repaired correlation matrix")
		}
		d = fixed.(*matrix.Dense)
		j.repaired = true
	}
	if err := reconstructs(l, d); err != nil {
		return err
	}

	j.chol = l.(*matrix.Dense)
	j.copula = correlation.Matrix{
		Variables: append([]string(nil), j.names...),
		Values:    d.ToRows(),
		Method:    corr.Method,
	}

	return nil
}

// reconstructionTol bounds |L·Lᵀ − C| element-wise after factorization.
const reconstructionTol = 1e-8

// reconstructs checks that L·Lᵀ reproduces c.
func reconstructs(l, c matrix.Matrix) error {
	lt, err := matrix.Transpose(l)
	if err != nil {
		return constructionf(err, "cholesky factor")
	}
	llt, err := matrix.Mul(l, lt)
	if err != nil {
		return constructionf(err, "cholesky factor")
	}
	ok, err := matrix.AllClose(llt, c, 0, reconstructionTol)
	if err != nil {
		return constructionf(err, "cholesky factor")
	}
	if !ok {
		return constructionf(nil, "cholesky factor does not reproduce the correlation matrix")
	}

	return nil
}

func unitDiagonal(vals [][]float64) bool {
	for i := range vals {
		if math.Abs(vals[i][i]-1) > matrix.DefaultEpsilon {
			return false
		}
	}

	return true
}

// Variables returns the numeric variables in copula order followed by the
// categorical ones.
func (j *Joint) Variables() []string {
	out := append([]string(nil), j.names...)
	for _, c := range j.categorical {
		out = append(out, c.Variable)
	}

	return out
}

// Marginals returns a copy of the numeric marginal fits.
func (j *Joint) Marginals() []distribution.Fit {
	return append([]distribution.Fit(nil), j.marginals...)
}

// Categorical returns a copy of the categorical tables.
func (j *Joint) Categorical() []distribution.Categorical {
	return append([]distribution.Categorical(nil), j.categorical...)
}

// Copula returns the correlation matrix actually factorized (after any repair).
func (j *Joint) Copula() correlation.Matrix {
	out := j.copula
	out.Variables = append([]string(nil), j.copula.Variables...)
	out.Values = make([][]float64, len(j.copula.Values))
	for i, row := range j.copula.Values {
		out.Values[i] = append([]float64(nil), row...)
	}

	return out
}

// Repaired reports whether the input correlation had to be projected.
func (j *Joint) Repaired() bool { return j.repaired }

// nextRNG derives the generator for one Sample call.
func (j *Joint) nextRNG() *rand.Rand {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stream++

	return deriveRNG(j.base, j.stream)
}

// Sample draws n records from a stream of its own. n <= 0 yields an empty slice.
func (j *Joint) Sample(n int) []dataset.Record {
	return j.SampleWith(j.nextRNG(), n)
}

// SampleWith draws n records using rng, which the caller owns.
//
// Complexity: O(n·k²) for k numeric variables (one MatVec per record).
func (j *Joint) SampleWith(rng *rand.Rand, n int) []dataset.Record {
	if n <= 0 {
		return []dataset.Record{}
	}
	k := len(j.dists)
	out := make([]dataset.Record, n)
	z := make([]float64, k)

	for r := 0; r < n; r++ {
		for i := range z {
			z[i] = rng.NormFloat64()
		}
		// Shapes were validated in Build, so MatVec cannot fail here.
		x, _ := matrix.MatVec(j.chol, z)

		rec := make(dataset.Record, k+len(j.categorical))
		for i, d := range j.dists {
			u := math.Max(uEdge, math.Min(1-uEdge, distribution.StdNormalCDF(x[i])))
			v := d.Quantile(u)
			if spec, ok := j.bounds[j.names[i]]; ok {
				v = spec.Clamp(v)
			}
			rec[j.names[i]] = dataset.Numeric(v)
		}
		for _, c := range j.categorical {
			rec[c.Variable] = c.Sample(rng)
		}
		out[r] = rec
	}

	return out
}

// CorrelationMatrix returns the Pearson correlation realized by a fresh draw
// of the configured check size, labelled like the analyzer's output.
// Degenerate (constant) marginals keep a unit diagonal and zero off-diagonal.
func (j *Joint) CorrelationMatrix() correlation.Matrix {
	k := len(j.names)
	out := correlation.Matrix{Variables: append([]string(nil), j.names...), Method: correlation.Pearson}

	recs := j.Sample(j.check)
	x, err := matrix.NewDense(len(recs), k)
	if err == nil {
		for r, rec := range recs {
			for i, name := range j.names {
				f, _ := rec[name].Float()
				_ = x.Set(r, i, f)
			}
		}
		var c matrix.Matrix
		if c, _, _, err = matrix.Correlation(x); err == nil {
			c, err = matrix.Clip(c, -1, 1)
		}
		if err == nil {
			out.Values = c.(*matrix.Dense).ToRows()
		}
	}
	if out.Values == nil {
		out.Values = make([][]float64, k)
		for i := range out.Values {
			out.Values[i] = make([]float64, k)
		}
	}
	for i := range out.Values {
		out.Values[i][i] = 1
	}

	return out
}

// Spec is the serializable description of a Joint.
type Spec struct {
	Marginals   []distribution.Fit         `json:"marginals"`
	Copula      correlation.Matrix         `json:"copula"`
	Categorical []distribution.Categorical `json:"categorical,omitempty"`
	Bounds      dataset.Schema             `json:"bounds,omitempty"`
}

// Spec describes j. Building FromSpec(j.Spec()) yields an equivalent Joint.
func (j *Joint) Spec() Spec {
	return Spec{
		Marginals:   j.Marginals(),
		Copula:      j.Copula(),
		Categorical: j.Categorical(),
		Bounds:      j.bounds,
	}
}

// MarshalJSON encodes the Spec.
func (j *Joint) MarshalJSON() ([]byte, error) { return json.Marshal(j.Spec()) }

// FromSpec rebuilds a Joint; opts are applied after the spec's own settings.
func FromSpec(s Spec, opts ...Option) (*Joint, error) {
	base := []Option{WithCategorical(s.Categorical...), WithBounds(s.Bounds)}

	return Build(s.Marginals, s.Copula, append(base, opts...)...)
}
