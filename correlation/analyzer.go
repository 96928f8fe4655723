// SPDX-License-Identifier: MIT

package correlation

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/lvsynth/dataset"
)

// DefaultBins is the number of equal-width buckets used by MutualInformation.
const DefaultBins = 10

// Analyzer computes dependence matrices. The zero value uses DefaultBins.
type Analyzer struct {
	// Bins overrides DefaultBins for mutual information when >= 2.
	Bins int
}

// Calculate dispatches on method.
func (a Analyzer) Calculate(records []dataset.Record, variables []string, method Method) (Matrix, error) {
	switch method {
	case Pearson, "":
		return a.Pearson(records, variables), nil
	case Spearman:
		return a.Spearman(records, variables), nil
	case MutualInformation:
		return a.MutualInformation(records, variables), nil
	}

	return Matrix{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// Pearson computes product-moment correlation on pairwise-complete observations.
func (a Analyzer) Pearson(records []dataset.Record, variables []string) Matrix {
	return pairwise(records, variables, Pearson, pearson)
}

// Spearman computes rank correlation; ranks are taken inside each pair's
// complete observations with ties averaged.
func (a Analyzer) Spearman(records []dataset.Record, variables []string) Matrix {
	return pairwise(records, variables, Spearman, func(x, y []float64) float64 {
		return pearson(Ranks(x), Ranks(y))
	})
}

// MutualInformation computes normalized binned mutual information.
func (a Analyzer) MutualInformation(records []dataset.Record, variables []string) Matrix {
	bins := a.Bins
	if bins < 2 {
		bins = DefaultBins
	}

	return pairwise(records, variables, MutualInformation, func(x, y []float64) float64 {
		return normalizedMI(x, y, bins)
	})
}

// CalculatePearson is Analyzer{}.Pearson.
func CalculatePearson(records []dataset.Record, variables []string) Matrix {
	return Analyzer{}.Pearson(records, variables)
}

// CalculateSpearman is Analyzer{}.Spearman.
func CalculateSpearman(records []dataset.Record, variables []string) Matrix {
	return Analyzer{}.Spearman(records, variables)
}

// DetectNonLinear is Analyzer{}.MutualInformation.
func DetectNonLinear(records []dataset.Record, variables []string) Matrix {
	return Analyzer{}.MutualInformation(records, variables)
}

// pairwise fills the upper triangle with coef over each pair's complete
// observations and mirrors it. Pairs with < 2 observations stay 0.
func pairwise(records []dataset.Record, variables []string, method Method, coef func(x, y []float64) float64) Matrix {
	out := newMatrix(variables, method)
	cols := make([][]float64, len(variables))
	for i, name := range variables {
		cols[i] = dataset.Column(records, name)
	}

	var i, j int
	var x, y []float64
	for i = 0; i < len(variables); i++ {
		for j = i + 1; j < len(variables); j++ {
			x, y = complete(cols[i], cols[j])
			if len(x) < 2 {
				continue
			}
			r := coef(x, y)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			out.Values[i][j] = r
			out.Values[j][i] = r
		}
	}

	return out
}

// complete returns the aligned entries where both a and b are finite (NaN marks missing).
func complete(a, b []float64) (x, y []float64) {
	x = make([]float64, 0, len(a))
	y = make([]float64, 0, len(a))
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		x = append(x, a[k])
		y = append(y, b[k])
	}

	return x, y
}

// pearson returns r in [-1,1], or 0 when either side has zero variance.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var mx, my float64
	for k := range x {
		mx += x[k]
		my += y[k]
	}
	mx /= n
	my /= n

	var sxy, sxx, syy, dx, dy float64
	for k := range x {
		dx, dy = x[k]-mx, y[k]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	r := sxy / math.Sqrt(sxx*syy)

	return math.Max(-1, math.Min(1, r))
}

// Ranks returns 1-based ranks of xs; tied values share the average of their ranks.
func Ranks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for k := range idx {
		idx[k] = k
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, n)
	for start := 0; start < n; {
		end := start + 1
		for end < n && xs[idx[end]] == xs[idx[start]] {
			end++
		}
		// positions start..end-1 hold ranks start+1..end
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[idx[k]] = avg
		}
		start = end
	}

	return ranks
}

// binIndex maps each value to an equal-width bucket in [0,bins).
// A constant sample maps entirely to bucket 0.
func binIndex(xs []float64, bins int) []int {
	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]int, len(xs))
	width := hi - lo
	if width == 0 {
		return out
	}
	for k, v := range xs {
		b := int((v - lo) / width * float64(bins))
		if b >= bins {
			b = bins - 1
		}
		out[k] = b
	}

	return out
}

// normalizedMI estimates I(X;Y)/log(bins) from a bins×bins joint histogram,
// clipped to [0,1].
func normalizedMI(x, y []float64, bins int) float64 {
	bx, by := binIndex(x, bins), binIndex(y, bins)
	n := float64(len(x))

	joint := make([]float64, bins*bins)
	px := make([]float64, bins)
	py := make([]float64, bins)
	for k := range bx {
		joint[bx[k]*bins+by[k]]++
		px[bx[k]]++
		py[by[k]]++
	}

	var mi, pxy float64
	for a := 0; a < bins; a++ {
		for b := 0; b < bins; b++ {
			if joint[a*bins+b] == 0 {
				continue
			}
			pxy = joint[a*bins+b] / n
			mi += pxy * math.Log(pxy/((px[a]/n)*(py[b]/n)))
		}
	}
	mi /= math.Log(float64(bins))

	return math.Max(0, math.Min(1, mi))
}
