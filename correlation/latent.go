// SPDX-License-Identifier: MIT

package correlation

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvsynth/dataset"
)

// Latent returns the Pearson-scale correlation that a Gaussian copula needs
// in order to reproduce the dependence measured by method on records.
//
// Conversion per method:
//   - pearson: r unchanged.
//   - spearman: 2·sin(π·ρ/6), the normal-theory link between rank and
//     product-moment correlation.
//   - mutual_information: binned mutual information carries no sign, so the
//     latent value is taken from the rank correlation of the same pairs, as
//     for spearman.
//
// The result is tagged Pearson, has a unit diagonal and follows the same
// pairwise-complete rules as Calculate.
//
// Errors:
//   - ErrUnknownMethod.
func (a Analyzer) Latent(records []dataset.Record, variables []string, method Method) (Matrix, error) {
	switch method {
	case Pearson, "":
		return pairwise(records, variables, Pearson, pearson), nil
	case Spearman, MutualInformation:
		return pairwise(records, variables, Pearson, func(x, y []float64) float64 {
			return RankToLinear(pearson(Ranks(x), Ranks(y)))
		}), nil
	}

	return Matrix{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// RankToLinear maps Spearman ρ onto the correlation of the underlying
// bivariate normal: r = 2·sin(π·ρ/6). It is odd, monotone and fixes -1, 0, 1.
func RankToLinear(rho float64) float64 {
	r := 2 * math.Sin(math.Pi*rho/6)

	return math.Max(-1, math.Min(1, r))
}
