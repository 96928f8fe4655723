// SPDX-License-Identifier: MIT

package validation

// Default thresholds.
const (
	DefaultMeanZ               = 3.0
	DefaultVarianceRatioMin    = 0.5
	DefaultVarianceRatioMax    = 2.0
	DefaultKSCoefficient       = 1.628 // c(α) for α = 0.01
	DefaultMaxCorrelationDelta = 0.2
)

// Options configures Validate.
//
// Fields:
//   - Variables           — numeric variables to compare; empty means every
//     variable holding a finite value in the original sample (sorted).
//   - MeanZ               — width of the mean band in standard errors.
//   - VarianceRatioMin/Max — admissible generated/original variance ratio.
//   - KSCoefficient       — c(α) of the two-sample KS critical value; ≤ 0 disables the ks check.
//   - MaxCorrelationDelta — largest tolerated |Δr|; ≤ 0 disables the correlation check.
type Options struct {
	Variables           []string
	MeanZ               float64
	VarianceRatioMin    float64
	VarianceRatioMax    float64
	KSCoefficient       float64
	MaxCorrelationDelta float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MeanZ:               DefaultMeanZ,
		VarianceRatioMin:    DefaultVarianceRatioMin,
		VarianceRatioMax:    DefaultVarianceRatioMax,
		KSCoefficient:       DefaultKSCoefficient,
		MaxCorrelationDelta: DefaultMaxCorrelationDelta,
	}
}
