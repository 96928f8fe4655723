// SPDX-License-Identifier: MIT

// Package validation scores how closely a generated sample matches the data
// it was modeled on.
//
// Validate summarizes every numeric variable of both sides (count, mean,
// variance, min, max) and runs three checks per variable:
//
//   - mean:     |Δmean| ≤ z·SE, SE = sqrt(s²/n + s²/m) with s² the original variance.
//   - variance: generated/original variance ratio within [VarianceRatioMin, VarianceRatioMax].
//   - ks:       two-sample Kolmogorov–Smirnov D ≤ c(α)·sqrt((n+m)/(n·m)).
//
// plus one global correlation check comparing the Pearson matrices.
// Score is passed/total. A bad match is a low score, never an error.
//
// Example:
//
//	res := validation.Validate(holdout, synthetic)
//	if res.Score < 0.8 {
//		for _, c := range res.Failed() {
//			log.Println(c)
//		}
//	}
package validation
