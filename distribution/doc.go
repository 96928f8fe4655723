// SPDX-License-Identifier: MIT

// Package distribution fits univariate parametric families to a sample and
// exposes the result as a closed set of Distribution values.
//
// Families: Normal, Uniform, Exponential, Beta, LogNormal, plus Degenerate
// (a point mass used for constant samples). Each variant carries its own
// parameter struct and implements Distribution (CDF, Quantile, moments,
// Sample). Categorical is the empirical frequency table used for
// non-numeric survey fields.
//
// Fitting is closed-form moment matching. Every candidate is scored as
// 1 − D, where D is the one-sample Kolmogorov–Smirnov statistic of the
// sample against the fitted CDF; the best-scoring candidate wins and the
// rest are returned as alternatives in descending score order.
//
// Errors: Fit returns *FittingError (errors.Is ErrFitting) when fewer than two
// finite values remain or when no candidate family can be estimated.
package distribution
