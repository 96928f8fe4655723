// SPDX-License-Identifier: MIT

// Package correlation computes pairwise dependence matrices between numeric
// survey variables.
//
// Three measures are provided and produce interchangeable Matrix values:
//
//   - Pearson: product-moment correlation.
//   - Spearman: Pearson on average ranks (ties share the mean rank).
//   - MutualInformation: equal-width binning into Bins buckets per variable,
//     a joint histogram, and MI normalized by log(Bins) into [0,1].
//
// Missing data uses pairwise-complete observations: a record whose value for
// either variable of a pair is missing, non-numeric or non-finite is dropped
// from that pair only. A pair with fewer than two co-observed records, or a
// variable with zero variance inside the pair, gets coefficient 0. The
// analysis never fails: every cell is populated, the diagonal is 1 and the
// variable order is the caller's.
package correlation
