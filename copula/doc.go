// SPDX-License-Identifier: MIT

// Package copula builds a sampleable joint distribution from per-variable
// marginal fits and a correlation matrix using a Gaussian copula.
//
// Sampling one record:
//
//	z ~ N(0, I)            independent standard normals
//	x = L·z                L is the Cholesky factor of the copula correlation
//	u_i = Φ(x_i)           uniform margins with the target dependence
//	v_i = F_i⁻¹(u_i)       inverse transform through each fitted marginal
//
// A correlation matrix that is not positive definite (common when it was
// assembled from pairwise-complete estimates) is replaced by its nearest
// valid correlation matrix before factorization; Joint.Repaired reports it.
//
// A Joint is immutable after Build. Sample derives a fresh random stream
// from the seeded base source on every call, so seeded joints replay the
// same sequence of batches and concurrent callers never share a generator.
package copula
