// Package lvsynth builds synthetic survey data that keeps the shape of the
// original: each variable's marginal distribution and the dependence
// between variables.
//
// 🚀 What does it do?
//
//	Given a batch of responses and a schema, lvsynth:
//		• measures dependence (Pearson, Spearman, binned mutual information)
//		• fits a marginal per numeric variable, scored by 1 − KS
//		• couples the marginals with a Gaussian copula (Cholesky, with a
//		  nearest-correlation repair for matrices that are not positive definite)
//		• samples new records and scores them against held-out data
//
// Under the hood:
//
//	matrix/       — dense linear algebra: Cholesky, Jacobi eigen, correlation repair
//	dataset/      — tagged values, schema, batch validation, InputError
//	correlation/  — dependence matrices over pairwise-complete observations
//	distribution/ — parametric families, moment fitting, FittingError
//	copula/       — Gaussian-copula joint distribution, ConstructionError
//	validation/   — summary statistics and pass/fail checks, score in [0,1]
//	pipeline/     — the Uninitialized → Loaded → Analyzed → Built → Validated machine
//	ingest/       — CSV / JSON / YAML readers
//	store/        — model persistence (sqlite, postgres)
//	config/       — YAML + LVSYNTH_* environment configuration
//	cmd/lvsynth   — command-line entry point
//
// Quick start:
//
//	res, err := pipeline.GenerateAndValidate(ctx, ds, 1000, pipeline.Options{Seed: 42})
//	if err != nil { ... }
//	fmt.Println(res.Validation.Score)
package lvsynth
