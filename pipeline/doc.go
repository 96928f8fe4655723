// SPDX-License-Identifier: MIT

// Package pipeline orchestrates one synthesis run over a survey batch.
//
// A Pipeline walks a strict state machine:
//
//	Uninitialized ─Load→ Loaded ─Analyze→ Analyzed ─Build→ Built ─Validate→ Validated
//
// DetectDistributions runs inside the Analyzed state and Generate is allowed
// from Built onwards. Calling a step from the wrong state fails with
// ErrInvalidState and leaves the pipeline untouched.
//
// ProcessSurveyData and GenerateAndValidate drive the machine in one call:
//
//	res, err := pipeline.GenerateAndValidate(ctx, ds, 1000, pipeline.Options{
//		MinCorrelation:  0.1,
//		ValidationSplit: 0.2,
//		Seed:            42,
//	})
//
// Errors:
//   - *dataset.InputError for precondition failures (empty batch, missing
//     schema, fewer than two numeric fields, bad options).
//   - *distribution.FittingError when any numeric variable cannot be fit;
//     the run fails rather than dropping the variable.
//   - *copula.ConstructionError when the joint model cannot be assembled.
package pipeline
