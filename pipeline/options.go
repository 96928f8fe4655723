// SPDX-License-Identifier: MIT

package pipeline

import (
	"io"
	"log/slog"

	"github.com/katalvlaran/lvsynth/correlation"
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/katalvlaran/lvsynth/distribution"
)

// Options configures a Pipeline. The zero value is usable.
//
// Fields:
//   - MinCorrelation         — off-diagonal |r| below it is forced to 0 before building.
//   - MaxVariables           — keep only the top-N numeric variables by their
//     strongest |r| with any other variable; 0 keeps all.
//   - DistributionCandidates — family names tried by the fitter; empty means defaults.
//   - ValidationSplit        — fraction in [0,1) of records held out for validation.
//   - CorrelationMethod      — pearson (default), spearman or mutual_information.
//   - Seed                   — 0 draws a time-derived seed; anything else is reproducible.
//   - Workers                — per-variable fitting parallelism; < 1 means 1.
//   - Logger                 — stage logging; nil discards.
type Options struct {
	MinCorrelation         float64
	MaxVariables           int
	DistributionCandidates []string
	ValidationSplit        float64
	CorrelationMethod      correlation.Method
	Seed                   int64
	Workers                int
	Logger                 *slog.Logger
}

// DefaultOptions returns Pearson correlation, one worker and no filtering.
func DefaultOptions() Options {
	return Options{CorrelationMethod: correlation.Pearson, Workers: 1}
}

// resolved is Options after validation.
type resolved struct {
	Options
	families []distribution.Family
}

func (o Options) resolve() (resolved, error) {
	r := resolved{Options: o}
	if o.MinCorrelation < 0 || o.MinCorrelation > 1 {
		return r, dataset.FieldErrorf("minCorrelation", "must be within [0,1], got %g", o.MinCorrelation)
	}
	if o.MaxVariables < 0 || o.MaxVariables == 1 {
		return r, dataset.FieldErrorf("maxVariables", "must be 0 (no cap) or at least 2, got %d", o.MaxVariables)
	}
	if !(o.ValidationSplit >= 0 && o.ValidationSplit < 1) {
		return r, dataset.FieldErrorf("validationSplit", "must be within [0,1), got %g", o.ValidationSplit)
	}
	m, err := correlation.ParseMethod(string(o.CorrelationMethod))
	if err != nil {
		return r, dataset.FieldErrorf("correlationMethod", "%v", err)
	}
	r.CorrelationMethod = m
	if r.families, err = distribution.ParseFamilies(o.DistributionCandidates); err != nil {
		return r, dataset.FieldErrorf("distributionCandidates", "%v", err)
	}
	if r.Workers < 1 {
		r.Workers = 1
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return r, nil
}
