// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvsynth/copula"
	"github.com/katalvlaran/lvsynth/correlation"
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/katalvlaran/lvsynth/distribution"
	"github.com/katalvlaran/lvsynth/validation"
)

// State is a pipeline stage.
type State int

const (
	Uninitialized State = iota
	Loaded
	Analyzed
	Built
	Validated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loaded:
		return "loaded"
	case Analyzed:
		return "analyzed"
	case Built:
		return "built"
	case Validated:
		return "validated"
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// ErrInvalidState is returned when a step is called out of order.
var ErrInvalidState = errors.New("pipeline: invalid state")

// Pipeline holds one run. It is not safe for concurrent use; the Joint it
// builds is.
type Pipeline struct {
	opts  resolved
	log   *slog.Logger
	runID uuid.UUID
	state State

	data        *dataset.Dataset
	train       []dataset.Record
	holdout     []dataset.Record
	numeric     []string
	categorical []string

	corr   correlation.Matrix
	latent correlation.Matrix
	fits   []distribution.Fit
	tables []distribution.Categorical
	joint  *copula.Joint

	generated []dataset.Record
	report    *validation.Result
}

// New validates opts and returns an Uninitialized pipeline with a fresh run ID.
func New(opts Options) (*Pipeline, error) {
	r, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	id := uuid.New()

	return &Pipeline{
		opts:  r,
		runID: id,
		log:   r.Logger.With("run_id", id.String()),
	}, nil
}

// RunID identifies the run in logs and stores.
func (p *Pipeline) RunID() uuid.UUID { return p.runID }

// State returns the current stage.
func (p *Pipeline) State() State { return p.state }

// Variables returns the numeric variables kept for modeling.
func (p *Pipeline) Variables() []string { return append([]string(nil), p.numeric...) }

// Correlation returns the filtered correlation matrix (Analyzed onwards).
func (p *Pipeline) Correlation() correlation.Matrix { return p.corr }

// LatentCorrelation returns the Pearson-scale matrix the copula is built from.
func (p *Pipeline) LatentCorrelation() correlation.Matrix { return p.latent }

// Fits returns the numeric marginal fits once DetectDistributions has run.
func (p *Pipeline) Fits() []distribution.Fit { return append([]distribution.Fit(nil), p.fits...) }

// Joint returns the built model (Built onwards), nil before.
func (p *Pipeline) Joint() *copula.Joint { return p.joint }

func (p *Pipeline) require(op string, allowed ...State) error {
	for _, s := range allowed {
		if p.state == s {
			return nil
		}
	}

	return fmt.Errorf("%w: %s requires %v, pipeline is %s", ErrInvalidState, op, allowed, p.state)
}

func (p *Pipeline) advance(to State, started time.Time, attrs ...any) {
	p.state = to
	attrs = append([]any{"stage", to.String(), "elapsed", time.Since(started)}, attrs...)
	p.log.Info("stage complete", attrs...)
}

// Load validates data and splits off the validation holdout.
//
// Errors:
//   - ErrInvalidState unless Uninitialized.
//   - *dataset.InputError: no responses, no schema, undeclared fields, or
//     fewer than two numeric schema fields.
func (p *Pipeline) Load(ctx context.Context, data *dataset.Dataset) error {
	if err := p.require("Load", Uninitialized); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	if data == nil {
		return dataset.NewInputError(dataset.MsgNoResponses)
	}
	if err := data.Validate(); err != nil {
		return err
	}
	numeric := data.Schema.NumericFields()
	if len(numeric) < 2 {
		return dataset.NewInputError(dataset.MsgTooFewNumeric)
	}

	p.data = data
	p.numeric = numeric
	p.categorical = data.Schema.FieldsOf(dataset.KindCategorical, dataset.KindBoolean)
	p.train, p.holdout = dataset.Split(data.Responses, p.opts.ValidationSplit)
	p.advance(Loaded, start,
		"records", len(data.Responses), "holdout", len(p.holdout),
		"numeric", len(numeric), "categorical", len(p.categorical))

	return nil
}

// Analyze computes the correlation matrix of the training records, keeps
// the MaxVariables strongest variables and zeroes weak pairs.
//
// The returned matrix is measured with CorrelationMethod. The copula is
// built from its Pearson-scale counterpart (see correlation.Analyzer.Latent),
// available through LatentCorrelation.
func (p *Pipeline) Analyze(ctx context.Context) (correlation.Matrix, error) {
	if err := p.require("Analyze", Loaded); err != nil {
		return correlation.Matrix{}, err
	}
	if err := ctx.Err(); err != nil {
		return correlation.Matrix{}, err
	}
	start := time.Now()

	var a correlation.Analyzer
	corr, err := a.Calculate(p.train, p.numeric, p.opts.CorrelationMethod)
	if err != nil {
		return correlation.Matrix{}, err
	}
	keep := topVariables(corr, p.opts.MaxVariables)
	if len(keep) < len(p.numeric) {
		if corr, err = corr.Subset(keep); err != nil {
			return correlation.Matrix{}, err
		}
	}
	latent, err := a.Latent(p.train, keep, p.opts.CorrelationMethod)
	if err != nil {
		return correlation.Matrix{}, err
	}
	if p.opts.MinCorrelation > 0 {
		corr = corr.Threshold(p.opts.MinCorrelation)
		latent = latent.Threshold(p.opts.MinCorrelation)
	}

	p.numeric = keep
	p.corr, p.latent = corr, latent
	p.advance(Analyzed, start, "variables", len(p.numeric), "method", string(corr.Method))

	return corr, nil
}

// topVariables returns corr.Variables restricted to the max strongest, in
// their original order. Ties keep the earlier variable.
func topVariables(corr correlation.Matrix, max int) []string {
	if max <= 0 || max >= len(corr.Variables) {
		return corr.Variables
	}
	strength := corr.MaxAbsOffDiagonal()
	idx := make([]int, len(corr.Variables))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return strength[idx[a]] > strength[idx[b]] })
	idx = idx[:max]
	sort.Ints(idx)

	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = corr.Variables[i]
	}

	return out
}

// DetectDistributions fits every kept numeric variable (Workers at a time)
// and tabulates the categorical ones. The state stays Analyzed.
//
// Errors:
//   - *distribution.FittingError for the first numeric variable that cannot
//     be fit; no fit is kept in that case.
//   - ctx.Err() when cancelled.
func (p *Pipeline) DetectDistributions(ctx context.Context) ([]distribution.Fit, error) {
	if err := p.require("DetectDistributions", Analyzed); err != nil {
		return nil, err
	}
	start := time.Now()

	fits := make([]distribution.Fit, len(p.numeric))
	fitter := distribution.Fitter{Families: p.opts.families}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, name := range p.numeric {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := fitter.Fit(name, dataset.Column(p.train, name))
			if err != nil {
				return err
			}
			fits[i] = f

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tables []distribution.Categorical
	for _, name := range p.categorical {
		tab, err := distribution.FitCategorical(name, dataset.Labels(p.train, name))
		if err != nil {
			// A categorical column with no observed label has nothing to sample.
			p.log.Warn("categorical field skipped", "variable", name, "error", err)
			continue
		}
		tables = append(tables, tab)
	}

	p.fits, p.tables = fits, tables
	for _, f := range fits {
		p.log.Debug("marginal fitted", "variable", f.Variable,
			"family", string(f.Best.Family), "goodness_of_fit", f.Best.GoodnessOfFit)
	}
	p.log.Info("distributions detected", "elapsed", time.Since(start),
		"numeric", len(fits), "categorical", len(tables))

	return p.Fits(), nil
}

// Build assembles the Gaussian-copula joint distribution. It runs
// DetectDistributions first when that has not happened yet.
func (p *Pipeline) Build(ctx context.Context) (*copula.Joint, error) {
	if err := p.require("Build", Analyzed); err != nil {
		return nil, err
	}
	if p.fits == nil {
		if _, err := p.DetectDistributions(ctx); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	opts := []copula.Option{
		copula.WithCategorical(p.tables...),
		copula.WithBounds(p.data.Schema),
	}
	if p.opts.Seed != 0 {
		opts = append(opts, copula.WithSeed(p.opts.Seed))
	}
	joint, err := copula.Build(p.fits, p.latent, opts...)
	if err != nil {
		return nil, err
	}

	p.joint = joint
	p.advance(Built, start, "repaired", joint.Repaired())

	return joint, nil
}

// Generate samples n records from the built model. Allowed from Built and
// Validated; the latest sample is the one Validate checks.
func (p *Pipeline) Generate(ctx context.Context, n int) ([]dataset.Record, error) {
	if err := p.require("Generate", Built, Validated); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, dataset.FieldErrorf("n", "sample size must be non-negative, got %d", n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	p.generated = p.joint.Sample(n)
	p.log.Info("samples generated", "count", n, "elapsed", time.Since(start))

	return p.generated, nil
}

// Validate compares the latest generated sample with the holdout, or with
// the training records when no holdout was split off.
func (p *Pipeline) Validate(ctx context.Context) (validation.Result, error) {
	if err := p.require("Validate", Built, Validated); err != nil {
		return validation.Result{}, err
	}
	if p.generated == nil {
		return validation.Result{}, fmt.Errorf("%w: Validate requires a generated sample", ErrInvalidState)
	}
	if err := ctx.Err(); err != nil {
		return validation.Result{}, err
	}
	start := time.Now()

	reference := p.holdout
	if len(reference) == 0 {
		reference = p.train
	}
	o := validation.DefaultOptions()
	o.Variables = p.Variables()
	res := o.Validate(reference, p.generated)

	p.report = &res
	p.advance(Validated, start, "score", res.Score, "checks", len(res.Tests), "passed", res.Passed)

	return res, nil
}

// Result gathers the artifacts of a run.
type Result struct {
	RunID         uuid.UUID                  `json:"runId"`
	Variables     []string                   `json:"variables"`
	Correlation   correlation.Matrix         `json:"correlation"`
	Distributions []distribution.Fit         `json:"distributions"`
	Categorical   []distribution.Categorical `json:"categorical,omitempty"`
	Joint         *copula.Joint              `json:"joint"`
	Samples       []dataset.Record           `json:"samples,omitempty"`
	Validation    *validation.Result         `json:"validation,omitempty"`
}

// Result snapshots the artifacts produced so far.
func (p *Pipeline) Result() *Result {
	return &Result{
		RunID:         p.runID,
		Variables:     p.Variables(),
		Correlation:   p.corr,
		Distributions: p.Fits(),
		Categorical:   append([]distribution.Categorical(nil), p.tables...),
		Joint:         p.joint,
		Samples:       p.generated,
		Validation:    p.report,
	}
}

// ProcessSurveyData runs Load, Analyze, DetectDistributions and Build.
func ProcessSurveyData(ctx context.Context, data *dataset.Dataset, opts Options) (*Result, error) {
	p, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err = p.Load(ctx, data); err != nil {
		return nil, err
	}
	if _, err = p.Analyze(ctx); err != nil {
		return nil, err
	}
	if _, err = p.Build(ctx); err != nil {
		return nil, err
	}

	return p.Result(), nil
}

// GenerateAndValidate is ProcessSurveyData followed by Generate(n) and Validate.
func GenerateAndValidate(ctx context.Context, data *dataset.Dataset, n int, opts Options) (*Result, error) {
	p, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err = p.Load(ctx, data); err != nil {
		return nil, err
	}
	if _, err = p.Analyze(ctx); err != nil {
		return nil, err
	}
	if _, err = p.Build(ctx); err != nil {
		return nil, err
	}
	if _, err = p.Generate(ctx, n); err != nil {
		return nil, err
	}
	if _, err = p.Validate(ctx); err != nil {
		return nil, err
	}

	return p.Result(), nil
}
