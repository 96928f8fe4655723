// SPDX-License-Identifier: MIT

package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/lvsynth/copula"
	"github.com/katalvlaran/lvsynth/correlation"
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/katalvlaran/lvsynth/distribution"
	"github.com/katalvlaran/lvsynth/pipeline"
	"github.com/katalvlaran/lvsynth/validation"
)

// synthetic returns n survey records where income tracks age, score is
// independent noise and region is categorical.
func synthetic(n int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	lo, hi := 18.0, 90.0
	ds := &dataset.Dataset{
		Schema: dataset.Schema{
			"age":    {Kind: dataset.KindNumeric, Min: &lo, Max: &hi},
			"income": {Kind: dataset.KindNumeric},
			"score":  {Kind: dataset.KindNumeric},
			"region": {Kind: dataset.KindCategorical},
			"member": {Kind: dataset.KindBoolean},
		},
		Metadata: dataset.Metadata{SampleSize: n, Source: "test"},
	}
	regions := []string{"north", "south", "east"}
	for i := 0; i < n; i++ {
		age := 45 + 10*rng.NormFloat64()
		ds.Responses = append(ds.Responses, dataset.Record{
			"age":    dataset.Numeric(age),
			"income": dataset.Numeric(1000*age + 5000*rng.NormFloat64()),
			"score":  dataset.Numeric(rng.Float64() * 100),
			"region": dataset.Categorical(regions[rng.Intn(len(regions))]),
			"member": dataset.Boolean(rng.Intn(2) == 0),
		})
	}

	return ds
}

// StateMachineSuite walks a single pipeline through every stage.
type StateMachineSuite struct {
	suite.Suite
	ctx context.Context
	ds  *dataset.Dataset
	p   *pipeline.Pipeline
}

func (s *StateMachineSuite) SetupTest() {
	s.ctx = context.Background()
	s.ds = synthetic(300, 1)
	p, err := pipeline.New(pipeline.Options{Seed: 5, ValidationSplit: 0.2, Workers: 3})
	s.Require().NoError(err)
	s.p = p
}

func (s *StateMachineSuite) TestHappyPath() {
	s.Equal(pipeline.Uninitialized, s.p.State())
	s.NotEqual([16]byte{}, [16]byte(s.p.RunID()))

	s.Require().NoError(s.p.Load(s.ctx, s.ds))
	s.Equal(pipeline.Loaded, s.p.State())

	corr, err := s.p.Analyze(s.ctx)
	s.Require().NoError(err)
	s.Equal(pipeline.Analyzed, s.p.State())
	s.Equal([]string{"age", "income", "score"}, corr.Variables)
	r, err := corr.At("age", "income")
	s.Require().NoError(err)
	s.Greater(r, 0.8)

	fits, err := s.p.DetectDistributions(s.ctx)
	s.Require().NoError(err)
	s.Len(fits, 3)
	s.Equal(pipeline.Analyzed, s.p.State())

	joint, err := s.p.Build(s.ctx)
	s.Require().NoError(err)
	s.Equal(pipeline.Built, s.p.State())
	s.Equal([]string{"age", "income", "score", "member", "region"}, joint.Variables())

	recs, err := s.p.Generate(s.ctx, 500)
	s.Require().NoError(err)
	s.Len(recs, 500)
	for _, rec := range recs {
		age, ok := rec["age"].Float()
		s.Require().True(ok)
		s.GreaterOrEqual(age, 18.0)
		s.LessOrEqual(age, 90.0)
		s.Equal(dataset.KindBoolean, rec["member"].Kind())
	}

	res, err := s.p.Validate(s.ctx)
	s.Require().NoError(err)
	s.Equal(pipeline.Validated, s.p.State())
	s.GreaterOrEqual(res.Score, 0.7)
	s.LessOrEqual(res.Score, 1.0)

	// Generate again from Validated is allowed.
	_, err = s.p.Generate(s.ctx, 10)
	s.NoError(err)
}

func (s *StateMachineSuite) TestOutOfOrder() {
	_, err := s.p.Analyze(s.ctx)
	s.ErrorIs(err, pipeline.ErrInvalidState)
	_, err = s.p.Build(s.ctx)
	s.ErrorIs(err, pipeline.ErrInvalidState)
	_, err = s.p.Generate(s.ctx, 1)
	s.ErrorIs(err, pipeline.ErrInvalidState)
	_, err = s.p.Validate(s.ctx)
	s.ErrorIs(err, pipeline.ErrInvalidState)
	s.Equal(pipeline.Uninitialized, s.p.State())

	s.Require().NoError(s.p.Load(s.ctx, s.ds))
	s.ErrorIs(s.p.Load(s.ctx, s.ds), pipeline.ErrInvalidState)

	_, err = s.p.Analyze(s.ctx)
	s.Require().NoError(err)
	_, err = s.p.Build(s.ctx)
	s.Require().NoError(err)
	_, err = s.p.Validate(s.ctx)
	s.ErrorIs(err, pipeline.ErrInvalidState, "validate before generate")
}

func (s *StateMachineSuite) TestBuildFitsImplicitly() {
	s.Require().NoError(s.p.Load(s.ctx, s.ds))
	_, err := s.p.Analyze(s.ctx)
	s.Require().NoError(err)
	_, err = s.p.Build(s.ctx)
	s.Require().NoError(err)
	s.Len(s.p.Fits(), 3)
}

func (s *StateMachineSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.ErrorIs(s.p.Load(ctx, s.ds), context.Canceled)
	s.Equal(pipeline.Uninitialized, s.p.State())
}

func TestStateMachineSuite(t *testing.T) {
	suite.Run(t, new(StateMachineSuite))
}

func TestInputErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	numeric := dataset.Schema{"a": {Kind: dataset.KindNumeric}, "b": {Kind: dataset.KindNumeric}}
	rec := dataset.Record{"a": dataset.Numeric(1), "b": dataset.Numeric(2)}

	cases := []struct {
		name string
		data *dataset.Dataset
		want string
	}{
		{"nil", nil, "at least one response"},
		{"no responses", &dataset.Dataset{Schema: numeric}, "at least one response"},
		{"no schema", &dataset.Dataset{Responses: []dataset.Record{rec}}, "schema must be provided"},
		{"one numeric", &dataset.Dataset{
			Responses: []dataset.Record{{"a": dataset.Numeric(1), "c": dataset.Categorical("x")}},
			Schema:    dataset.Schema{"a": {Kind: dataset.KindNumeric}, "c": {Kind: dataset.KindCategorical}},
		}, "at least two numeric fields"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := pipeline.ProcessSurveyData(ctx, tc.data, pipeline.Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, dataset.ErrInput)
			var ie *dataset.InputError
			require.True(t, errors.As(err, &ie))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestOptionErrors(t *testing.T) {
	t.Parallel()
	bad := []pipeline.Options{
		{MinCorrelation: -0.1},
		{MinCorrelation: 1.5},
		{MaxVariables: 1},
		{MaxVariables: -2},
		{ValidationSplit: 1},
		{ValidationSplit: math.NaN()},
		{CorrelationMethod: "kendall"},
		{DistributionCandidates: []string{"normal", "weibull"}},
	}
	for _, o := range bad {
		_, err := pipeline.New(o)
		assert.ErrorIs(t, err, dataset.ErrInput, "%+v", o)
	}
}

func TestProcessSurveyData_PerfectLinear(t *testing.T) {
	t.Parallel()
	ds := &dataset.Dataset{
		Schema: dataset.Schema{"age": {Kind: dataset.KindNumeric}, "income": {Kind: dataset.KindNumeric}},
		Responses: []dataset.Record{
			{"age": dataset.Numeric(25), "income": dataset.Numeric(50000)},
			{"age": dataset.Numeric(30), "income": dataset.Numeric(60000)},
			{"age": dataset.Numeric(35), "income": dataset.Numeric(70000)},
			{"age": dataset.Numeric(40), "income": dataset.Numeric(80000)},
			{"age": dataset.Numeric(45), "income": dataset.Numeric(90000)},
		},
	}
	res, err := pipeline.ProcessSurveyData(context.Background(), ds, pipeline.Options{Seed: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Correlation.Values[0][1], 1e-6)
	require.NotNil(t, res.Joint)
	assert.Len(t, res.Joint.Sample(5), 5)
}

func TestProcessSurveyData_FittingErrorFailsRun(t *testing.T) {
	t.Parallel()
	ds := &dataset.Dataset{
		Schema: dataset.Schema{"a": {Kind: dataset.KindNumeric}, "b": {Kind: dataset.KindNumeric}},
		Responses: []dataset.Record{
			{"a": dataset.Numeric(1), "b": dataset.Numeric(-1)},
			{"a": dataset.Numeric(2), "b": dataset.Numeric(-3)},
			{"a": dataset.Numeric(4), "b": dataset.Numeric(-2)},
			{"a": dataset.Numeric(3)},
		},
	}
	_, err := pipeline.ProcessSurveyData(context.Background(), ds, pipeline.Options{
		DistributionCandidates: []string{"exponential"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, distribution.ErrFitting)
	assert.Contains(t, err.Error(), "could not fit")
}

func TestProcessSurveyData_MaxVariablesAndThreshold(t *testing.T) {
	t.Parallel()
	res, err := pipeline.ProcessSurveyData(context.Background(), synthetic(400, 2), pipeline.Options{
		MaxVariables:   2,
		MinCorrelation: 0.3,
		Seed:           9,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "income"}, res.Variables)
	assert.Len(t, res.Distributions, 2)
	assert.Equal(t, correlation.Pearson, res.Correlation.Method)
}

func TestProcessSurveyData_Threshold(t *testing.T) {
	t.Parallel()
	res, err := pipeline.ProcessSurveyData(context.Background(), synthetic(400, 3), pipeline.Options{
		MinCorrelation: 0.3,
		Seed:           9,
	})
	require.NoError(t, err)
	v, err := res.Correlation.At("age", "score")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
	v, err = res.Correlation.At("age", "income")
	require.NoError(t, err)
	assert.Greater(t, v, 0.3)
}

// inverse returns n records where y falls as x rises.
func inverse(n int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := &dataset.Dataset{
		Schema: dataset.Schema{"x": {Kind: dataset.KindNumeric}, "y": {Kind: dataset.KindNumeric}},
	}
	for i := 0; i < n; i++ {
		x := 50 + 10*rng.NormFloat64()
		ds.Responses = append(ds.Responses, dataset.Record{
			"x": dataset.Numeric(x),
			"y": dataset.Numeric(-x + 2*rng.NormFloat64()),
		})
	}

	return ds
}

func TestGenerateAndValidate_NegativeDependenceEveryMethod(t *testing.T) {
	t.Parallel()
	for _, method := range []correlation.Method{correlation.Pearson, correlation.Spearman, correlation.MutualInformation} {
		t.Run(string(method), func(t *testing.T) {
			t.Parallel()
			res, err := pipeline.GenerateAndValidate(context.Background(), inverse(500, 11), 1000, pipeline.Options{
				CorrelationMethod: method,
				Seed:              7,
			})
			require.NoError(t, err)
			assert.Equal(t, method, res.Correlation.Method)

			r, err := res.Joint.Copula().At("x", "y")
			require.NoError(t, err)
			assert.Less(t, r, -0.9)

			realized, err := correlation.CalculatePearson(res.Samples, []string{"x", "y"}).At("x", "y")
			require.NoError(t, err)
			assert.Less(t, realized, -0.9)

			require.NotNil(t, res.Validation)
			for _, c := range res.Validation.Tests {
				if c.Name == validation.CheckCorrelation {
					assert.True(t, c.Passed, c.String())
				}
			}
		})
	}
}

func TestGenerateAndValidate_SeededReproducible(t *testing.T) {
	t.Parallel()
	opts := pipeline.Options{Seed: 77, ValidationSplit: 0.25, CorrelationMethod: correlation.Spearman, Workers: 2}
	a, err := pipeline.GenerateAndValidate(context.Background(), synthetic(200, 4), 50, opts)
	require.NoError(t, err)
	b, err := pipeline.GenerateAndValidate(context.Background(), synthetic(200, 4), 50, opts)
	require.NoError(t, err)

	assert.Equal(t, a.Samples, b.Samples)
	assert.NotEqual(t, a.RunID, b.RunID)
	require.NotNil(t, a.Validation)
	assert.Equal(t, a.Validation.Score, b.Validation.Score)
}

func TestGenerateAndValidate_NegativeN(t *testing.T) {
	t.Parallel()
	_, err := pipeline.GenerateAndValidate(context.Background(), synthetic(50, 5), -1, pipeline.Options{})
	assert.ErrorIs(t, err, dataset.ErrInput)
}

func TestLogger_StageRecords(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	res, err := pipeline.GenerateAndValidate(context.Background(), synthetic(100, 6), 20, pipeline.Options{Logger: log})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"run_id":"`+res.RunID.String()+`"`)
	for _, stage := range []string{"loaded", "analyzed", "built", "validated"} {
		assert.Contains(t, out, `"stage":"`+stage+`"`)
	}
	assert.Contains(t, out, "marginal fitted")
}

func TestResult_JointSpec(t *testing.T) {
	t.Parallel()
	res, err := pipeline.ProcessSurveyData(context.Background(), synthetic(150, 7), pipeline.Options{Seed: 3})
	require.NoError(t, err)

	again, err := copula.FromSpec(res.Joint.Spec(), copula.WithSeed(3))
	require.NoError(t, err)
	assert.Equal(t, res.Joint.Variables(), again.Variables())
}
