// SPDX-License-Identifier: MIT

package copula

import (
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/katalvlaran/lvsynth/distribution"
	"github.com/katalvlaran/lvsynth/matrix"
)

// DefaultCheckSamples is the draw size used by Joint.CorrelationMatrix.
const DefaultCheckSamples = 1000

const panicCheckSamples = "copula: WithCheckSamples: n must be >= 2"

// Option configures Build.
type Option func(*options)

type options struct {
	seed         int64
	seeded       bool
	checkSamples int
	categorical  []distribution.Categorical
	bounds       dataset.Schema
	matrixOpts   []matrix.Option
}

// WithSeed makes sampling reproducible. Seed 0 maps to a fixed default seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed, o.seeded = seed, true }
}

// WithCheckSamples sets how many records CorrelationMatrix draws.
// Panics when n < 2.
func WithCheckSamples(n int) Option {
	if n < 2 {
		panic(panicCheckSamples)
	}

	return func(o *options) { o.checkSamples = n }
}

// WithCategorical adds categorical or boolean fields sampled independently
// from their frequency tables.
func WithCategorical(tables ...distribution.Categorical) Option {
	return func(o *options) { o.categorical = append(o.categorical, tables...) }
}

// WithBounds clamps sampled numeric values into the Min/Max of their schema field.
func WithBounds(schema dataset.Schema) Option {
	return func(o *options) { o.bounds = schema }
}

// WithMatrixOptions forwards options to matrix.NearestCorrelation.
func WithMatrixOptions(opts ...matrix.Option) Option {
	return func(o *options) { o.matrixOpts = append(o.matrixOpts, opts...) }
}

func gatherOptions(opts ...Option) options {
	o := options{checkSamples: DefaultCheckSamples}
	for _, set := range opts {
		if set != nil {
			set(&o)
		}
	}

	return o
}
