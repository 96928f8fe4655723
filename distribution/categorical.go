// SPDX-License-Identifier: MIT

package distribution

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/katalvlaran/lvsynth/dataset"
)

// Category is one row of a frequency table.
type Category struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Categorical is the empirical distribution of a categorical or boolean field.
// Categories are sorted by label; probabilities sum to 1.
type Categorical struct {
	Variable   string       `json:"variable"`
	Kind       dataset.Kind `json:"kind"`
	Categories []Category   `json:"categories"`
}

// FitCategorical builds the frequency table of values. Missing and numeric
// values are ignored; a table mixing categorical and boolean values takes
// the majority kind. No usable value ⇒ *FittingError.
func FitCategorical(variable string, values []dataset.Value) (Categorical, error) {
	counts := make(map[string]int)
	var total, nBool int
	for _, v := range values {
		switch v.Kind() {
		case dataset.KindCategorical:
		case dataset.KindBoolean:
			nBool++
		default:
			continue
		}
		counts[v.Label()]++
		total++
	}
	if total == 0 {
		return Categorical{}, &FittingError{Variable: variable, Cause: "no categorical values"}
	}

	kind := dataset.KindCategorical
	if nBool*2 > total {
		kind = dataset.KindBoolean
	}
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	out := Categorical{Variable: variable, Kind: kind, Categories: make([]Category, len(labels))}
	for i, l := range labels {
		out.Categories[i] = Category{Label: l, Probability: float64(counts[l]) / float64(total)}
	}

	return out, nil
}

// Probability returns the weight of label (0 when absent).
func (c Categorical) Probability(label string) float64 {
	for _, cat := range c.Categories {
		if cat.Label == label {
			return cat.Probability
		}
	}

	return 0
}

// Value converts a label into the dataset.Value of the table's kind.
func (c Categorical) Value(label string) dataset.Value {
	if c.Kind == dataset.KindBoolean {
		return dataset.Boolean(label == "true")
	}

	return dataset.Categorical(label)
}

// Quantile maps p ∈ [0,1) onto a label by walking the cumulative weights.
func (c Categorical) Quantile(p float64) dataset.Value {
	acc := 0.0
	for _, cat := range c.Categories {
		acc += cat.Probability
		if p < acc {
			return c.Value(cat.Label)
		}
	}

	return c.Value(c.Categories[len(c.Categories)-1].Label)
}

// Sample draws one value.
func (c Categorical) Sample(rng *rand.Rand) dataset.Value {
	return c.Quantile(rng.Float64())
}

// Validate checks that the table is non-empty and its weights form a distribution.
func (c Categorical) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: categorical %q has no categories", ErrInvalidParameters, c.Variable)
	}
	sum := 0.0
	for _, cat := range c.Categories {
		if cat.Probability < 0 {
			return fmt.Errorf("%w: categorical %q: negative weight for %q", ErrInvalidParameters, c.Variable, cat.Label)
		}
		sum += cat.Probability
	}
	if sum < 1-1e-9 || sum > 1+1e-9 {
		return fmt.Errorf("%w: categorical %q: weights sum to %g", ErrInvalidParameters, c.Variable, sum)
	}

	return nil
}
