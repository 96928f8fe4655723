// SPDX-License-Identifier: MIT

package validation

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/lvsynth/correlation"
	"github.com/katalvlaran/lvsynth/dataset"
	"github.com/katalvlaran/lvsynth/distribution"
)

// Check names.
const (
	CheckMean        = "mean"
	CheckVariance    = "variance"
	CheckKS          = "ks"
	CheckCorrelation = "correlation"
)

// Summary holds the descriptive statistics of one variable.
// Variance is the sample variance (n−1); it is 0 when Count < 2.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Check is one comparison outcome. Variable is empty for global checks.
type Check struct {
	Name      string  `json:"name"`
	Variable  string  `json:"variable,omitempty"`
	Passed    bool    `json:"passed"`
	Statistic float64 `json:"statistic"`
	Threshold float64 `json:"threshold"`
}

func (c Check) String() string {
	status := "fail"
	if c.Passed {
		status = "pass"
	}
	if c.Variable == "" {
		return fmt.Sprintf("%s: %s (%.4g vs %.4g)", c.Name, status, c.Statistic, c.Threshold)
	}

	return fmt.Sprintf("%s[%s]: %s (%.4g vs %.4g)", c.Name, c.Variable, status, c.Statistic, c.Threshold)
}

// Result is the outcome of Validate.
type Result struct {
	Original  map[string]Summary `json:"original"`
	Generated map[string]Summary `json:"generated"`
	Tests     []Check            `json:"tests"`
	Passed    int                `json:"passed"`
	Score     float64            `json:"score"`
}

// Failed returns the checks that did not pass, in evaluation order.
func (r Result) Failed() []Check {
	var out []Check
	for _, c := range r.Tests {
		if !c.Passed {
			out = append(out, c)
		}
	}

	return out
}

// Validate compares generated against original with DefaultOptions.
func Validate(original, generated []dataset.Record) Result {
	return DefaultOptions().Validate(original, generated)
}

// ValidateDataset compares generated against the numeric schema fields of original.
func ValidateDataset(original *dataset.Dataset, generated []dataset.Record) Result {
	o := DefaultOptions()
	o.Variables = original.Schema.NumericFields()

	return o.Validate(original.Responses, generated)
}

// Validate runs every enabled check and aggregates the score.
//
// Behavior highlights:
//   - Checks run per variable in o.Variables order (mean, variance, ks),
//     followed by the global correlation check.
//   - A variable with no finite value on either side fails its checks;
//     one with none on both sides is summarized but not checked.
//   - Score = passed/total in [0,1]; zero checks ⇒ 0.
//   - Identical inputs score 1.
func (o Options) Validate(original, generated []dataset.Record) Result {
	vars := o.Variables
	if len(vars) == 0 {
		vars = numericVariables(original)
	}

	res := Result{
		Original:  make(map[string]Summary, len(vars)),
		Generated: make(map[string]Summary, len(vars)),
	}
	for _, name := range vars {
		a := dataset.Finite(dataset.Column(original, name))
		b := dataset.Finite(dataset.Column(generated, name))
		sa, sb := summarize(a), summarize(b)
		res.Original[name], res.Generated[name] = sa, sb
		if sa.Count == 0 && sb.Count == 0 {
			continue
		}

		res.Tests = append(res.Tests, o.meanCheck(name, sa, sb), o.varianceCheck(name, sa, sb))
		if o.KSCoefficient > 0 {
			res.Tests = append(res.Tests, o.ksCheck(name, a, b))
		}
	}
	if o.MaxCorrelationDelta > 0 && len(vars) >= 2 {
		res.Tests = append(res.Tests, o.correlationCheck(original, generated, vars))
	}

	for _, c := range res.Tests {
		if c.Passed {
			res.Passed++
		}
	}
	if len(res.Tests) > 0 {
		res.Score = math.Min(1, math.Max(0, float64(res.Passed)/float64(len(res.Tests))))
	}

	return res
}

func (o Options) meanCheck(name string, a, b Summary) Check {
	c := Check{Name: CheckMean, Variable: name}
	if a.Count == 0 || b.Count == 0 {
		c.Statistic = math.Inf(1)
		return c
	}
	c.Statistic = math.Abs(a.Mean - b.Mean)
	se := math.Sqrt(a.Variance/float64(a.Count) + a.Variance/float64(b.Count))
	c.Threshold = o.MeanZ * se
	c.Passed = c.Statistic == 0 || c.Statistic <= c.Threshold

	return c
}

func (o Options) varianceCheck(name string, a, b Summary) Check {
	c := Check{Name: CheckVariance, Variable: name, Threshold: o.VarianceRatioMax}
	switch {
	case a.Count == 0 || b.Count == 0:
		c.Statistic = math.Inf(1)
	case a.Variance == 0 && b.Variance == 0:
		c.Statistic, c.Passed = 1, true
	case a.Variance == 0:
		c.Statistic = math.Inf(1)
	default:
		c.Statistic = b.Variance / a.Variance
		c.Passed = c.Statistic >= o.VarianceRatioMin && c.Statistic <= o.VarianceRatioMax
	}

	return c
}

func (o Options) ksCheck(name string, a, b []float64) Check {
	c := Check{Name: CheckKS, Variable: name}
	if len(a) == 0 || len(b) == 0 {
		c.Statistic = 1
		return c
	}
	n, m := float64(len(a)), float64(len(b))
	c.Statistic = distribution.KSTwoSample(a, b)
	c.Threshold = o.KSCoefficient * math.Sqrt((n+m)/(n*m))
	c.Passed = c.Statistic <= c.Threshold

	return c
}

// correlationCheck compares pairwise Pearson coefficients over vars.
func (o Options) correlationCheck(original, generated []dataset.Record, vars []string) Check {
	a := correlation.CalculatePearson(original, vars)
	b := correlation.CalculatePearson(generated, vars)
	var worst float64
	for i := range vars {
		for j := i + 1; j < len(vars); j++ {
			worst = math.Max(worst, math.Abs(a.Values[i][j]-b.Values[i][j]))
		}
	}

	return Check{
		Name:      CheckCorrelation,
		Passed:    worst <= o.MaxCorrelationDelta,
		Statistic: worst,
		Threshold: o.MaxCorrelationDelta,
	}
}

func summarize(xs []float64) Summary {
	s := Summary{Count: len(xs)}
	if s.Count == 0 {
		return s
	}
	s.Min, s.Max = xs[0], xs[0]
	for _, x := range xs {
		s.Mean += x
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	s.Mean /= float64(s.Count)
	if s.Count > 1 {
		for _, x := range xs {
			d := x - s.Mean
			s.Variance += d * d
		}
		s.Variance /= float64(s.Count - 1)
	}

	return s
}

// numericVariables lists, sorted, every key holding a finite number in records.
func numericVariables(records []dataset.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for name, v := range rec {
			if _, ok := v.Float(); ok {
				seen[name] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}
