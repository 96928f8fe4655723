// SPDX-License-Identifier: MIT

package dataset

import (
	"math"
	"sort"
)

// Metadata carries optional provenance of a batch.
type Metadata struct {
	SampleSize int    `json:"sampleSize,omitempty" yaml:"sampleSize,omitempty"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Dataset is a fixed in-memory batch of survey responses.
type Dataset struct {
	Responses []Record `json:"responses"`
	Schema    Schema   `json:"schema"`
	Metadata  Metadata `json:"metadata"`
}

// Validate checks the batch invariants: at least one response, a non-empty
// schema, and every record key declared in the schema.
// Unknown keys are reported for the lowest record index, then by name.
func (d *Dataset) Validate() error {
	if len(d.Responses) == 0 {
		return NewInputError(MsgNoResponses)
	}
	if len(d.Schema) == 0 {
		return NewInputError(MsgNoSchema)
	}
	for i, rec := range d.Responses {
		var unknown []string
		for key := range rec {
			if _, ok := d.Schema[key]; !ok {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return FieldErrorf(unknown[0], "record %d: field not declared in schema", i)
		}
	}

	return nil
}

// Column extracts variable name from records. Entries that are missing,
// non-numeric or non-finite are NaN so that indices stay aligned with records.
func Column(records []Record, name string) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		if f, ok := rec[name].Float(); ok {
			out[i] = f
			continue
		}
		out[i] = math.NaN()
	}

	return out
}

// Finite returns the finite entries of xs in their original order.
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}

	return out
}

// Labels extracts the non-missing categorical or boolean labels of name.
func Labels(records []Record, name string) []Value {
	out := make([]Value, 0, len(records))
	for _, rec := range records {
		v := rec[name]
		if v.Kind() == KindCategorical || v.Kind() == KindBoolean {
			out = append(out, v)
		}
	}

	return out
}

// Split partitions records into a head of len(records)-holdout and a tail
// of holdout records, where holdout = floor(fraction*len). The order is kept.
// fraction outside [0,1) yields no holdout.
func Split(records []Record, fraction float64) (fit, holdout []Record) {
	if !(fraction > 0 && fraction < 1) {
		return records, nil
	}
	n := int(math.Floor(fraction * float64(len(records))))
	cut := len(records) - n

	return records[:cut], records[cut:]
}
