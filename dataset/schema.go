// SPDX-License-Identifier: MIT

package dataset

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FieldSpec describes one variable. Min/Max bound numeric values when set;
// Categories lists the admissible labels of a categorical field (empty means
// "whatever appears in the data").
type FieldSpec struct {
	Kind       Kind     `json:"type" yaml:"type"`
	Min        *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Clamp limits f to the field bounds.
func (fs FieldSpec) Clamp(f float64) float64 {
	if fs.Min != nil && f < *fs.Min {
		f = *fs.Min
	}
	if fs.Max != nil && f > *fs.Max {
		f = *fs.Max
	}

	return f
}

// Schema maps a variable name to its spec.
type Schema map[string]FieldSpec

// Names returns every variable name, sorted.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

// FieldsOf returns the sorted names whose Kind is one of kinds.
func (s Schema) FieldsOf(kinds ...Kind) []string {
	var out []string
	for _, name := range s.Names() {
		for _, k := range kinds {
			if s[name].Kind == k {
				out = append(out, name)
				break
			}
		}
	}

	return out
}

// NumericFields returns the sorted numeric variable names.
func (s Schema) NumericFields() []string { return s.FieldsOf(KindNumeric) }

// NormalizeName canonicalises a variable name coming from a file header or
// a schema key: surrounding space is trimmed and the text is put in Unicode
// NFC so that visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Normalized returns a copy of s with every key passed through NormalizeName.
func (s Schema) Normalized() Schema {
	out := make(Schema, len(s))
	for name, spec := range s {
		out[NormalizeName(name)] = spec
	}

	return out
}
