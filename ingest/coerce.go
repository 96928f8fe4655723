// SPDX-License-Identifier: MIT

package ingest

import (
	"strconv"
	"strings"

	"github.com/katalvlaran/lvsynth/dataset"
)

// missingTokens are the cell spellings read as a missing value (case-insensitive).
var missingTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true, "-": true,
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(cell string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(cell))]
}

// ParseBool accepts strconv.ParseBool spellings plus yes/no, y/n and on/off.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))

	return b, err == nil
}

// ParseCell converts a raw cell into a Value of kind.
// ok is false when the cell is not a valid value of that kind.
func ParseCell(cell string, kind dataset.Kind) (v dataset.Value, ok bool) {
	if IsMissing(cell) {
		return dataset.Value{}, true
	}
	s := strings.TrimSpace(cell)
	switch kind {
	case dataset.KindNumeric:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return dataset.Value{}, false
		}
		return dataset.Numeric(f), true
	case dataset.KindBoolean:
		b, ok := ParseBool(s)
		if !ok {
			return dataset.Value{}, false
		}
		return dataset.Boolean(b), true
	case dataset.KindCategorical:
		return dataset.Categorical(s), true
	}

	return dataset.Value{}, false
}

// Coerce converts an already-typed value (e.g. decoded from JSON) to kind.
func Coerce(v dataset.Value, kind dataset.Kind) (dataset.Value, bool) {
	if v.IsMissing() || v.Kind() == kind {
		return v, true
	}
	switch kind {
	case dataset.KindCategorical:
		return dataset.Categorical(v.Label()), true
	case dataset.KindNumeric:
		if b, ok := v.Bool(); ok {
			if b {
				return dataset.Numeric(1), true
			}
			return dataset.Numeric(0), true
		}
	}

	return ParseCell(v.Label(), kind)
}

// inferKind picks the narrowest kind every non-missing cell parses as.
func inferKind(cells []string) dataset.Kind {
	numeric, boolean, seen := true, true, false
	for _, c := range cells {
		if IsMissing(c) {
			continue
		}
		seen = true
		if _, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err != nil {
			numeric = false
		}
		if _, ok := ParseBool(c); !ok {
			boolean = false
		}
	}
	switch {
	case !seen:
		return dataset.KindCategorical
	case numeric:
		return dataset.KindNumeric
	case boolean:
		return dataset.KindBoolean
	}

	return dataset.KindCategorical
}
