// SPDX-License-Identifier: MIT

package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind tags a Value and a FieldSpec.
type Kind uint8

const (
	// KindMissing is the zero Kind: no observation.
	KindMissing Kind = iota
	KindNumeric
	KindCategorical
	KindBoolean
)

var kindNames = [...]string{
	KindMissing:     "missing",
	KindNumeric:     "numeric",
	KindCategorical: "categorical",
	KindBoolean:     "boolean",
}

// String returns the lower-case tag used in schema files.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind accepts the schema tags "numeric", "categorical" and "boolean"
// (plus the aliases "number", "category" and "bool").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "numeric", "number":
		return KindNumeric, nil
	case "categorical", "category":
		return KindCategorical, nil
	case "boolean", "bool":
		return KindBoolean, nil
	}

	return KindMissing, fmt.Errorf("dataset: unknown field kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed

	return nil
}

// Value is one observation of one variable. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// Numeric wraps f. NaN and ±Inf are kept; numeric consumers filter them.
func Numeric(f float64) Value { return Value{kind: KindNumeric, num: f} }

// Categorical wraps a category label.
func Categorical(s string) Value { return Value{kind: KindCategorical, str: s} }

// Boolean wraps b.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v carries no observation.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric payload. ok is false for non-numeric variants
// and for NaN/±Inf.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindNumeric || math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return 0, false
	}

	return v.num, true
}

// Text returns the category label.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindCategorical
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBoolean
}

// Label renders categorical and boolean values as the key used by
// frequency tables ("true"/"false" for booleans).
func (v Value) Label() string {
	switch v.kind {
	case KindCategorical:
		return v.str
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}

	return ""
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindMissing {
		return "<missing>"
	}

	return v.Label()
}

// MarshalJSON encodes the payload as a JSON number, string, bool or null.
// Non-finite numbers become null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumeric:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindCategorical:
		return json.Marshal(v.str)
	case KindBoolean:
		return json.Marshal(v.b)
	}

	return []byte("null"), nil
}

// UnmarshalJSON infers the variant from the JSON token type.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Categorical(s)
	case 't', 'f':
		var x bool
		if err := json.Unmarshal(b, &x); err != nil {
			return err
		}
		*v = Boolean(x)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("dataset: value %s: %w", b, err)
		}
		*v = Numeric(f)
	}

	return nil
}

// Record is one survey response.
type Record map[string]Value
