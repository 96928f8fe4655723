// SPDX-License-Identifier: MIT

// Package dataset defines the in-memory survey batch that every lvsynth
// stage consumes: a tagged Value variant, Records keyed by variable name,
// a Schema describing each variable and the InputError taxonomy raised when
// a batch cannot be analysed.
//
// Values are a closed variant (Numeric | Categorical | Boolean, plus the
// zero "missing" value), so numeric code asks Float() and skips anything
// else instead of type-switching on interface{}.
//
// Ordering: Schema is a map, and every function that needs a stable variable
// order (NumericFields, Names) returns names sorted lexically. Downstream
// packages treat that as the schema order.
package dataset
