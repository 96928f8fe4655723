// SPDX-License-Identifier: MIT

// Package ingest turns CSV, JSON and YAML files into dataset values.
//
// Header and key names go through dataset.NormalizeName. Cells are coerced
// by the schema kind of their column; empty cells and the usual null
// spellings ("NA", "N/A", "null", "-") become missing values, which are
// simply absent from the record. Columns the schema does not declare are
// dropped. When no schema is supplied, ReadCSV infers one.
package ingest
