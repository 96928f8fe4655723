// SPDX-License-Identifier: MIT

package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/katalvlaran/lvsynth/dataset"
)

// CSVOptions tweaks ReadCSV. The zero value reads comma-separated input.
type CSVOptions struct {
	Comma      rune
	LazyQuotes bool
	Source     string
}

// ReadCSV reads a header row and data rows into a Dataset.
//
// Behavior highlights:
//   - Header names are normalized; the schema keys are too.
//   - An empty schema is inferred from the data (numeric, then boolean,
//     otherwise categorical per column).
//   - Short rows are padded with missing values; long rows are an error.
//   - ctx is checked every 1024 rows.
//
// Errors:
//   - *dataset.InputError for an empty file, duplicate headers or a cell
//     that does not parse as its column kind (the message names the line).
func ReadCSV(ctx context.Context, r io.Reader, schema dataset.Schema, opt CSVOptions) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, dataset.NewInputError(dataset.MsgNoResponses)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: csv header: %w", err)
	}
	cols := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		cols[i] = dataset.NormalizeName(h)
		if seen[cols[i]] {
			return nil, dataset.FieldErrorf(cols[i], "duplicate column")
		}
		seen[cols[i]] = true
	}

	var rows [][]string
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: csv line %d: %w", line, err)
		}
		if len(rec) > len(cols) {
			return nil, dataset.NewInputError(fmt.Sprintf("line %d: %d fields, header has %d", line, len(rec), len(cols)))
		}
		rows = append(rows, rec)
	}

	if len(schema) == 0 {
		schema = inferSchema(cols, rows)
	} else {
		schema = schema.Normalized()
	}

	ds := &dataset.Dataset{
		Responses: make([]dataset.Record, 0, len(rows)),
		Schema:    schema,
		Metadata:  dataset.Metadata{SampleSize: len(rows), Source: opt.Source},
	}
	for i, row := range rows {
		rec := make(dataset.Record, len(cols))
		for j, cell := range row {
			spec, ok := schema[cols[j]]
			if !ok {
				continue
			}
			v, ok := ParseCell(cell, spec.Kind)
			if !ok {
				return nil, dataset.FieldErrorf(cols[j], "line %d: %q is not a valid %s value", i+2, cell, spec.Kind)
			}
			if !v.IsMissing() {
				rec[cols[j]] = v
			}
		}
		ds.Responses = append(ds.Responses, rec)
	}

	return ds, nil
}

func inferSchema(cols []string, rows [][]string) dataset.Schema {
	out := make(dataset.Schema, len(cols))
	cells := make([]string, 0, len(rows))
	for j, name := range cols {
		cells = cells[:0]
		for _, row := range rows {
			if j < len(row) {
				cells = append(cells, row[j])
			}
		}
		out[name] = dataset.FieldSpec{Kind: inferKind(cells)}
	}

	return out
}
