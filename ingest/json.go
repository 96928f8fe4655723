// SPDX-License-Identifier: MIT

package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvsynth/dataset"
)

// ReadJSON decodes either a dataset document
//
//	{"responses": [...], "schema": {...}, "metadata": {...}}
//
// or a bare array of response objects. schema, when non-empty, overrides
// the document's schema; a bare array needs one. Values are coerced to
// their schema kind and keys normalized; undeclared keys are dropped.
func ReadJSON(r io.Reader, schema dataset.Schema) (*dataset.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: read json: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, dataset.NewInputError(dataset.MsgNoResponses)
	}

	var ds dataset.Dataset
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &ds.Responses); err != nil {
			return nil, fmt.Errorf("ingest: decode json records: %w", err)
		}
	} else if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("ingest: decode json dataset: %w", err)
	}
	if len(schema) > 0 {
		ds.Schema = schema
	}
	if len(ds.Schema) == 0 {
		return nil, dataset.NewInputError(dataset.MsgNoSchema)
	}
	ds.Schema = ds.Schema.Normalized()
	if ds.Metadata.SampleSize == 0 {
		ds.Metadata.SampleSize = len(ds.Responses)
	}

	for i, rec := range ds.Responses {
		out := make(dataset.Record, len(rec))
		for key, v := range rec {
			name := dataset.NormalizeName(key)
			spec, ok := ds.Schema[name]
			if !ok {
				continue
			}
			cv, ok := Coerce(v, spec.Kind)
			if !ok {
				return nil, dataset.FieldErrorf(name, "record %d: %s is not a valid %s value", i, v, spec.Kind)
			}
			if !cv.IsMissing() {
				out[name] = cv
			}
		}
		ds.Responses[i] = out
	}

	return &ds, nil
}

// ReadSchema decodes a YAML (or JSON) schema document:
//
//	age:    {type: numeric, min: 0, max: 120}
//	region: {type: categorical, categories: [north, south]}
//	member: {type: boolean}
func ReadSchema(r io.Reader) (dataset.Schema, error) {
	var s dataset.Schema
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if err == io.EOF {
			return nil, dataset.NewInputError(dataset.MsgNoSchema)
		}
		return nil, fmt.Errorf("ingest: decode schema: %w", err)
	}
	if len(s) == 0 {
		return nil, dataset.NewInputError(dataset.MsgNoSchema)
	}
	for _, name := range s.Names() {
		if s[name].Kind == dataset.KindMissing {
			return nil, dataset.FieldErrorf(name, "type required")
		}
	}

	return s.Normalized(), nil
}
