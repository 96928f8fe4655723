// SPDX-License-Identifier: MIT

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/lvsynth/copula"
)

// ErrNotFound is returned by Load and Delete for an unknown model ID.
var ErrNotFound = errors.New("store: model not found")

// Model is one persisted joint distribution.
type Model struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	RunID     uuid.UUID   `json:"runId"`
	CreatedAt time.Time   `json:"createdAt"`
	Score     *float64    `json:"score,omitempty"`
	Spec      copula.Spec `json:"spec"`
}

// NewModel describes joint under name. ID and CreatedAt are assigned on Save.
func NewModel(name string, runID uuid.UUID, joint *copula.Joint) Model {
	return Model{Name: name, RunID: runID, Spec: joint.Spec()}
}

// Joint rebuilds the stored model.
func (m Model) Joint(opts ...copula.Option) (*copula.Joint, error) {
	return copula.FromSpec(m.Spec, opts...)
}

// Prepare fills ID and CreatedAt when unset. Backends call it from Save.
func (m *Model) Prepare(now time.Time) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now.UTC()
	}
}

// EncodeSpec returns the JSON column value of m.Spec.
func EncodeSpec(m Model) ([]byte, error) {
	b, err := json.Marshal(m.Spec)
	if err != nil {
		return nil, fmt.Errorf("store: encode spec %s: %w", m.ID, err)
	}

	return b, nil
}

// DecodeSpec parses a JSON column value into m.Spec.
func DecodeSpec(m *Model, raw []byte) error {
	if err := json.Unmarshal(raw, &m.Spec); err != nil {
		return fmt.Errorf("store: decode spec %s: %w", m.ID, err)
	}

	return nil
}
