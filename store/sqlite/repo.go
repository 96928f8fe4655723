// SPDX-License-Identifier: MIT

// Package sqlite is the SQLite store backend (pure Go, modernc.org/sqlite).
//
// Timestamps are stored as fixed-width UTC text (so they sort lexically) and
// the spec as JSON text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/katalvlaran/lvsynth/store"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const createTable = `CREATE TABLE IF NOT EXISTS models (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	run_id     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	score      REAL,
	spec       TEXT NOT NULL
)`

// Repo implements store.Repository for SQLite.
type Repo struct {
	db *sql.DB
}

func init() {
	store.Register("sqlite", New)
}

// New opens dsn and creates the models table. A single connection is kept,
// so ":memory:" databases behave as one database.
func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create models table: %w", err)
	}

	return &Repo{db: db}, nil
}

// Close closes the database.
func (r *Repo) Close() { _ = r.db.Close() }

// Save upserts m.
func (r *Repo) Save(ctx context.Context, m *store.Model) error {
	m.Prepare(time.Now())
	spec, err := store.EncodeSpec(*m)
	if err != nil {
		return err
	}
	var score sql.NullFloat64
	if m.Score != nil {
		score = sql.NullFloat64{Float64: *m.Score, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO models (id, name, run_id, created_at, score, spec) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.Name, m.RunID.String(), m.CreatedAt.UTC().Format(timeLayout), score, string(spec))
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", m.ID, err)
	}

	return nil
}

// Load returns the model with id.
func (r *Repo) Load(ctx context.Context, id uuid.UUID) (*store.Model, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, run_id, created_at, score, spec FROM models WHERE id = ?`, id.String())

	var spec string
	m, err := scan(row.Scan, &spec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", id, err)
	}
	if err := store.DecodeSpec(m, []byte(spec)); err != nil {
		return nil, err
	}

	return m, nil
}

// List returns model headers ordered by creation time.
func (r *Repo) List(ctx context.Context) ([]store.Model, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, run_id, created_at, score FROM models ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var out []store.Model
	for rows.Next() {
		m, err := scan(rows.Scan, nil)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list: %w", err)
		}
		out = append(out, *m)
	}

	return out, rows.Err()
}

// Delete removes the model with id.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	return nil
}

// scan reads the header columns, plus the spec column when spec is non-nil.
func scan(fn func(dest ...any) error, spec *string) (*store.Model, error) {
	var (
		id, runID, created string
		score              sql.NullFloat64
		m                  store.Model
	)
	dest := []any{&id, &m.Name, &runID, &created, &score}
	if spec != nil {
		dest = append(dest, spec)
	}
	if err := fn(dest...); err != nil {
		return nil, err
	}

	var err error
	if m.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if m.RunID, err = uuid.Parse(runID); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, err
	}
	if score.Valid {
		v := score.Float64
		m.Score = &v
	}

	return &m, nil
}
