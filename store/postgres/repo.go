// SPDX-License-Identifier: MIT

// Package postgres is the PostgreSQL store backend (pgx/v5 connection pool).
//
// The spec is stored as JSONB; IDs as UUID.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katalvlaran/lvsynth/store"
)

const createTable = `CREATE TABLE IF NOT EXISTS models (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	run_id     UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	score      DOUBLE PRECISION,
	spec       JSONB NOT NULL
)`

// Pool defaults applied when the DSN leaves them unset.
const (
	defaultMaxConns        = 10
	defaultMinConns        = 1
	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = 30 * time.Minute
)

// Repo implements store.Repository for PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	store.Register("postgres", New)
}

// New connects to cfg.DSN (URL or key=value form), pings and creates the table.
func New(ctx context.Context, cfg store.Config) (store.Repository, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if pc.MaxConns == 0 {
		pc.MaxConns = defaultMaxConns
	}
	if pc.MinConns == 0 {
		pc.MinConns = defaultMinConns
	}
	pc.MaxConnLifetime = defaultMaxConnLifetime
	pc.MaxConnIdleTime = defaultMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create models table: %w", err)
	}

	return &Repo{pool: pool}, nil
}

// Close closes the pool.
func (r *Repo) Close() { r.pool.Close() }

// Save upserts m.
func (r *Repo) Save(ctx context.Context, m *store.Model) error {
	m.Prepare(time.Now())
	spec, err := store.EncodeSpec(*m)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO models (id, name, run_id, created_at, score, spec)
		VALUES ($1::uuid, $2, $3::uuid, $4, $5, $6::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			run_id = EXCLUDED.run_id,
			created_at = EXCLUDED.created_at,
			score = EXCLUDED.score,
			spec = EXCLUDED.spec`,
		m.ID.String(), m.Name, m.RunID.String(), m.CreatedAt, m.Score, string(spec))
	if err != nil {
		return fmt.Errorf("postgres: save %s: %w", m.ID, err)
	}

	return nil
}

// Load returns the model with id.
func (r *Repo) Load(ctx context.Context, id uuid.UUID) (*store.Model, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, name, run_id::text, created_at, score, spec::text
		FROM models WHERE id = $1::uuid`, id.String())

	var spec string
	m, err := scan(row, &spec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s: %w", id, err)
	}
	if err := store.DecodeSpec(m, []byte(spec)); err != nil {
		return nil, err
	}

	return m, nil
}

// List returns model headers ordered by creation time.
func (r *Repo) List(ctx context.Context) ([]store.Model, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, run_id::text, created_at, score
		FROM models ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
	}
	defer rows.Close()

	var out []store.Model
	for rows.Next() {
		m, err := scan(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("postgres: list: %w", err)
		}
		out = append(out, *m)
	}

	return out, rows.Err()
}

// Delete removes the model with id.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM models WHERE id = $1::uuid`, id.String())
	if err != nil {
		return fmt.Errorf("postgres: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	return nil
}

func scan(row pgx.Row, spec *string) (*store.Model, error) {
	var (
		id, runID string
		m         store.Model
	)
	dest := []any{&id, &m.Name, &runID, &m.CreatedAt, &m.Score}
	if spec != nil {
		dest = append(dest, spec)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if m.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if m.RunID, err = uuid.Parse(runID); err != nil {
		return nil, err
	}

	return &m, nil
}
