package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/inspect-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock pools satisfy it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS inspections (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	query       TEXT NOT NULL DEFAULT '',
	track_id    TEXT NOT NULL DEFAULT '',
	jumbo_id    TEXT NOT NULL DEFAULT '',
	grade       TEXT NOT NULL,
	overall     TEXT NOT NULL,
	compliance  DOUBLE PRECISION NOT NULL DEFAULT 0,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_inspections_track_id ON inspections(track_id);
CREATE INDEX IF NOT EXISTS idx_inspections_jumbo_id ON inspections(jumbo_id);
CREATE INDEX IF NOT EXISTS idx_inspections_created_at ON inspections(created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveInspection(ctx context.Context, insp *model.Inspection) error {
	payload, err := prepare(insp)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO inspections (id, query, track_id, jumbo_id, grade, overall, compliance, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		insp.ID, insp.Query, insp.Row.TrackID, insp.Row.JumboID, insp.Grade.Value,
		string(insp.Summary.Overall), insp.Summary.ComplianceRate, payload, insp.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert inspection")
	}
	return nil
}

func (s *PostgresStore) GetInspection(ctx context.Context, id string) (*model.Inspection, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM inspections WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get inspection %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get inspection %s", id)
	}
	return decode(payload)
}

func (s *PostgresStore) ListInspections(ctx context.Context, filter InspectionFilter) ([]model.Inspection, error) {
	query := `SELECT payload FROM inspections WHERE true`
	args := []any{}
	argIdx := 1

	if filter.TrackID != "" {
		query += fmt.Sprintf(` AND track_id = $%d`, argIdx)
		args = append(args, filter.TrackID)
		argIdx++
	}
	if filter.JumboID != "" {
		query += fmt.Sprintf(` AND jumbo_id = $%d`, argIdx)
		args = append(args, filter.JumboID)
		argIdx++
	}
	if filter.Overall != "" {
		query += fmt.Sprintf(` AND overall = $%d`, argIdx)
		args = append(args, string(filter.Overall))
		argIdx++
	}
	query += ` ORDER BY created_at DESC, id`

	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limitOf(filter))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list inspections")
	}
	defer rows.Close()

	var out []model.Inspection
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan inspection")
		}
		insp, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, *insp)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate inspections")
}
