package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/inspect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS inspections (
	id          TEXT PRIMARY KEY,
	query       TEXT NOT NULL DEFAULT '',
	track_id    TEXT NOT NULL DEFAULT '',
	jumbo_id    TEXT NOT NULL DEFAULT '',
	grade       TEXT NOT NULL,
	overall     TEXT NOT NULL,
	compliance  REAL NOT NULL DEFAULT 0,
	payload     TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_inspections_track_id ON inspections(track_id);
CREATE INDEX IF NOT EXISTS idx_inspections_jumbo_id ON inspections(jumbo_id);
CREATE INDEX IF NOT EXISTS idx_inspections_created_at ON inspections(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveInspection(ctx context.Context, insp *model.Inspection) error {
	payload, err := prepare(insp)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO inspections (id, query, track_id, jumbo_id, grade, overall, compliance, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		insp.ID, insp.Query, insp.Row.TrackID, insp.Row.JumboID, insp.Grade.Value,
		string(insp.Summary.Overall), insp.Summary.ComplianceRate, string(payload), insp.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert inspection")
	}
	return nil
}

func (s *SQLiteStore) GetInspection(ctx context.Context, id string) (*model.Inspection, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM inspections WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get inspection %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get inspection %s", id)
	}
	return decode([]byte(payload))
}

func (s *SQLiteStore) ListInspections(ctx context.Context, filter InspectionFilter) ([]model.Inspection, error) {
	query := `SELECT payload FROM inspections WHERE 1=1`
	var args []any

	if filter.TrackID != "" {
		query += ` AND track_id = ?`
		args = append(args, filter.TrackID)
	}
	if filter.JumboID != "" {
		query += ` AND jumbo_id = ?`
		args = append(args, filter.JumboID)
	}
	if filter.Overall != "" {
		query += ` AND overall = ?`
		args = append(args, string(filter.Overall))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limitOf(filter))
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list inspections")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Inspection
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan inspection")
		}
		insp, err := decode([]byte(payload))
		if err != nil {
			return nil, err
		}
		out = append(out, *insp)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate inspections")
}
