package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inspect-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS inspections`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveInspection(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	insp := sampleInspection("1001", "AB1", model.OverallPass, at)
	insp.ID = "insp-1"

	mock.ExpectExec(`INSERT INTO inspections`).
		WithArgs("insp-1", "1001", "1001", "AB1", "OK", "PASS", 100.0, pgxmock.AnyArg(), at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveInspection(context.Background(), insp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveInspection_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO inspections`).
		WillReturnError(errors.New("connection reset"))

	err := s.SaveInspection(context.Background(), sampleInspection("1", "J", model.OverallPass, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: insert inspection")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetInspection(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	insp := sampleInspection("1001", "AB1", model.OverallPass, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	insp.ID = "insp-1"
	payload, err := json.Marshal(insp)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload FROM inspections WHERE id = \$1`).
		WithArgs("insp-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := s.GetInspection(context.Background(), "insp-1")
	require.NoError(t, err)
	assert.Equal(t, "insp-1", got.ID)
	assert.Equal(t, "direct(Quality)", got.Grade.SourceStrategy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetInspection_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM inspections WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetInspection(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListInspections_Filters(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	insp := sampleInspection("1001", "AB1", model.OverallFail, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	payload, err := json.Marshal(insp)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload FROM inspections WHERE true AND track_id = \$1 AND overall = \$2 ORDER BY created_at DESC, id LIMIT \$3 OFFSET \$4`).
		WithArgs("1001", "FAIL", 5, 10).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := s.ListInspections(context.Background(), InspectionFilter{
		TrackID: "1001",
		Overall: model.OverallFail,
		Limit:   5,
		Offset:  10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.OverallFail, got[0].Summary.Overall)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListInspections_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM inspections WHERE true ORDER BY created_at DESC, id LIMIT \$1`).
		WithArgs(DefaultListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}))

	got, err := s.ListInspections(context.Background(), InspectionFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListInspections_BadPayload(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM inspections`).
		WithArgs(DefaultListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte("{not json")))

	_, err := s.ListInspections(context.Background(), InspectionFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal inspection")
}

func TestPostgresStore_CloseWithoutPool(t *testing.T) {
	s := &PostgresStore{}
	assert.NoError(t, s.Close())
}
