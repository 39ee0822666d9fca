package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/inspect-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "inspect.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestSQLite_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	insp := sampleInspection("1001", "AB1", model.OverallPass, at)
	require.NoError(t, s.SaveInspection(ctx, insp))
	require.NotEmpty(t, insp.ID)

	got, err := s.GetInspection(ctx, insp.ID)
	require.NoError(t, err)
	assert.Equal(t, insp.ID, got.ID)
	assert.Equal(t, "1001", got.Row.TrackID)
	assert.Equal(t, "OK", got.Grade.Value)
	assert.True(t, got.Passing)
	require.Len(t, got.Verdicts, 2)
	require.NotNil(t, got.Verdicts[0].Observed)
	assert.InDelta(t, 270.0, *got.Verdicts[0].Observed, 1e-9)
	assert.Nil(t, got.Verdicts[1].Observed)
	assert.True(t, got.CreatedAt.Equal(at))
}

func TestSQLite_SaveAssignsTimestamp(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	insp := sampleInspection("1001", "AB1", model.OverallPass, time.Time{})
	require.NoError(t, s.SaveInspection(ctx, insp))
	assert.False(t, insp.CreatedAt.IsZero())
}

func TestSQLite_SaveNil(t *testing.T) {
	s := newTestSQLite(t)
	assert.Error(t, s.SaveInspection(context.Background(), nil))
}

func TestSQLite_GetNotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetInspection(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	insp := sampleInspection("1001", "AB1", model.OverallPass, time.Now().UTC())
	require.NoError(t, s.SaveInspection(ctx, insp))

	dup := sampleInspection("1001", "AB1", model.OverallPass, time.Now().UTC())
	dup.ID = insp.ID
	err := s.SaveInspection(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite: insert inspection")
}

func TestSQLite_ListInspections(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveInspection(ctx, sampleInspection("1001", "AB1", model.OverallPass, base)))
	require.NoError(t, s.SaveInspection(ctx, sampleInspection("1002", "AB2", model.OverallFail, base.Add(time.Hour))))
	require.NoError(t, s.SaveInspection(ctx, sampleInspection("1001", "AB1", model.OverallFail, base.Add(2*time.Hour))))

	all, err := s.ListInspections(ctx, InspectionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.Equal(base.Add(2*time.Hour)), "newest first")
	assert.True(t, all[2].CreatedAt.Equal(base))

	byTrack, err := s.ListInspections(ctx, InspectionFilter{TrackID: "1001"})
	require.NoError(t, err)
	assert.Len(t, byTrack, 2)

	byJumbo, err := s.ListInspections(ctx, InspectionFilter{JumboID: "AB2"})
	require.NoError(t, err)
	require.Len(t, byJumbo, 1)
	assert.Equal(t, "1002", byJumbo[0].Row.TrackID)

	failed, err := s.ListInspections(ctx, InspectionFilter{Overall: model.OverallFail})
	require.NoError(t, err)
	assert.Len(t, failed, 2)

	page, err := s.ListInspections(ctx, InspectionFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.True(t, page[0].CreatedAt.Equal(base.Add(time.Hour)))

	none, err := s.ListInspections(ctx, InspectionFilter{TrackID: "9999"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
