package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/facultytools/vitae/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "vitae.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSaveAndGetRecords(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	records := []model.RawRecord{
		{UserID: "u1", SectionID: "Publications", DataDetails: `{"title": "First"}`},
		{UserID: "u1", SectionID: "Publications", DataDetails: `{"title": "Second"}`},
	}
	require.NoError(t, store.SaveRecords(ctx, "u1", "Publications", records))

	got, err := store.GetRecords(ctx, []string{"u1"}, []string{"Publications"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, `{"title": "First"}`, got[0].DataDetails, "read order follows stored position")
	assert.Equal(t, `{"title": "Second"}`, got[1].DataDetails)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, "Publications", got[0].SectionID)
}

func TestSaveRecordsReplacesSnapshot(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecords(ctx, "u1", "Publications", []model.RawRecord{
		{UserID: "u1", SectionID: "Publications", DataDetails: `{"title": "Old"}`},
	}))
	require.NoError(t, store.SaveRecords(ctx, "u1", "Publications", []model.RawRecord{
		{UserID: "u1", SectionID: "Publications", DataDetails: `{"title": "New"}`},
	}))

	got, err := store.GetRecords(ctx, []string{"u1"}, []string{"Publications"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, `{"title": "New"}`, got[0].DataDetails)
}

func TestSaveRecordsEmptySnapshot(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	// A failed fetch caches as empty; that still records the snapshot time.
	require.NoError(t, store.SaveRecords(ctx, "u1", "Publications", nil))

	got, err := store.GetRecords(ctx, []string{"u1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	fetchedAt, err := store.GetSnapshotTime(ctx, "u1", "Publications")
	require.NoError(t, err)
	assert.False(t, fetchedAt.IsZero())
}

func TestGetRecordsFilters(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecords(ctx, "u1", "Publications", []model.RawRecord{
		{UserID: "u1", SectionID: "Publications", DataDetails: `{}`},
	}))
	require.NoError(t, store.SaveRecords(ctx, "u2", "Research Grants", []model.RawRecord{
		{UserID: "u2", SectionID: "Research Grants", DataDetails: `{}`},
	}))

	all, err := store.GetRecords(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyU1, err := store.GetRecords(ctx, []string{"u1"}, nil)
	require.NoError(t, err)
	require.Len(t, onlyU1, 1)
	assert.Equal(t, "u1", onlyU1[0].UserID)

	onlyGrants, err := store.GetRecords(ctx, nil, []string{"Research Grants"})
	require.NoError(t, err)
	require.Len(t, onlyGrants, 1)
	assert.Equal(t, "u2", onlyGrants[0].UserID)
}

func TestGetRecordCount(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	count, err := store.GetRecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.SaveRecords(ctx, "u1", "Publications", []model.RawRecord{
		{UserID: "u1", SectionID: "Publications", DataDetails: `{}`},
		{UserID: "u1", SectionID: "Publications", DataDetails: `{}`},
	}))

	count, err = store.GetRecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetSnapshotTimeMissing(t *testing.T) {
	store := testStorage(t)

	_, err := store.GetSnapshotTime(context.Background(), "nobody", "Publications")
	require.Error(t, err)
}

func TestSaveRecordsValidation(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	assert.Error(t, store.SaveRecords(ctx, "", "Publications", nil))
	assert.Error(t, store.SaveRecords(ctx, "u1", "  ", nil))
}
