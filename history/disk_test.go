package history

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/dagrun/dag"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewDiskStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")

	store, err := NewDiskStore(dir, 10, testLogger())
	require.NoError(t, err)
	require.NotNil(t, store)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Empty(t, store.Runs())
}

func TestDiskStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	store, err := NewDiskStore(dir, 10, testLogger())
	require.NoError(t, err)

	rec := dag.RunRecord{
		DAGID:         "daily_sales_etl",
		ExecutionDate: time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC),
		Duration:      90 * time.Second,
		TaskStatus: map[string]dag.Status{
			"extract": dag.StatusSuccess,
			"load":    dag.StatusFailed,
		},
		StepsSucceeded: 1,
		StepsFailed:    1,
		Error:          "task load failed after 2 attempt(s): boom",
	}
	require.NoError(t, store.Save(rec))

	// A fresh store over the same directory must see the saved run.
	reopened, err := NewDiskStore(dir, 10, testLogger())
	require.NoError(t, err)

	runs := reopened.Runs()
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, rec.DAGID, got.DAGID)
	assert.True(t, rec.ExecutionDate.Equal(got.ExecutionDate))
	assert.Equal(t, rec.Duration, got.Duration)
	assert.Equal(t, rec.TaskStatus, got.TaskStatus)
	assert.Equal(t, rec.Error, got.Error)
	assert.NotEmpty(t, got.ID)
}

func TestDiskStore_Save_RequiresExecutionDate(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 10, testLogger())
	require.NoError(t, err)

	err = store.Save(dag.RunRecord{DAGID: "etl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution date")
}

func TestDiskStore_MostRecentFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, 10, testLogger())
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := dag.RunRecord{
			DAGID:         "etl",
			ExecutionDate: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Save(rec))
	}

	runs := store.Runs()
	require.Len(t, runs, 3)
	for i := 0; i < len(runs)-1; i++ {
		assert.True(t, runs[i].ExecutionDate.After(runs[i+1].ExecutionDate))
	}

	// Reload from disk and check the ordering survives.
	require.NoError(t, store.Reload())
	runs = store.Runs()
	require.Len(t, runs, 3)
	assert.True(t, runs[0].ExecutionDate.After(runs[2].ExecutionDate))
}

func TestDiskStore_EnforcesMaxCount(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, 2, testLogger())
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		rec := dag.RunRecord{
			DAGID:         "etl",
			ExecutionDate: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Save(rec))
	}

	runs := store.Runs()
	require.Len(t, runs, 2)
	assert.True(t, runs[0].ExecutionDate.Equal(base.Add(3*time.Hour)), "newest run kept")
}

func TestDiskStore_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bogus.json"), []byte("not json"), 0644))

	store, err := NewDiskStore(dir, 10, testLogger())
	require.NoError(t, err)
	assert.Empty(t, store.Runs(), "corrupt files are skipped, not fatal")
}
