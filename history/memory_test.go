package history

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/dagrun/dag"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	require.NotNil(t, store)

	// Should start with empty runs
	assert.Empty(t, store.Runs())
}

func TestMemoryStore_Save(t *testing.T) {
	store := NewMemoryStore()

	rec := dag.RunRecord{
		DAGID:          "etl",
		ExecutionDate:  time.Now(),
		Duration:       2 * time.Second,
		StepsSucceeded: 3,
	}

	err := store.Save(rec)
	require.NoError(t, err)

	runs := store.Runs()
	require.Len(t, runs, 1)

	// ID should have been populated
	rec.ID = rec.CalculateID()
	assert.Equal(t, rec, runs[0])
}

func TestMemoryStore_SaveMultiple(t *testing.T) {
	store := NewMemoryStore()

	now := time.Now()
	for i := 0; i < 5; i++ {
		rec := dag.RunRecord{
			DAGID:         "etl",
			ExecutionDate: now.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Save(rec))
	}

	runs := store.Runs()
	assert.Len(t, runs, 5)

	// Should be in reverse order (most recent first)
	for i := 0; i < len(runs)-1; i++ {
		assert.True(t, runs[i].ExecutionDate.After(runs[i+1].ExecutionDate))
	}
}

func TestMemoryStore_Runs_ReturnsCopy(t *testing.T) {
	store := NewMemoryStore()

	rec := dag.RunRecord{DAGID: "etl", ExecutionDate: time.Now()}
	require.NoError(t, store.Save(rec))

	runs1 := store.Runs()
	runs2 := store.Runs()
	require.Len(t, runs1, 1)
	require.Len(t, runs2, 1)

	// Modifying one shouldn't affect the other
	runs1[0].Error = "modified"
	assert.Empty(t, runs2[0].Error, "modifying one slice should not affect the other")
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	numGoroutines := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := dag.RunRecord{
				DAGID:         "etl",
				ExecutionDate: time.Now().Add(time.Duration(i) * time.Minute),
			}
			assert.NoError(t, store.Save(rec))
		}(i)
	}

	wg.Wait()
	assert.Len(t, store.Runs(), numGoroutines)
}
