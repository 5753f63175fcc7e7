package history

import (
	"sync"

	"github.com/nomis52/dagrun/dag"
)

// MemoryStore keeps run records in memory only (no persistence).
type MemoryStore struct {
	runs []dag.RunRecord
	mu   sync.Mutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make([]dag.RunRecord, 0),
	}
}

// Runs returns all recorded runs, most recent first.
// The returned slice is a copy.
func (s *MemoryStore) Runs() []dag.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]dag.RunRecord, len(s.runs))
	copy(result, s.runs)
	return result
}

// Save stores a run record in memory.
func (s *MemoryStore) Save(rec dag.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure ID is populated
	if rec.ID == "" {
		rec.ID = rec.CalculateID()
	}

	// Prepend to keep most recent first
	s.runs = append([]dag.RunRecord{rec}, s.runs...)
	return nil
}
