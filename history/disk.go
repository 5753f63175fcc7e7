package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nomis52/dagrun/dag"
)

// DiskStore persists run records to disk as JSON files, one file per run.
type DiskStore struct {
	dir      string
	logger   *slog.Logger
	maxCount int

	runs []dag.RunRecord // protected by mu
	mu   sync.Mutex
}

// NewDiskStore creates a new disk-backed store.
// The directory is created if it doesn't exist, and existing runs are loaded.
func NewDiskStore(dir string, maxCount int, logger *slog.Logger) (*DiskStore, error) {
	s := &DiskStore{
		dir:      dir,
		logger:   logger,
		maxCount: maxCount,
		runs:     make([]dag.RunRecord, 0),
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	runs, err := s.load()
	if err != nil {
		logger.Warn("failed to load existing runs", "error", err)
		// Continue without existing data
	} else {
		s.runs = runs
	}

	return s, nil
}

// Runs returns all recorded runs, most recent first.
// The returned slice is a copy.
func (s *DiskStore) Runs() []dag.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]dag.RunRecord, len(s.runs))
	copy(result, s.runs)
	return result
}

// Save persists a run record to disk and updates the in-memory view.
func (s *DiskStore) Save(rec dag.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ExecutionDate.IsZero() {
		return fmt.Errorf("cannot save run without execution date")
	}
	if rec.ID == "" {
		rec.ID = rec.CalculateID()
	}

	// Timestamp filename keeps directory listings chronological.
	filename := rec.ExecutionDate.Format("2006-01-02T15-04-05.000000000") + ".json"
	path := filepath.Join(s.dir, filename)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}

	// Prepend to keep most recent first
	s.runs = append([]dag.RunRecord{rec}, s.runs...)

	// Enforce max count limit
	if len(s.runs) > s.maxCount {
		s.runs = s.runs[:s.maxCount]
	}

	s.logger.Debug("saved run record", "path", path, "run_id", rec.ID)
	return nil
}

// Reload re-loads all runs from disk.
func (s *DiskStore) Reload() error {
	runs, err := s.load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = runs

	return nil
}

// load reads all run files from the history directory.
func (s *DiskStore) load() ([]dag.RunRecord, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	runs := make([]dag.RunRecord, 0, len(files))
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}

		path := filepath.Join(s.dir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("failed to read run file", "file", path, "error", err)
			continue
		}

		var rec dag.RunRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			s.logger.Warn("failed to parse run file", "file", path, "error", err)
			continue
		}

		if rec.ID == "" {
			rec.ID = rec.CalculateID()
		}

		runs = append(runs, rec)
	}

	// Most recent first
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ExecutionDate.After(runs[j].ExecutionDate)
	})

	if len(runs) > s.maxCount {
		runs = runs[:s.maxCount]
	}

	s.logger.Info("loaded run history", "count", len(runs))
	return runs, nil
}
