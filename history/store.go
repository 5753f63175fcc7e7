// Package history persists run records outside the graph's in-memory
// execution history.
//
// The core never serializes run records itself; a Store is an optional
// sink the executor writes to after every run. MemoryStore keeps records
// for the lifetime of the process, DiskStore writes one JSON file per run.
// Graph definitions are never persisted — only run outcomes.
package history

import "github.com/nomis52/dagrun/dag"

// Store manages persistence of run records.
type Store interface {
	// Runs returns all recorded runs, most recent first.
	Runs() []dag.RunRecord

	// Save persists a run record.
	Save(dag.RunRecord) error
}
