package dag

import "time"

// TaskResult records the outcome of one task within a run: the value the
// work function returned, or the error that exhausted its retries.
// Exactly one of the two fields is set.
type TaskResult struct {
	Value any
	Err   error
}

// RunContext is the mutable, run-scoped state shared by every task during a
// single execution of a Graph. A fresh RunContext is created per run and
// returned to the caller when the run ends; the core never persists it.
//
// Execution is strictly sequential, so no locking is needed within a run.
// Reusing a RunContext across runs would bleed results between them; the
// executor always builds a new one.
type RunContext struct {
	// DAGID identifies the Graph being run.
	DAGID string

	// ExecutionDate is when the run started.
	ExecutionDate time.Time

	// Results maps task id to that task's recorded outcome. Tasks that
	// were skipped or never reached have no entry.
	Results map[string]TaskResult

	values map[string]any
}

// NewRunContext creates a run context for the given graph, seeded with the
// caller's initial key/value pairs.
func NewRunContext(dagID string, initial map[string]any) *RunContext {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}

	return &RunContext{
		DAGID:         dagID,
		ExecutionDate: time.Now(),
		Results:       make(map[string]TaskResult),
		values:        values,
	}
}

// Set stores a key/value pair in the run-scoped store. Tasks use this to
// pass intermediate data to downstream tasks.
func (c *RunContext) Set(key string, value any) {
	c.values[key] = value
}

// Value returns the value stored under key and whether it was present.
func (c *RunContext) Value(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns the value stored under key as a string. Returns "" if the
// key is absent or the value is not a string.
func (c *RunContext) String(key string) string {
	if v, ok := c.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
