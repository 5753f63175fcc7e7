package dag

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// RunRecord summarizes one run of a Graph. Records are appended to the
// graph's execution history and may additionally be persisted by a
// history.Store; the core itself never serializes them.
type RunRecord struct {
	// ID uniquely identifies the run. Populated via CalculateID when empty.
	ID string `json:"id"`

	// DAGID is the id of the Graph that ran.
	DAGID string `json:"dag_id"`

	// ExecutionDate is when the run started.
	ExecutionDate time.Time `json:"execution_date"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// TaskStatus snapshots the final status of every task in the computed
	// execution order, including tasks left pending by an early halt.
	TaskStatus map[string]Status `json:"task_status"`

	// StepsSucceeded, StepsFailed and StepsSkipped count final task statuses.
	StepsSucceeded int `json:"steps_succeeded"`
	StepsFailed    int `json:"steps_failed"`
	StepsSkipped   int `json:"steps_skipped"`

	// Error holds the message of the error that halted the run, if any.
	Error string `json:"error,omitempty"`
}

// CalculateID derives a stable run identifier from the dag id and the
// execution date.
func (r RunRecord) CalculateID() string {
	sum := sha1.Sum([]byte(r.DAGID + "@" + r.ExecutionDate.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:8])
}
