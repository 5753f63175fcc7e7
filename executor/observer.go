package executor

import (
	"time"

	"github.com/nomis52/dagrun/dag"
)

// Observer receives notifications at well-defined points during a run.
// Implementations must be cheap and must not block; the executor invokes
// them synchronously on the run goroutine.
type Observer interface {
	// TaskStarted is invoked when a task transitions to running,
	// before its first attempt.
	TaskStarted(dagID, taskID string)

	// TaskRetried is invoked after a failed attempt that will be retried,
	// before the retry delay. attempt is 1-based.
	TaskRetried(dagID, taskID string, attempt int, err error)

	// TaskSucceeded is invoked when a task ends in success.
	TaskSucceeded(dagID, taskID string, duration time.Duration)

	// TaskFailed is invoked when a task exhausts its retries.
	TaskFailed(dagID, taskID string, attempts int, err error)

	// TaskSkipped is invoked when a task is passed over because an
	// upstream task did not succeed.
	TaskSkipped(dagID, taskID string)

	// RunFinished is invoked once per run with the recorded summary,
	// whether the run succeeded or halted.
	RunFinished(rec dag.RunRecord)
}

// NopObserver is an Observer that ignores every notification. It is the
// executor's default.
type NopObserver struct{}

func (NopObserver) TaskStarted(dagID, taskID string)                            {}
func (NopObserver) TaskRetried(dagID, taskID string, attempt int, err error)    {}
func (NopObserver) TaskSucceeded(dagID, taskID string, duration time.Duration)  {}
func (NopObserver) TaskFailed(dagID, taskID string, attempts int, err error)    {}
func (NopObserver) TaskSkipped(dagID, taskID string)                            {}
func (NopObserver) RunFinished(rec dag.RunRecord)                               {}
