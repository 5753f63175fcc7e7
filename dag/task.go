package dag

import "time"

// WorkFn is the unit of behavior a Task wraps. It receives the run-scoped
// context and returns a result value, or an error to signal failure.
//
// All functionality surrounding the core — file I/O, API calls, database
// writes — is supplied by the caller as WorkFn implementations. The core
// never interprets the returned value; it only records it.
type WorkFn func(ctx *RunContext) (any, error)

// Worker is a single-method capability for callers that prefer to express
// work as a struct rather than a closure.
type Worker interface {
	// Execute performs the work. Return the result value, or an error
	// describing the failure.
	Execute(ctx *RunContext) (any, error)
}

// Work adapts a Worker into a WorkFn.
func Work(w Worker) WorkFn {
	return func(ctx *RunContext) (any, error) {
		return w.Execute(ctx)
	}
}

// Task is a named unit of work with a retry policy and mutable run state.
//
// A Task belongs to exactly one Graph, which owns its lifetime. The
// upstream/downstream lists hold task ids rather than task pointers, so
// the mutual back-references never form ownership cycles; the Graph's task
// map provides O(1) resolution of an id to its Task.
//
// The configuration fields (id, work, retry policy, adjacency) are fixed
// before the first run and immutable during execution. The run state fields
// (Status, StartedAt, EndedAt, Result, LastError) are overwritten on every
// run; only the latest run's state is retained on the Task itself, with
// per-run summaries kept in the Graph's history.
type Task struct {
	id         string
	work       WorkFn
	retries    int
	retryDelay time.Duration

	upstream   []string
	downstream []string

	// Status is the task's state within the latest run.
	Status Status

	// StartedAt and EndedAt are set once the task begins/ends execution.
	// Nil if the task has not reached that point in the current run.
	StartedAt *time.Time
	EndedAt   *time.Time

	// Result holds the value returned by the work function on success.
	Result any

	// LastError holds the error from the most recent failed attempt.
	LastError error
}

// TaskOption configures a Task.
type TaskOption func(*Task)

// WithRetries sets the maximum number of attempts. Values below 1 are
// treated as 1 (every task gets at least one attempt).
func WithRetries(retries int) TaskOption {
	return func(t *Task) {
		if retries < 1 {
			retries = 1
		}
		t.retries = retries
	}
}

// WithRetryDelay sets the fixed wait between attempts. The delay is a flat
// per-attempt policy; callers wanting backoff can apply their own schedule
// inside the work function or wrap the executor's sleep hook.
func WithRetryDelay(delay time.Duration) TaskOption {
	return func(t *Task) {
		t.retryDelay = delay
	}
}

// NewTask creates a task with the given id and work function.
// By default a task runs at most once with no retry delay.
func NewTask(id string, work WorkFn, opts ...TaskOption) *Task {
	t := &Task{
		id:      id,
		work:    work,
		retries: 1,
		Status:  StatusPending,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// ID returns the task's identifier, unique within its owning Graph.
func (t *Task) ID() string {
	return t.id
}

// Retries returns the maximum number of attempts.
func (t *Task) Retries() int {
	return t.retries
}

// RetryDelay returns the fixed wait between attempts.
func (t *Task) RetryDelay() time.Duration {
	return t.retryDelay
}

// Work returns the task's work function.
func (t *Task) Work() WorkFn {
	return t.work
}

// Upstream returns the ids of the tasks this task depends on.
// The returned slice is a copy.
func (t *Task) Upstream() []string {
	out := make([]string, len(t.upstream))
	copy(out, t.upstream)
	return out
}

// Downstream returns the ids of the tasks that depend on this task.
// The returned slice is a copy.
func (t *Task) Downstream() []string {
	out := make([]string, len(t.downstream))
	copy(out, t.downstream)
	return out
}

// AddUpstream records other as an upstream dependency of this task,
// updating both tasks' adjacency lists symmetrically. Both tasks must
// belong to the same Graph; dependencies are wired before the first run
// and must not be changed during execution.
func (t *Task) AddUpstream(other *Task) {
	t.upstream = append(t.upstream, other.id)
	other.downstream = append(other.downstream, t.id)
}

// Reset clears the task's run state back to pending. The executor calls
// this at the start of every run so a Graph can be run repeatedly.
func (t *Task) Reset() {
	t.Status = StatusPending
	t.StartedAt = nil
	t.EndedAt = nil
	t.Result = nil
	t.LastError = nil
}

// Duration returns how long the task ran in the latest run, or zero if the
// task has not both started and ended.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.EndedAt == nil {
		return 0
	}
	return t.EndedAt.Sub(*t.StartedAt)
}
