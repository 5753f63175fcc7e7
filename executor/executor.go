package executor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nomis52/dagrun/dag"
	"github.com/nomis52/dagrun/history"
)

// Executor orchestrates runs of a dag.Graph.
// A zero-option executor logs to slog.Default and observes nothing.
type Executor struct {
	logger   *slog.Logger
	observer Observer
	store    history.Store
	sleep    func(time.Duration)
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets a custom logger for the executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger.With("component", "executor")
	}
}

// WithObserver sets the observer notified of task and run lifecycle events.
func WithObserver(obs Observer) Option {
	return func(e *Executor) {
		e.observer = obs
	}
}

// WithStore sets a history store; every run record is saved to it in
// addition to being appended to the graph's in-memory history.
func WithStore(store history.Store) Option {
	return func(e *Executor) {
		e.store = store
	}
}

// WithSleep replaces the wait used between retry attempts.
// Tests use this to run retry scenarios without real delays.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Executor) {
		e.sleep = sleep
	}
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		logger:   slog.Default().With("component", "executor"),
		observer: NopObserver{},
		sleep:    time.Sleep,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes one run of the graph.
//
// The graph is validated first; an invalid graph fails immediately with no
// task executed and no history recorded. Otherwise every task reachable
// from the roots is driven through its retry state machine in topological
// order, gated on all upstream tasks having succeeded.
//
// Run always returns the RunContext, including the results accumulated
// before any failure. The error is the graph validation error, or the
// *TaskError that halted the run.
func (e *Executor) Run(g *dag.Graph, initial map[string]any) (*dag.RunContext, error) {
	if err := g.Validate(); err != nil {
		e.logger.Error("graph validation failed", "dag_id", g.ID(), "error", err)
		return nil, fmt.Errorf("validating graph %s: %w", g.ID(), err)
	}

	runCtx := dag.NewRunContext(g.ID(), initial)
	order := g.ExecutionOrder()

	// Fresh run state for every task, including any left out of the order.
	for _, t := range g.Tasks() {
		t.Reset()
	}

	runLogger := e.logger.With("dag_id", g.ID())
	runLogger.Info("starting run", "task_count", len(order))

	start := time.Now()
	var runErr error

	for _, t := range order {
		if !upstreamSucceeded(g, t) {
			t.Status = dag.StatusSkipped
			runLogger.Warn("skipping task, upstream not successful", "task_id", t.ID())
			e.observer.TaskSkipped(g.ID(), t.ID())
			continue
		}

		result, err := e.runTask(runCtx, g.ID(), t, runLogger)
		if err != nil {
			runCtx.Results[t.ID()] = dag.TaskResult{Err: err}
			runErr = err
			// Halt the whole run. Tasks later in the order stay pending:
			// the stop is immediate and global, not branch-scoped.
			runLogger.Error("run halted by task failure", "task_id", t.ID(), "error", err)
			break
		}

		runCtx.Results[t.ID()] = dag.TaskResult{Value: result}
	}

	rec := buildRecord(g, runCtx, order, time.Since(start), runErr)
	g.RecordRun(rec)
	if e.store != nil {
		if err := e.store.Save(rec); err != nil {
			runLogger.Error("failed to save run record", "run_id", rec.ID, "error", err)
		}
	}
	e.observer.RunFinished(rec)

	if runErr != nil {
		return runCtx, runErr
	}

	runLogger.Info("run completed",
		"duration", rec.Duration,
		"succeeded", rec.StepsSucceeded,
		"skipped", rec.StepsSkipped,
	)
	return runCtx, nil
}

// runTask drives a single task through its retry state machine.
func (e *Executor) runTask(runCtx *dag.RunContext, dagID string, t *dag.Task, logger *slog.Logger) (any, error) {
	taskLogger := logger.With("task_id", t.ID())

	t.Status = dag.StatusRunning
	now := time.Now()
	t.StartedAt = &now

	taskLogger.Info("starting task", "retries", t.Retries())
	e.observer.TaskStarted(dagID, t.ID())

	work := t.Work()
	for attempt := 1; attempt <= t.Retries(); attempt++ {
		result, err := work(runCtx)
		if err == nil {
			end := time.Now()
			t.EndedAt = &end
			t.Status = dag.StatusSuccess
			t.Result = result

			taskLogger.Info("task completed", "attempt", attempt, "duration", t.Duration())
			e.observer.TaskSucceeded(dagID, t.ID(), t.Duration())
			return result, nil
		}

		t.LastError = err
		if attempt < t.Retries() {
			taskLogger.Warn("task attempt failed, retrying",
				"attempt", attempt,
				"retries", t.Retries(),
				"retry_delay", t.RetryDelay(),
				"error", err,
			)
			e.observer.TaskRetried(dagID, t.ID(), attempt, err)
			e.sleep(t.RetryDelay())
		}
	}

	end := time.Now()
	t.EndedAt = &end
	t.Status = dag.StatusFailed

	taskErr := &TaskError{TaskID: t.ID(), Attempts: t.Retries(), Err: t.LastError}
	taskLogger.Error("task failed", "attempts", t.Retries(), "error", t.LastError)
	e.observer.TaskFailed(dagID, t.ID(), t.Retries(), t.LastError)
	return nil, taskErr
}

// upstreamSucceeded reports whether the task is clear to run: either it has
// no upstream dependencies, or every one of them ended in success.
func upstreamSucceeded(g *dag.Graph, t *dag.Task) bool {
	for _, upID := range t.Upstream() {
		up, ok := g.Task(upID)
		if !ok || up.Status != dag.StatusSuccess {
			return false
		}
	}
	return true
}

// buildRecord snapshots the run into a history record.
func buildRecord(g *dag.Graph, runCtx *dag.RunContext, order []*dag.Task, duration time.Duration, runErr error) dag.RunRecord {
	rec := dag.RunRecord{
		DAGID:         g.ID(),
		ExecutionDate: runCtx.ExecutionDate,
		Duration:      duration,
		TaskStatus:    make(map[string]dag.Status, len(order)),
	}

	for _, t := range order {
		rec.TaskStatus[t.ID()] = t.Status
		switch t.Status {
		case dag.StatusSuccess:
			rec.StepsSucceeded++
		case dag.StatusFailed:
			rec.StepsFailed++
		case dag.StatusSkipped:
			rec.StepsSkipped++
		}
	}

	if runErr != nil {
		rec.Error = runErr.Error()
	}

	rec.ID = rec.CalculateID()
	return rec
}
