package executor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/dagrun/dag"
	"github.com/nomis52/dagrun/history"
)

// Test helpers
// ---------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExecutor(opts ...Option) *Executor {
	base := []Option{
		WithLogger(testLogger()),
		WithSleep(func(time.Duration) {}),
	}
	return New(append(base, opts...)...)
}

func succeedWith(value any) dag.WorkFn {
	return func(ctx *dag.RunContext) (any, error) {
		return value, nil
	}
}

func alwaysFail(msg string) dag.WorkFn {
	return func(ctx *dag.RunContext) (any, error) {
		return nil, errors.New(msg)
	}
}

// failUntil fails the first n attempts, then succeeds with value.
func failUntil(n int, value any) dag.WorkFn {
	attempts := 0
	return func(ctx *dag.RunContext) (any, error) {
		attempts++
		if attempts <= n {
			return nil, fmt.Errorf("attempt %d failed", attempts)
		}
		return value, nil
	}
}

func buildLinearETL(t *testing.T) *dag.Graph {
	t.Helper()

	g := dag.NewGraph("daily_sales_etl", dag.WithSchedule("0 2 * * *"))
	for _, id := range []string{"extract", "transform", "validate", "load"} {
		require.NoError(t, g.AddTask(dag.NewTask(id, succeedWith(id+" done"))))
	}
	require.NoError(t, g.SetDependency("extract", "transform"))
	require.NoError(t, g.SetDependency("transform", "validate"))
	require.NoError(t, g.SetDependency("validate", "load"))
	return g
}

// recordingObserver captures observer notifications for assertions.
type recordingObserver struct {
	started   []string
	retried   []string
	succeeded []string
	failed    []string
	skipped   []string
	finished  []dag.RunRecord
}

func (o *recordingObserver) TaskStarted(dagID, taskID string) {
	o.started = append(o.started, taskID)
}
func (o *recordingObserver) TaskRetried(dagID, taskID string, attempt int, err error) {
	o.retried = append(o.retried, taskID)
}
func (o *recordingObserver) TaskSucceeded(dagID, taskID string, duration time.Duration) {
	o.succeeded = append(o.succeeded, taskID)
}
func (o *recordingObserver) TaskFailed(dagID, taskID string, attempts int, err error) {
	o.failed = append(o.failed, taskID)
}
func (o *recordingObserver) TaskSkipped(dagID, taskID string) {
	o.skipped = append(o.skipped, taskID)
}
func (o *recordingObserver) RunFinished(rec dag.RunRecord) {
	o.finished = append(o.finished, rec)
}

// Tests
// ---------------------------------------------------------------------

func TestRun_LinearChain(t *testing.T) {
	g := buildLinearETL(t)
	obs := &recordingObserver{}
	e := newTestExecutor(WithObserver(obs))

	runCtx, err := e.Run(g, nil)
	require.NoError(t, err)
	require.NotNil(t, runCtx)

	t.Run("ExecutionOrder", func(t *testing.T) {
		assert.Equal(t, []string{"extract", "transform", "validate", "load"}, obs.started)
	})

	t.Run("TaskState", func(t *testing.T) {
		for _, id := range []string{"extract", "transform", "validate", "load"} {
			task, ok := g.Task(id)
			require.True(t, ok)
			assert.Equal(t, dag.StatusSuccess, task.Status, "task %s should succeed", id)
			require.NotNil(t, task.StartedAt, "task %s should have a start time", id)
			require.NotNil(t, task.EndedAt, "task %s should have an end time", id)
		}
	})

	t.Run("Results", func(t *testing.T) {
		require.Len(t, runCtx.Results, 4)
		assert.Equal(t, "extract done", runCtx.Results["extract"].Value)
		assert.NoError(t, runCtx.Results["load"].Err)
	})

	t.Run("History", func(t *testing.T) {
		hist := g.History()
		require.Len(t, hist, 1)
		rec := hist[0]
		assert.Equal(t, "daily_sales_etl", rec.DAGID)
		assert.Equal(t, 0, rec.StepsFailed)
		assert.Equal(t, 4, rec.StepsSucceeded)
		assert.NotEmpty(t, rec.ID)
		assert.Empty(t, rec.Error)
	})
}

func TestRun_InvalidGraph(t *testing.T) {
	g := dag.NewGraph("cyclic")
	executed := false
	for _, id := range []string{"a", "b", "c"} {
		work := func(ctx *dag.RunContext) (any, error) {
			executed = true
			return nil, nil
		}
		require.NoError(t, g.AddTask(dag.NewTask(id, work)))
	}
	require.NoError(t, g.SetDependency("a", "b"))
	require.NoError(t, g.SetDependency("b", "c"))
	require.NoError(t, g.SetDependency("c", "a"))

	e := newTestExecutor()
	runCtx, err := e.Run(g, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, dag.ErrInvalidGraph)
	assert.Nil(t, runCtx, "no run context when validation fails")
	assert.False(t, executed, "no task may execute on an invalid graph")
	assert.Empty(t, g.History(), "validation failure records no history")
}

func TestRun_RetrySuccess(t *testing.T) {
	g := dag.NewGraph("retry")
	task := dag.NewTask("flaky", failUntil(2, "third time lucky"),
		dag.WithRetries(3),
		dag.WithRetryDelay(10*time.Millisecond),
	)
	require.NoError(t, g.AddTask(task))

	obs := &recordingObserver{}
	var slept []time.Duration
	e := newTestExecutor(
		WithObserver(obs),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
	)

	runCtx, err := e.Run(g, nil)
	require.NoError(t, err)

	assert.Equal(t, dag.StatusSuccess, task.Status)
	assert.Equal(t, "third time lucky", task.Result)
	assert.Equal(t, "third time lucky", runCtx.Results["flaky"].Value)

	// Two failed attempts, each followed by the fixed retry delay.
	assert.Equal(t, []string{"flaky", "flaky"}, obs.retried)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, slept)
}

func TestRun_RetryExhaustion(t *testing.T) {
	g := dag.NewGraph("exhaust")
	bad := dag.NewTask("bad", alwaysFail("boom"), dag.WithRetries(2))
	down := dag.NewTask("down", succeedWith("unreached"))
	require.NoError(t, g.AddTask(bad))
	require.NoError(t, g.AddTask(down))
	require.NoError(t, g.SetDependency("bad", "down"))

	obs := &recordingObserver{}
	e := newTestExecutor(WithObserver(obs))

	runCtx, err := e.Run(g, nil)
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "bad", taskErr.TaskID)
	assert.Equal(t, 2, taskErr.Attempts)
	assert.EqualError(t, taskErr.Err, "boom")

	assert.Equal(t, dag.StatusFailed, bad.Status)
	assert.EqualError(t, bad.LastError, "boom")

	// The halt is immediate: downstream tasks never leave pending.
	assert.Equal(t, dag.StatusPending, down.Status)
	assert.Empty(t, obs.skipped)

	// The failed task's error is recorded, and the context is still returned.
	require.NotNil(t, runCtx)
	assert.Error(t, runCtx.Results["bad"].Err)
	_, ran := runCtx.Results["down"]
	assert.False(t, ran)

	hist := g.History()
	require.Len(t, hist, 1)
	assert.Equal(t, 1, hist[0].StepsFailed)
	assert.Equal(t, dag.StatusPending, hist[0].TaskStatus["down"])
	assert.NotEmpty(t, hist[0].Error)
}

func TestRun_BranchHalt(t *testing.T) {
	// start fans out to good, bad and review, which join into finish.
	// bad always fails with a single attempt. Tasks ahead of bad in the
	// order (good, in insertion order) execute; everything after the
	// failure stays pending, and finish never executes.
	g := dag.NewGraph("branches")
	require.NoError(t, g.AddTask(dag.NewTask("start", succeedWith("started"))))
	require.NoError(t, g.AddTask(dag.NewTask("good", succeedWith("ok"))))
	require.NoError(t, g.AddTask(dag.NewTask("bad", alwaysFail("broken"), dag.WithRetries(1))))
	require.NoError(t, g.AddTask(dag.NewTask("review", succeedWith("reviewed"))))
	require.NoError(t, g.AddTask(dag.NewTask("finish", succeedWith("finished"))))

	for _, branch := range []string{"good", "bad", "review"} {
		require.NoError(t, g.SetDependency("start", branch))
		require.NoError(t, g.SetDependency(branch, "finish"))
	}
	require.NoError(t, g.Validate())

	obs := &recordingObserver{}
	e := newTestExecutor(WithObserver(obs))

	_, err := e.Run(g, nil)
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "bad", taskErr.TaskID)

	// Deterministic order: start, then the branches in the order start's
	// downstream list was populated. good precedes bad, so it ran.
	assert.Equal(t, []string{"start", "good", "bad"}, obs.started)

	status := func(id string) dag.Status {
		task, ok := g.Task(id)
		require.True(t, ok)
		return task.Status
	}
	assert.Equal(t, dag.StatusSuccess, status("start"))
	assert.Equal(t, dag.StatusSuccess, status("good"))
	assert.Equal(t, dag.StatusFailed, status("bad"))
	assert.Equal(t, dag.StatusPending, status("review"), "halt is global, not branch-scoped")
	assert.Equal(t, dag.StatusPending, status("finish"), "finish never executes")
}

func TestRun_FreshContextPerRun(t *testing.T) {
	g := buildLinearETL(t)
	e := newTestExecutor()

	first, err := e.Run(g, map[string]any{"run": 1})
	require.NoError(t, err)

	second, err := e.Run(g, map[string]any{"run": 2})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	v, _ := second.Value("run")
	assert.Equal(t, 2, v, "each run sees only its own seed values")
	assert.Len(t, g.History(), 2, "each run appends its own record")
}

func TestRun_InitialContextVisibleToTasks(t *testing.T) {
	g := dag.NewGraph("ctx")
	seen := ""
	work := func(ctx *dag.RunContext) (any, error) {
		seen = ctx.String("source")
		ctx.Set("records", 42)
		return nil, nil
	}
	require.NoError(t, g.AddTask(dag.NewTask("extract", work)))

	e := newTestExecutor()
	runCtx, err := e.Run(g, map[string]any{"source": "sales_db"})
	require.NoError(t, err)

	assert.Equal(t, "sales_db", seen)
	assert.Equal(t, "ctx", runCtx.DAGID)
	assert.False(t, runCtx.ExecutionDate.IsZero())

	v, ok := runCtx.Value("records")
	require.True(t, ok, "values written by tasks survive the run")
	assert.Equal(t, 42, v)
}

func TestRun_SavesToStore(t *testing.T) {
	g := buildLinearETL(t)
	store := history.NewMemoryStore()
	e := newTestExecutor(WithStore(store))

	_, err := e.Run(g, nil)
	require.NoError(t, err)

	runs := store.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "daily_sales_etl", runs[0].DAGID)
	assert.Equal(t, 4, runs[0].StepsSucceeded)
}

func TestRun_ObserverRunFinished(t *testing.T) {
	g := buildLinearETL(t)
	obs := &recordingObserver{}
	e := newTestExecutor(WithObserver(obs))

	_, err := e.Run(g, nil)
	require.NoError(t, err)

	require.Len(t, obs.finished, 1)
	assert.Equal(t, obs.finished[0], g.History()[0], "observer sees the recorded summary")
}

func TestUpstreamSucceeded(t *testing.T) {
	g := dag.NewGraph("gate")
	up := dag.NewTask("up", succeedWith(nil))
	down := dag.NewTask("down", succeedWith(nil))
	require.NoError(t, g.AddTask(up))
	require.NoError(t, g.AddTask(down))
	require.NoError(t, g.SetDependency("up", "down"))

	assert.True(t, upstreamSucceeded(g, up), "roots are always clear to run")

	up.Status = dag.StatusFailed
	assert.False(t, upstreamSucceeded(g, down), "failed upstream gates the task")

	up.Status = dag.StatusSkipped
	assert.False(t, upstreamSucceeded(g, down), "skipped upstream gates the task")

	up.Status = dag.StatusSuccess
	assert.True(t, upstreamSucceeded(g, down))
}

func TestRun_ReusedGraphStateIsReset(t *testing.T) {
	g := dag.NewGraph("reset")
	calls := 0
	flaky := dag.NewTask("flaky", func(ctx *dag.RunContext) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("first run fails")
		}
		return "second run ok", nil
	})
	require.NoError(t, g.AddTask(flaky))

	e := newTestExecutor()

	_, err := e.Run(g, nil)
	require.Error(t, err)
	assert.Equal(t, dag.StatusFailed, flaky.Status)

	_, err = e.Run(g, nil)
	require.NoError(t, err)
	assert.Equal(t, dag.StatusSuccess, flaky.Status)
	assert.NoError(t, flaky.LastError, "previous run's error must not linger")
}
