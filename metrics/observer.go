package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/dagrun/dag"
)

// RunObserver records task and run outcomes into a Registry. It satisfies
// the executor's Observer interface, so either a push or a scrape registry
// can sit behind a run without the executor knowing.
type RunObserver struct {
	tasksTotal   CounterVec
	taskRetries  CounterVec
	taskDuration GaugeVec
	runsTotal    CounterVec
	runDuration  GaugeVec
}

// NewRunObserver creates and registers the run metrics on reg.
func NewRunObserver(reg Registry) (*RunObserver, error) {
	tasksTotal, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "tasks_total",
		Help: "Task executions by final status.",
	}, []string{"dag", "task", "status"})
	if err != nil {
		return nil, err
	}

	taskRetries, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "task_retries_total",
		Help: "Failed attempts that were retried.",
	}, []string{"dag", "task"})
	if err != nil {
		return nil, err
	}

	taskDuration, err := reg.NewGaugeVec(prometheus.GaugeOpts{
		Name: "task_duration_seconds",
		Help: "Duration of the task's most recent execution.",
	}, []string{"dag", "task"})
	if err != nil {
		return nil, err
	}

	runsTotal, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "runs_total",
		Help: "Completed runs by outcome.",
	}, []string{"dag", "status"})
	if err != nil {
		return nil, err
	}

	runDuration, err := reg.NewGaugeVec(prometheus.GaugeOpts{
		Name: "run_duration_seconds",
		Help: "Wall-clock duration of the most recent run.",
	}, []string{"dag"})
	if err != nil {
		return nil, err
	}

	return &RunObserver{
		tasksTotal:   tasksTotal,
		taskRetries:  taskRetries,
		taskDuration: taskDuration,
		runsTotal:    runsTotal,
		runDuration:  runDuration,
	}, nil
}

// TaskStarted implements the executor's Observer interface.
func (o *RunObserver) TaskStarted(dagID, taskID string) {}

// TaskRetried counts a failed attempt that will be retried.
func (o *RunObserver) TaskRetried(dagID, taskID string, attempt int, err error) {
	o.taskRetries.With(prometheus.Labels{"dag": dagID, "task": taskID}).Inc()
}

// TaskSucceeded records a successful task execution.
func (o *RunObserver) TaskSucceeded(dagID, taskID string, duration time.Duration) {
	o.tasksTotal.With(prometheus.Labels{"dag": dagID, "task": taskID, "status": dag.StatusSuccess.String()}).Inc()
	o.taskDuration.With(prometheus.Labels{"dag": dagID, "task": taskID}).Set(duration.Seconds())
}

// TaskFailed records a task that exhausted its retries.
func (o *RunObserver) TaskFailed(dagID, taskID string, attempts int, err error) {
	o.tasksTotal.With(prometheus.Labels{"dag": dagID, "task": taskID, "status": dag.StatusFailed.String()}).Inc()
}

// TaskSkipped records a task passed over because of an unsuccessful upstream.
func (o *RunObserver) TaskSkipped(dagID, taskID string) {
	o.tasksTotal.With(prometheus.Labels{"dag": dagID, "task": taskID, "status": dag.StatusSkipped.String()}).Inc()
}

// RunFinished records the run summary.
func (o *RunObserver) RunFinished(rec dag.RunRecord) {
	status := dag.StatusSuccess
	if rec.StepsFailed > 0 {
		status = dag.StatusFailed
	}
	o.runsTotal.With(prometheus.Labels{"dag": rec.DAGID, "status": status.String()}).Inc()
	o.runDuration.With(prometheus.Labels{"dag": rec.DAGID}).Set(rec.Duration.Seconds())
}
