// Package executor drives single runs of a dag.Graph.
//
// # Execution Model
//
// A run is strictly single-threaded and synchronous: the executor validates
// the graph, computes the execution order, and walks it one task at a time.
// Independent branches are never run concurrently. The only suspension
// points are the retry delays inside task execution, which block the
// calling goroutine for the configured duration.
//
// For each task in order:
//
//   - If the task has no upstream dependencies, or every upstream task
//     ended in success, the task executes with bounded retries.
//   - If some upstream task did not end in success, the task is marked
//     skipped and the walk continues.
//   - If the task exhausts its retries, the run halts immediately. Tasks
//     later in the order remain pending, not skipped: the halt is global,
//     not branch-scoped, even when the failing branch is structurally
//     independent of the rest of the graph.
//
// The run always produces a dag.RunRecord (appended to the graph's history
// and saved to the configured store) and always returns the RunContext, so
// partial results stay inspectable after a failure.
//
// # Observation
//
// The executor logs through an injected slog.Logger and reports task
// lifecycle events (start, retry, success, failure, skip) plus a run
// summary to an injected Observer. With the default logger and NopObserver
// the core stays silent, which keeps tests free of output capturing.
//
// # Cancellation
//
// There is none. Once a run starts it proceeds until completion or until a
// task's retries are exhausted; a retry wait cannot be interrupted from
// outside. Callers needing an abort signal must build it into their work
// functions.
package executor
