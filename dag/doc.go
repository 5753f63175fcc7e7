// Package dag provides the task and dependency-graph data model for the
// workflow-orchestration core.
//
// # Core Concepts
//
// A Task is a named unit of work wrapping a caller-supplied work function,
// a retry policy, and mutable run state. A Graph owns a set of tasks and
// the directed dependency edges between them: task B is downstream of task
// A when A must complete successfully before B may run.
//
// The Graph is the sole owner of its tasks. Adjacency lists store task ids,
// not pointers, so the mutual upstream/downstream back-references never
// form ownership cycles; lookup goes through the Graph's task map.
//
// # Construction and Lifecycle
//
//	g := dag.NewGraph("daily_sales_etl", dag.WithSchedule("0 2 * * *"))
//
//	g.AddTask(dag.NewTask("extract", extractFn, dag.WithRetries(3)))
//	g.AddTask(dag.NewTask("load", loadFn))
//	g.SetDependency("extract", "load")
//
//	if err := g.Validate(); err != nil {
//	    // err is a *CycleError carrying the concrete cycle path
//	}
//
// Tasks are added and wired before the first run; adjacency is immutable
// during execution. A Graph may be run many times. Each run overwrites the
// tasks' run state and appends a RunRecord to the graph's history, so only
// the latest per-task state is retained alongside the run summaries.
//
// # Validation and Ordering
//
// Validate performs depth-first cycle detection with an on-path set and
// reports the concrete cycle path for diagnostics. ExecutionOrder produces
// a topological order over the tasks reachable from the roots; tasks that
// were added but never wired into a rooted component are excluded and never
// execute.
//
// # RunContext
//
// A RunContext is the single run-scoped key/value store shared by all tasks
// during one execution. It accumulates per-task results and whatever
// intermediate values tasks choose to pass downstream. Execution is
// strictly sequential, so the RunContext needs no locking within a run.
package dag
