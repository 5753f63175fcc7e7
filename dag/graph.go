package dag

import "fmt"

// Graph is a directed acyclic graph of tasks. It is the arena that owns
// every Task added to it: tasks reference each other by id only, and the
// Graph's task map resolves ids back to tasks.
//
// A Graph is built up front (tasks first, then dependencies), validated,
// and then run one or more times. It is not safe to run the same Graph
// from two goroutines at once; task run state is overwritten per run.
type Graph struct {
	id       string
	schedule string

	tasks map[string]*Task
	order []string // task ids in insertion order

	history []RunRecord
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithSchedule attaches a schedule descriptor to the Graph. The descriptor
// is opaque to the core: it is carried for the embedding application (and
// validated by the schedule package when graphs are built from config) but
// never interpreted here. Running a Graph is always an explicit call.
func WithSchedule(schedule string) GraphOption {
	return func(g *Graph) {
		g.schedule = schedule
	}
}

// NewGraph creates an empty Graph with the given id.
func NewGraph(id string, opts ...GraphOption) *Graph {
	g := &Graph{
		id:    id,
		tasks: make(map[string]*Task),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// ID returns the graph's identifier.
func (g *Graph) ID() string {
	return g.id
}

// Schedule returns the opaque schedule descriptor, or "" if none was set.
func (g *Graph) Schedule() string {
	return g.schedule
}

// AddTask registers a task under its id.
// Returns ErrDuplicateTask if the id is already present.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.id]; exists {
		return fmt.Errorf("adding task %q: %w", t.id, ErrDuplicateTask)
	}

	g.tasks[t.id] = t
	g.order = append(g.order, t.id)
	return nil
}

// Task returns the task registered under id, if any.
func (g *Graph) Task(id string) (*Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Tasks returns all tasks in insertion order.
func (g *Graph) Tasks() []*Task {
	out := make([]*Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Len returns the number of registered tasks.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// SetDependency wires upstreamID as a dependency of downstreamID, updating
// both tasks' adjacency lists symmetrically.
// Returns ErrTaskNotFound if either id is unknown.
func (g *Graph) SetDependency(upstreamID, downstreamID string) error {
	upstream, ok := g.tasks[upstreamID]
	if !ok {
		return fmt.Errorf("setting dependency %s -> %s: %q: %w", upstreamID, downstreamID, upstreamID, ErrTaskNotFound)
	}
	downstream, ok := g.tasks[downstreamID]
	if !ok {
		return fmt.Errorf("setting dependency %s -> %s: %q: %w", upstreamID, downstreamID, downstreamID, ErrTaskNotFound)
	}

	downstream.AddUpstream(upstream)
	return nil
}

// RootTasks returns all tasks with no upstream dependencies, in insertion order.
func (g *Graph) RootTasks() []*Task {
	var roots []*Task
	for _, id := range g.order {
		if t := g.tasks[id]; len(t.upstream) == 0 {
			roots = append(roots, t)
		}
	}
	return roots
}

// LeafTasks returns all tasks with no downstream dependents, in insertion order.
func (g *Graph) LeafTasks() []*Task {
	var leaves []*Task
	for _, id := range g.order {
		if t := g.tasks[id]; len(t.downstream) == 0 {
			leaves = append(leaves, t)
		}
	}
	return leaves
}

// Validate checks that the dependency edges form a DAG, using a depth-first
// traversal with an on-path set. Runs in O(V+E).
//
// Returns a *CycleError carrying the concrete cycle path if a cycle exists.
// The traversal starts from every task, not just roots, so a fully cyclic
// component (which has no roots at all) is still detected.
func (g *Graph) Validate() error {
	visited := make(map[string]bool, len(g.tasks))
	onPath := make(map[string]bool, len(g.tasks))
	var path []string

	var visit func(t *Task) *CycleError
	visit = func(t *Task) *CycleError {
		if onPath[t.id] {
			cycle := append(append([]string{}, path...), t.id)
			return &CycleError{Path: cycle}
		}
		if visited[t.id] {
			return nil
		}

		visited[t.id] = true
		onPath[t.id] = true
		path = append(path, t.id)

		for _, downID := range t.downstream {
			down, ok := g.tasks[downID]
			if !ok {
				// Wired directly via AddUpstream without being registered;
				// not traversable, and gating treats it as never successful.
				continue
			}
			if ce := visit(down); ce != nil {
				return ce
			}
		}

		onPath[t.id] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, id := range g.order {
		if visited[id] {
			continue
		}
		if ce := visit(g.tasks[id]); ce != nil {
			return ce
		}
	}

	return nil
}

// ExecutionOrder computes a topological order over the tasks reachable from
// the root tasks: for every dependency edge u -> v, u appears strictly
// before v. Ties between unrelated tasks fall out of insertion order and
// the order in which downstream lists were populated, so the result is
// deterministic for a deterministically built graph.
//
// Tasks with no path from any root (added but never wired into a rooted
// component) are excluded and never execute. This mirrors how the order is
// built rather than being a separate check; Validate does not flag such
// tasks.
//
// The graph must be validated first; ExecutionOrder assumes acyclicity.
func (g *Graph) ExecutionOrder() []*Task {
	order := make([]*Task, 0, len(g.tasks))
	scheduled := make(map[string]bool, len(g.tasks))

	var visit func(t *Task)
	visit = func(t *Task) {
		// Schedule every dependency before the task itself.
		for _, upID := range t.upstream {
			if up, ok := g.tasks[upID]; ok && !scheduled[upID] {
				visit(up)
			}
		}

		if !scheduled[t.id] {
			scheduled[t.id] = true
			order = append(order, t)
		}

		for _, downID := range t.downstream {
			if down, ok := g.tasks[downID]; ok && !scheduled[downID] {
				visit(down)
			}
		}
	}

	for _, root := range g.RootTasks() {
		if !scheduled[root.id] {
			visit(root)
		}
	}

	return order
}

// RecordRun appends a run record to the graph's execution history.
func (g *Graph) RecordRun(rec RunRecord) {
	g.history = append(g.history, rec)
}

// History returns the graph's execution history, oldest first.
// The returned slice is a copy.
func (g *Graph) History() []RunRecord {
	out := make([]RunRecord, len(g.history))
	copy(out, g.history)
	return out
}
