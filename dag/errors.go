package dag

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors. All of these are surfaced synchronously by the
// mutating or validating call that detects them, and are never retried.
var (
	// ErrDuplicateTask is returned when adding a task whose id is already
	// registered in the Graph.
	ErrDuplicateTask = errors.New("task id already registered")

	// ErrTaskNotFound is returned when a dependency wiring call references
	// a task id that is not in the Graph.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidGraph is returned by Validate when the dependency edges do
	// not form a DAG.
	ErrInvalidGraph = errors.New("invalid graph")
)

// CycleError reports a dependency cycle found during validation.
type CycleError struct {
	// Path holds the task ids along the cycle in traversal order, ending
	// with the id that closed the cycle.
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// Unwrap makes CycleError match ErrInvalidGraph via errors.Is.
func (e *CycleError) Unwrap() error {
	return ErrInvalidGraph
}
