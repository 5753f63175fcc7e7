package executor

import "fmt"

// TaskError is returned when a task exhausts its configured retries.
// It carries the last underlying error; the executor makes no distinction
// between "expected" and "unexpected" work failures.
type TaskError struct {
	// TaskID is the id of the task that failed.
	TaskID string

	// Attempts is how many times the work function was invoked.
	Attempts int

	// Err is the error from the final attempt.
	Err error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed after %d attempt(s): %v", e.TaskID, e.Attempts, e.Err)
}

// Unwrap returns the underlying work error.
func (e *TaskError) Unwrap() error {
	return e.Err
}
