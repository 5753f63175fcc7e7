package dag

import "fmt"

// Status represents the execution status of a task within its latest run.
type Status int

const (
	// StatusPending indicates the task has not been processed in the current run.
	// Tasks downstream of a failure also remain pending, because a failed run
	// halts immediately rather than walking the rest of the order.
	StatusPending Status = iota

	// StatusRunning indicates the task is currently executing (including retry waits).
	StatusRunning

	// StatusSuccess indicates the work function returned without error on some attempt.
	StatusSuccess

	// StatusFailed indicates the task exhausted its configured retries.
	StatusFailed

	// StatusSkipped indicates the task was passed over because at least one of
	// its upstream tasks did not end in success.
	StatusSkipped
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"pending"`:
		*s = StatusPending
	case `"running"`:
		*s = StatusRunning
	case `"success"`:
		*s = StatusSuccess
	case `"failed"`:
		*s = StatusFailed
	case `"skipped"`:
		*s = StatusSkipped
	default:
		return fmt.Errorf("unknown task status %s", string(data))
	}
	return nil
}
