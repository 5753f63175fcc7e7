package tasks

import (
	"fmt"
	"time"

	"github.com/nomis52/dagrun/dag"
)

// BuildSleep builds a task that sleeps for a fixed duration. Useful for
// spacing out pipeline stages and for exercising pipelines in tests.
//
// Params:
//
//	duration: how long to sleep, as a duration string (required)
func BuildSleep(params map[string]any) (dag.WorkFn, error) {
	d, err := durationParam(params, "duration")
	if err != nil {
		return nil, err
	}
	if d <= 0 {
		return nil, fmt.Errorf("param %q must be a positive duration", "duration")
	}

	return func(ctx *dag.RunContext) (any, error) {
		time.Sleep(d)
		return d.String(), nil
	}, nil
}
