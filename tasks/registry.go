// Package tasks provides the built-in task types that pipelines are
// assembled from. A Registry maps a task type name to a Builder that
// turns the task's params stanza into a runnable work function.
package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/nomis52/dagrun/dag"
)

// ErrUnknownType is returned when no builder is registered for a task type.
var ErrUnknownType = errors.New("unknown task type")

// Builder constructs a work function from a task's params.
type Builder func(params map[string]any) (dag.WorkFn, error)

// Registry maps task type names to builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Default returns a Registry with all built-in task types registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register("command", BuildCommand)
	r.Register("http", BuildHTTP)
	r.Register("ssh", BuildSSH)
	r.Register("sleep", BuildSleep)
	return r
}

// Register adds a builder under the given type name, replacing any
// existing builder with the same name.
func (r *Registry) Register(typeName string, b Builder) {
	r.builders[typeName] = b
}

// Build constructs the work function for the given task type.
func (r *Registry) Build(typeName string, params map[string]any) (dag.WorkFn, error) {
	b, ok := r.builders[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return b(params)
}

// stringParam returns the named param as a string. Required params with
// no value produce an error.
func stringParam(params map[string]any, name string, required bool) (string, error) {
	v, ok := params[name]
	if !ok {
		if required {
			return "", fmt.Errorf("param %q is required", name)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %q must be a string, got %T", name, v)
	}
	return s, nil
}

// stringSliceParam returns the named param as a []string. YAML decodes
// sequences as []any, so both forms are accepted.
func stringSliceParam(params map[string]any, name string) ([]string, error) {
	v, ok := params[name]
	if !ok {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("param %q: element %d must be a string, got %T", name, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("param %q must be a list of strings, got %T", name, v)
	}
}

// durationParam returns the named param parsed as a time.Duration.
func durationParam(params map[string]any, name string) (time.Duration, error) {
	v, ok := params[name]
	if !ok {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("param %q must be a duration string, got %T", name, v)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("param %q: %w", name, err)
	}
	return d, nil
}
