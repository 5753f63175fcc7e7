// Package pipeline assembles runnable graphs from configuration.
package pipeline

import (
	"fmt"

	"github.com/nomis52/dagrun/config"
	"github.com/nomis52/dagrun/dag"
	"github.com/nomis52/dagrun/tasks"
)

// Build turns a pipeline config into a validated Graph. Tasks are added
// first, then dependency edges, so depends_on may reference tasks
// declared later in the file.
func Build(cfg config.PipelineConfig, registry *tasks.Registry) (*dag.Graph, error) {
	var opts []dag.GraphOption
	if cfg.Schedule != "" {
		opts = append(opts, dag.WithSchedule(cfg.Schedule))
	}
	g := dag.NewGraph(cfg.ID, opts...)

	for _, tc := range cfg.Tasks {
		work, err := registry.Build(tc.Type, tc.Params)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: task %s: %w", cfg.ID, tc.ID, err)
		}

		task := dag.NewTask(tc.ID, work,
			dag.WithRetries(tc.Retries),
			dag.WithRetryDelay(tc.RetryDelay),
		)
		if err := g.AddTask(task); err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", cfg.ID, err)
		}
	}

	for _, tc := range cfg.Tasks {
		for _, upstream := range tc.DependsOn {
			if err := g.SetDependency(upstream, tc.ID); err != nil {
				return nil, fmt.Errorf("pipeline %s: task %s depends on %s: %w", cfg.ID, tc.ID, upstream, err)
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", cfg.ID, err)
	}
	return g, nil
}
