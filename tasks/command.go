package tasks

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/nomis52/dagrun/dag"
)

// BuildCommand builds a task that runs a local command.
//
// Params:
//
//	command: list of strings, the program and its arguments (required)
//	dir:     working directory (optional)
//	env:     list of KEY=VALUE strings appended to the environment (optional)
//
// The task's result is the command's stdout as a string.
func BuildCommand(params map[string]any) (dag.WorkFn, error) {
	argv, err := stringSliceParam(params, "command")
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("param %q is required", "command")
	}
	dir, err := stringParam(params, "dir", false)
	if err != nil {
		return nil, err
	}
	env, err := stringSliceParam(params, "env")
	if err != nil {
		return nil, err
	}

	return func(ctx *dag.RunContext) (any, error) {
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Dir = dir
		if len(env) > 0 {
			cmd.Env = append(cmd.Environ(), env...)
		}

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("running %s: %w: %s", argv[0], err, stderr.String())
		}
		return stdout.String(), nil
	}, nil
}
