package tasks

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/dagrun/dag"
)

func runWork(t *testing.T, work dag.WorkFn) (any, error) {
	t.Helper()
	return work(dag.NewRunContext("test", nil))
}

func TestRegistry_UnknownType(t *testing.T) {
	_, err := Default().Build("teleport", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistry_CustomBuilder(t *testing.T) {
	r := NewRegistry()
	r.Register("noop", func(params map[string]any) (dag.WorkFn, error) {
		return func(ctx *dag.RunContext) (any, error) { return "ok", nil }, nil
	})

	work, err := r.Build("noop", nil)
	require.NoError(t, err)

	result, err := runWork(t, work)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestBuildCommand(t *testing.T) {
	work, err := BuildCommand(map[string]any{
		"command": []any{"echo", "hello"},
	})
	require.NoError(t, err)

	result, err := runWork(t, work)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", result)
}

func TestBuildCommand_Failure(t *testing.T) {
	work, err := BuildCommand(map[string]any{
		"command": []any{"false"},
	})
	require.NoError(t, err)

	_, err = runWork(t, work)
	assert.Error(t, err)
}

func TestBuildCommand_BadParams(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
	}{
		{name: "missing command", params: map[string]any{}},
		{name: "empty command", params: map[string]any{"command": []any{}}},
		{name: "command not a list", params: map[string]any{"command": "echo hello"}},
		{name: "non-string element", params: map[string]any{"command": []any{"echo", 42}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCommand(tt.params)
			assert.Error(t, err)
		})
	}
}

func TestBuildHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("pong"))
	}))
	defer server.Close()

	work, err := BuildHTTP(map[string]any{"url": server.URL})
	require.NoError(t, err)

	result, err := runWork(t, work)
	require.NoError(t, err)
	assert.Equal(t, "pong", result)
}

func TestBuildHTTP_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	work, err := BuildHTTP(map[string]any{"url": server.URL})
	require.NoError(t, err)

	_, err = runWork(t, work)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestBuildHTTP_MissingURL(t *testing.T) {
	_, err := BuildHTTP(map[string]any{})
	assert.Error(t, err)
}

func TestBuildSSH_ParamValidation(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
	}{
		{name: "missing host", params: map[string]any{"user": "u", "private_key_file": "k", "command": "ls"}},
		{name: "missing user", params: map[string]any{"host": "h:22", "private_key_file": "k", "command": "ls"}},
		{name: "missing key", params: map[string]any{"host": "h:22", "user": "u", "command": "ls"}},
		{name: "missing command", params: map[string]any{"host": "h:22", "user": "u", "private_key_file": "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSSH(tt.params)
			assert.Error(t, err)
		})
	}
}

func TestBuildSleep(t *testing.T) {
	work, err := BuildSleep(map[string]any{"duration": "10ms"})
	require.NoError(t, err)

	start := time.Now()
	result, err := runWork(t, work)
	require.NoError(t, err)
	assert.Equal(t, "10ms", result)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestBuildSleep_BadDuration(t *testing.T) {
	_, err := BuildSleep(map[string]any{"duration": "soon"})
	assert.Error(t, err)

	_, err = BuildSleep(map[string]any{})
	assert.Error(t, err)
}
