package tasks

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nomis52/dagrun/dag"
)

// defaultHTTPTimeout bounds a request when the task config doesn't.
const defaultHTTPTimeout = 30 * time.Second

// BuildHTTP builds a task that makes an HTTP request and fails on any
// non-2xx response.
//
// Params:
//
//	url:     request URL (required)
//	method:  HTTP method, defaults to GET (optional)
//	timeout: request timeout as a duration string (optional)
//
// The task's result is the response body as a string.
func BuildHTTP(params map[string]any) (dag.WorkFn, error) {
	url, err := stringParam(params, "url", true)
	if err != nil {
		return nil, err
	}
	method, err := stringParam(params, "method", false)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)
	timeout, err := durationParam(params, "timeout")
	if err != nil {
		return nil, err
	}
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	client := &http.Client{Timeout: timeout}

	return func(ctx *dag.RunContext) (any, error) {
		req, err := http.NewRequest(method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("requesting %s: %w", url, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}
		return string(body), nil
	}, nil
}
