package harness

import (
	"bytes"
	"context"
	"time"

	"github.com/artpar/shelf/internal/cli"
)

// CLIResult holds CLI execution results.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CLIRunner executes CLI commands against the harness authority.
type CLIRunner struct {
	harness *E2EHarness
}

// Run executes a CLI command with the given arguments.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.harness.timeout)
	defer cancel()

	start := time.Now()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := cli.NewRootCommand("test")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--url", r.harness.ServerURL()}, args...))

	err := cmd.ExecuteContext(ctx)

	result := &CLIResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		result.ExitCode = 1
	}

	return result, err
}

// CartAdd runs "cart add ID".
func (r *CLIRunner) CartAdd(id string, opts ...string) (*CLIResult, error) {
	return r.Run(append([]string{"cart", "add", id}, opts...)...)
}

// CartRemove runs "cart remove ID".
func (r *CLIRunner) CartRemove(id string, opts ...string) (*CLIResult, error) {
	return r.Run(append([]string{"cart", "remove", id}, opts...)...)
}

// CartList runs "cart list".
func (r *CLIRunner) CartList(opts ...string) (*CLIResult, error) {
	return r.Run(append([]string{"cart", "list"}, opts...)...)
}
