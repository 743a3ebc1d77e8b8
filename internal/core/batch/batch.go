// Package batch drives the external experiment runner across a repository
// dataset. It owns no experiment logic: the configured runner script receives
// a fixed dataset, label, worker count, and mode flags, plus any
// caller-supplied passthrough arguments, and its exit status is forwarded
// unchanged.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/mergebench/mergebench/internal/core/config"
	"github.com/mergebench/mergebench/internal/core/logger"
	"github.com/mergebench/mergebench/internal/core/runner"
)

// Options describes one batch delegation
type Options struct {
	// Runner is the fixed configuration forwarded to the external script
	Runner config.RunnerConfig
	// ExtraArgs are appended verbatim after the fixed arguments
	ExtraArgs []string
	// Stdout and Stderr receive the runner's output as it is produced
	Stdout io.Writer
	Stderr io.Writer
}

// Batch delegates experiment runs to the external runner
type Batch struct {
	run runner.Runner
	log logger.Logger
}

// New creates a batch delegator
func New(run runner.Runner, log logger.Logger) *Batch {
	if log == nil {
		log = logger.Nop()
	}
	return &Batch{run: run, log: log}
}

// Arguments returns the full argument vector handed to the runner script
func Arguments(cfg config.RunnerConfig, extraArgs []string) []string {
	args := []string{
		"--dataset", cfg.Dataset,
		"--label", cfg.Label,
		"--workers", strconv.Itoa(cfg.Workers),
		"--cache", cfg.Cache,
	}
	if !cfg.Timing {
		args = append(args, "--no-timing")
	}
	return append(args, extraArgs...)
}

// Run invokes the external runner and returns its exit code. The error is
// non-nil only when the runner could not be started; a nonzero exit from the
// runner itself is reported through the exit code alone.
func (b *Batch) Run(ctx context.Context, opts Options) (int, error) {
	if opts.Runner.Script == "" {
		return -1, fmt.Errorf("no runner script configured")
	}

	command := append([]string{opts.Runner.Script}, Arguments(opts.Runner, opts.ExtraArgs)...)

	b.log.Info("delegating to experiment runner",
		"script", opts.Runner.Script,
		"dataset", opts.Runner.Dataset,
		"label", opts.Runner.Label,
		"workers", opts.Runner.Workers)

	result, err := b.run.Run(ctx, runner.Spec{
		Command: command,
		Stdout:  opts.Stdout,
		Stderr:  opts.Stderr,
	})
	if err != nil {
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			// The runner ran and failed; its exit code is the outcome
			return exitErr.ExitCode, nil
		}
		return -1, err
	}

	return result.ExitCode, nil
}
