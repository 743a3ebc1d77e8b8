// Package runner provides an abstraction over external process execution.
// Merge tools, git, diff utilities, and the experiment runner are all invoked
// through this interface so commands can be faked in tests.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/mergebench/mergebench/internal/core/logger"
)

// ErrInvalidCommand is returned when a spec has no command
var ErrInvalidCommand = errors.New("command must not be empty")

// Spec describes a single external command invocation
type Spec struct {
	// Command is the executable followed by its arguments
	Command []string
	// Dir is the working directory for the command; empty means inherit
	Dir string
	// Env is extra environment entries appended to the parent environment
	Env []string
	// Stdout and Stderr, when set, receive the command output as it is
	// produced. When both are nil the combined output is captured into
	// Result.Output instead.
	Stdout io.Writer
	Stderr io.Writer
}

// Result holds the outcome of a completed command
type Result struct {
	// ExitCode is the process exit status
	ExitCode int
	// Output is the combined stdout and stderr when the spec did not
	// supply its own writers
	Output []byte
}

// ExitError is returned when a command runs to completion with a nonzero
// exit status. The captured output is preserved for error reporting.
type ExitError struct {
	Command  string
	ExitCode int
	Output   []byte
}

func (e *ExitError) Error() string {
	if len(e.Output) > 0 {
		return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Output)
	}
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// Runner executes external commands
type Runner interface {
	// Run executes the command described by spec, blocking until it
	// completes. A nonzero exit status is reported both in the Result and
	// as an *ExitError.
	Run(ctx context.Context, spec Spec) (Result, error)
}

// Local runs commands directly on the host using os/exec
type Local struct {
	log logger.Logger
}

// NewLocal creates a local runner
func NewLocal(log logger.Logger) *Local {
	if log == nil {
		log = logger.Nop()
	}
	return &Local{log: log}
}

// Run implements Runner
func (l *Local) Run(ctx context.Context, spec Spec) (Result, error) {
	if len(spec.Command) == 0 {
		return Result{}, ErrInvalidCommand
	}

	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}

	l.log.Debug("running command", "command", spec.Command, "dir", spec.Dir)

	var output []byte
	var runErr error
	if spec.Stdout != nil || spec.Stderr != nil {
		cmd.Stdout = spec.Stdout
		cmd.Stderr = spec.Stderr
		runErr = cmd.Run()
	} else {
		output, runErr = cmd.CombinedOutput()
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			code := exitErr.ExitCode()
			return Result{ExitCode: code, Output: output}, &ExitError{
				Command:  spec.Command[0],
				ExitCode: code,
				Output:   output,
			}
		}
		// Start failure or context cancellation
		return Result{ExitCode: -1, Output: output}, fmt.Errorf("failed to run %s: %w", spec.Command[0], runErr)
	}

	return Result{ExitCode: 0, Output: output}, nil
}
