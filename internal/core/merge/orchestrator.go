// Package merge orchestrates a single structural-merge evaluation: run the
// external structural merge tool, perform a content-level git merge, overlay
// the tool's output onto the working tree, and scan for leftover conflict
// markers to decide the outcome.
package merge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/mergebench/mergebench/internal/core/config"
	"github.com/mergebench/mergebench/internal/core/conflict"
	"github.com/mergebench/mergebench/internal/core/git"
	"github.com/mergebench/mergebench/internal/core/logger"
	"github.com/mergebench/mergebench/internal/core/runner"
	"github.com/mergebench/mergebench/internal/core/scratch"
)

// ErrCloneBusy is returned when another invocation holds the clone directory
var ErrCloneBusy = errors.New("clone directory is locked by another merge invocation")

// ErrNotARepository is returned when the clone directory is not a git working tree
var ErrNotARepository = errors.New("clone directory is not a git repository")

// lockName is the advisory lock file kept inside the clone's .git directory
const lockName = "mergebench.lock"

// Request describes one merge invocation
type Request struct {
	// CloneDir is an existing version-controlled working tree
	CloneDir string
	// BranchA is checked out (forced) and receives the merge
	BranchA string
	// BranchB is merged into BranchA
	BranchB string
	// Tool is the structural merge tool to run
	Tool config.Tool
	// ToolName is the tool's configured name, used for scratch naming and
	// result reporting
	ToolName string
}

// Result describes how a merge invocation ended. A conflicted result is the
// designed failure path: the working tree is left as-is, markers included,
// for manual inspection.
type Result struct {
	// Conflicted is true when marker lines remain after the overlay
	Conflicted bool
	// Markers are the leftover conflict-marker lines
	Markers []conflict.Marker
	// OverlaidFiles are the relative paths the structural tool produced
	OverlaidFiles []string
	// ContentMergeConflicted reports whether the content-level git merge
	// stopped with conflicts before the overlay was applied
	ContentMergeConflicted bool
}

// Orchestrator runs merge invocations
type Orchestrator struct {
	run         runner.Runner
	scratch     *scratch.Manager
	log         logger.Logger
	lockTimeout time.Duration
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLockTimeout sets how long Merge waits for the clone-directory lock
func WithLockTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.lockTimeout = d
	}
}

// NewOrchestrator creates a merge orchestrator
func NewOrchestrator(run runner.Runner, scratchManager *scratch.Manager, log logger.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	o := &Orchestrator{
		run:         run,
		scratch:     scratchManager,
		log:         log,
		lockTimeout: time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Merge runs one evaluation end to end. Hard failures (unknown branches,
// tool crashes, checkout errors) return an error; a merge that completes but
// leaves conflict markers returns a Result with Conflicted set and no error.
func (o *Orchestrator) Merge(ctx context.Context, req Request) (*Result, error) {
	ops := git.NewOperations(req.CloneDir, o.run)

	// Validate before any side effect
	if !ops.IsGitRepository() {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, req.CloneDir)
	}
	if !ops.RevisionExists(req.BranchA) {
		return nil, fmt.Errorf("branch %q not found in %s", req.BranchA, req.CloneDir)
	}
	if !ops.RevisionExists(req.BranchB) {
		return nil, fmt.Errorf("branch %q not found in %s", req.BranchB, req.CloneDir)
	}

	// Serialize invocations against the same clone. Scratch naming isolates
	// concurrent invocations; the clone's working tree is the shared state.
	unlock, err := o.lockClone(ctx, req.CloneDir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ws, err := o.scratch.Create(req.ToolName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Remove(); err != nil {
			o.log.Warn("scratch cleanup failed", "error", err)
		}
	}()

	log := o.log.With("clone", req.CloneDir, "branchA", req.BranchA, "branchB", req.BranchB)

	// Structural merge into the scratch workspace
	toolCmd, toolArgs := req.Tool.CommandLine()
	command := append([]string{toolCmd}, toolArgs...)
	command = append(command, req.CloneDir, req.BranchA, req.BranchB, ws.Path)

	log.Info("running structural merge tool", "tool", req.ToolName)
	if _, err := o.run.Run(ctx, runner.Spec{Command: command}); err != nil {
		return nil, fmt.Errorf("structural merge tool failed: %w", err)
	}

	// Content-level merge in the clone
	if err := ops.CheckoutForce(ctx, req.BranchA); err != nil {
		return nil, err
	}

	outcome, err := ops.Merge(ctx, req.BranchB)
	if err != nil {
		return nil, err
	}
	if outcome.Conflicted {
		log.Info("content-level merge conflicted", "files", outcome.ConflictFiles)
	}

	// Overlay the structural tool's output over the content-level result
	overlaid, err := Overlay(ws.Path, req.CloneDir)
	if err != nil {
		return nil, fmt.Errorf("failed to overlay tool output: %w", err)
	}
	log.Debug("overlay applied", "files", len(overlaid))

	// Scratch contents are either relocated or discarded; nothing survives
	// the invocation
	if err := ws.Remove(); err != nil {
		o.log.Warn("scratch cleanup failed", "error", err)
	}

	markers, err := conflict.Scan(req.CloneDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for conflict markers: %w", err)
	}

	return &Result{
		Conflicted:             len(markers) > 0,
		Markers:                markers,
		OverlaidFiles:          overlaid,
		ContentMergeConflicted: outcome.Conflicted,
	}, nil
}

// lockClone acquires the advisory clone-directory lock
func (o *Orchestrator) lockClone(ctx context.Context, cloneDir string) (func(), error) {
	lock := flock.New(filepath.Join(cloneDir, ".git", lockName))

	lockCtx, cancel := context.WithTimeout(ctx, o.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrCloneBusy
		}
		return nil, fmt.Errorf("failed to lock clone directory: %w", err)
	}
	if !locked {
		return nil, ErrCloneBusy
	}

	return func() { _ = lock.Unlock() }, nil
}
