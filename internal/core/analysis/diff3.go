// Package analysis replays historical merges and compares a structural merge
// tool's conflicts against the merge the repository's developers actually
// committed, using diff3 over (base, merge attempt, programmer merge).
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mergebench/mergebench/internal/core/config"
	"github.com/mergebench/mergebench/internal/core/git"
	"github.com/mergebench/mergebench/internal/core/logger"
	"github.com/mergebench/mergebench/internal/core/runner"
	"github.com/mergebench/mergebench/internal/core/scratch"
)

// Temporary branch names planted at the left and right shas of a merge case
const (
	leftBranch  = "TEMP_LEFT_BRANCH"
	rightBranch = "TEMP_RIGHT_BRANCH"
)

// Options describes one analysis run
type Options struct {
	// Case is the historical merge to replay
	Case MergeCase
	// Tool is the structural merge tool under analysis
	Tool config.Tool
	// ToolName is the tool's configured name
	ToolName string
	// RemoteBase is prepended to the repository slug to form the clone
	// source. Empty means GitHub over https.
	RemoteBase string
	// WorkDir holds the throwaway checkouts; it is recreated on every run
	WorkDir string
	// OutputDir receives one report file per conflicting file
	OutputDir string
}

// Report summarizes one analysis run
type Report struct {
	Case MergeCase
	// Tool is the analyzed tool's name
	Tool string
	// ConflictFiles are the paths the tool reported as conflicting
	ConflictFiles []string
	// ReportPaths are the written diff3 report files, one per conflict
	ReportPaths []string
}

// Analyzer replays merges and produces diff3 reports
type Analyzer struct {
	run     runner.Runner
	scratch *scratch.Manager
	diff    config.DiffConfig
	log     logger.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(run runner.Runner, scratchManager *scratch.Manager, diff config.DiffConfig, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	if diff.Diff3Bin == "" {
		diff.Diff3Bin = "diff3"
	}
	if diff.DiffBin == "" {
		diff.DiffBin = "diff"
	}
	return &Analyzer{
		run:     run,
		scratch: scratchManager,
		diff:    diff,
		log:     log,
	}
}

// Analyze replays the merge case with the tool and writes one diff3 report
// per conflicting file. The work directory is recreated at the start and
// removed at the end; only the reports survive.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*Report, error) {
	// Stale checkouts from an aborted run would break cloning
	if err := os.RemoveAll(opts.WorkDir); err != nil {
		return nil, fmt.Errorf("failed to reset work directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(opts.WorkDir); err != nil {
			a.log.Warn("work directory cleanup failed", "error", err)
		}
	}()

	attempt, err := a.checkoutSides(ctx, opts, "merge_attempt")
	if err != nil {
		return nil, err
	}

	baseSha, err := attempt.MergeBase(ctx, leftBranch, rightBranch)
	if err != nil {
		return nil, err
	}

	base, err := a.checkoutAt(ctx, opts, "base", baseSha)
	if err != nil {
		return nil, err
	}

	conflictFiles, err := a.runTool(ctx, opts, attempt)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Case:          opts.Case,
		Tool:          opts.ToolName,
		ConflictFiles: conflictFiles,
	}
	if len(conflictFiles) == 0 {
		a.log.Info("no conflict files to compare", "tool", opts.ToolName, "repository", opts.Case.Repository)
		return report, nil
	}

	programmer, err := a.checkoutAt(ctx, opts, "programmer_merge", opts.Case.Merge)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, file := range conflictFiles {
		reportPath, err := a.writeComparison(ctx, opts, comparison{
			file:       file,
			basePath:   filepath.Join(base.Path(), file),
			attempt:    filepath.Join(attempt.Path(), file),
			programmer: filepath.Join(programmer.Path(), file),
		})
		if err != nil {
			return nil, err
		}
		report.ReportPaths = append(report.ReportPaths, reportPath)
	}

	return report, nil
}

// checkoutSides clones the case's repository under workDir/<name> and plants
// the temporary left and right branches at the case's shas, leaving the
// right branch checked out
func (a *Analyzer) checkoutSides(ctx context.Context, opts Options, name string) (*git.Operations, error) {
	ops, err := a.cloneCase(ctx, opts, name)
	if err != nil {
		return nil, err
	}

	if err := ops.Fetch(ctx); err != nil {
		a.log.Warn("fetch failed, continuing with clone refs", "error", err)
	}

	if err := ops.CheckoutForce(ctx, opts.Case.Left); err != nil {
		return nil, err
	}
	if err := ops.CheckoutNewBranch(ctx, leftBranch); err != nil {
		return nil, err
	}

	if err := ops.CheckoutForce(ctx, opts.Case.Right); err != nil {
		return nil, err
	}
	if err := ops.CheckoutNewBranch(ctx, rightBranch); err != nil {
		return nil, err
	}

	return ops, nil
}

// checkoutAt clones the case's repository under workDir/<name> at a fixed sha
func (a *Analyzer) checkoutAt(ctx context.Context, opts Options, name, sha string) (*git.Operations, error) {
	ops, err := a.cloneCase(ctx, opts, name)
	if err != nil {
		return nil, err
	}
	if err := ops.CheckoutForce(ctx, sha); err != nil {
		return nil, err
	}
	return ops, nil
}

func (a *Analyzer) cloneCase(ctx context.Context, opts Options, name string) (*git.Operations, error) {
	path := filepath.Join(opts.WorkDir, name, opts.Case.Repository)
	return git.Clone(ctx, a.run, cloneSource(opts.RemoteBase, opts.Case.Repository), path)
}

// runTool runs the structural merge tool over the attempt clone and parses
// the conflicting files from its output. A nonzero tool exit is expected for
// conflicted merges; only a failure to start the tool is an error.
func (a *Analyzer) runTool(ctx context.Context, opts Options, attempt *git.Operations) ([]string, error) {
	ws, err := a.scratch.Create(opts.ToolName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Remove(); err != nil {
			a.log.Warn("scratch cleanup failed", "error", err)
		}
	}()

	toolCmd, toolArgs := opts.Tool.CommandLine()
	command := append([]string{toolCmd}, toolArgs...)
	command = append(command, attempt.Path(), leftBranch, rightBranch, ws.Path)

	result, err := a.run.Run(ctx, runner.Spec{Command: command})
	if err != nil {
		var exitErr *runner.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run merge tool: %w", err)
		}
	}

	return git.ParseConflictFiles(result.Output), nil
}

type comparison struct {
	file       string
	basePath   string
	attempt    string
	programmer string
}

// writeComparison runs diff3 over the three versions of one conflicting file
// and writes the output as a report. When the base side is missing (the file
// did not exist at the merge base) it falls back to a two-way diff between
// the attempt and the programmer merge.
func (a *Analyzer) writeComparison(ctx context.Context, opts Options, c comparison) (string, error) {
	var stdout, stderr bytes.Buffer
	_, err := a.run.Run(ctx, runner.Spec{
		Command: []string{a.diff.Diff3Bin, c.basePath, c.attempt, c.programmer},
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	// diff3 exits 1 when differences are found; that is the interesting case
	var exitErr *runner.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", fmt.Errorf("failed to run %s: %w", a.diff.Diff3Bin, err)
	}

	if strings.Contains(stderr.String(), "No such file or directory") {
		stdout.Reset()
		stderr.Reset()
		_, err := a.run.Run(ctx, runner.Spec{
			Command: []string{a.diff.DiffBin, c.attempt, c.programmer},
			Stdout:  &stdout,
			Stderr:  &stderr,
		})
		if err != nil && !errors.As(err, &exitErr) {
			return "", fmt.Errorf("failed to run %s: %w", a.diff.DiffBin, err)
		}
	}

	reportPath := filepath.Join(opts.OutputDir, reportName(opts.ToolName, c.file))
	if err := os.WriteFile(reportPath, stdout.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	a.log.Info("wrote comparison report", "file", c.file, "report", reportPath)
	return reportPath, nil
}

// reportName flattens a conflicting file path into a report filename
func reportName(tool, file string) string {
	flat := strings.ReplaceAll(filepath.ToSlash(file), "/", "_")
	return fmt.Sprintf("%s_%s.diff", tool, flat)
}

// cloneSource resolves a repository slug to its clone source
func cloneSource(remoteBase, repository string) string {
	if remoteBase == "" {
		return "https://github.com/" + repository + ".git"
	}
	if strings.Contains(remoteBase, "://") || strings.HasPrefix(remoteBase, "git@") {
		return strings.TrimSuffix(remoteBase, "/") + "/" + repository
	}
	return filepath.Join(remoteBase, repository)
}
