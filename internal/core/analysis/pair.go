package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mergebench/mergebench/internal/core/config"
)

// PairOptions describes a side-by-side analysis of two tools on one case
type PairOptions struct {
	Case MergeCase
	// First is the tool whose conflicts select the files to compare
	First Tool
	// Second is replayed on the same case for comparison
	Second Tool
	// RemoteBase, WorkDir, and OutputDir behave as in Options
	RemoteBase string
	WorkDir    string
	OutputDir  string
}

// Tool pairs a tool configuration with its name
type Tool struct {
	Name   string
	Config config.Tool
}

// PairReport summarizes a pair analysis
type PairReport struct {
	Case MergeCase
	// ConflictFiles are the files the first tool reported as conflicting
	ConflictFiles []string
	// ReportPaths maps each tool name to its written reports
	ReportPaths map[string][]string
}

// AnalyzePair replays one merge case with two tools and writes diff3 reports
// for both, grouped per tool, so their conflict handling can be compared
// file by file. The first tool's conflicts decide which files are compared.
func (a *Analyzer) AnalyzePair(ctx context.Context, opts PairOptions) (*PairReport, error) {
	if err := os.RemoveAll(opts.WorkDir); err != nil {
		return nil, fmt.Errorf("failed to reset work directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(opts.WorkDir); err != nil {
			a.log.Warn("work directory cleanup failed", "error", err)
		}
	}()

	first := Options{
		Case:       opts.Case,
		Tool:       opts.First.Config,
		ToolName:   opts.First.Name,
		RemoteBase: opts.RemoteBase,
		WorkDir:    opts.WorkDir,
	}

	attempt1, err := a.checkoutSides(ctx, first, "merge_attempt1")
	if err != nil {
		return nil, err
	}

	baseSha, err := attempt1.MergeBase(ctx, leftBranch, rightBranch)
	if err != nil {
		return nil, err
	}

	base, err := a.checkoutAt(ctx, first, "base", baseSha)
	if err != nil {
		return nil, err
	}

	conflictFiles, err := a.runTool(ctx, first, attempt1)
	if err != nil {
		return nil, err
	}

	report := &PairReport{
		Case:          opts.Case,
		ConflictFiles: conflictFiles,
		ReportPaths:   make(map[string][]string),
	}
	if len(conflictFiles) == 0 {
		a.log.Info("no conflict files to compare", "tool", opts.First.Name, "repository", opts.Case.Repository)
		return report, nil
	}

	programmer, err := a.checkoutAt(ctx, first, "programmer_merge", opts.Case.Merge)
	if err != nil {
		return nil, err
	}

	second := Options{
		Case:       opts.Case,
		Tool:       opts.Second.Config,
		ToolName:   opts.Second.Name,
		RemoteBase: opts.RemoteBase,
		WorkDir:    opts.WorkDir,
	}

	attempt2, err := a.checkoutSides(ctx, second, "merge_attempt2")
	if err != nil {
		return nil, err
	}
	if _, err := a.runTool(ctx, second, attempt2); err != nil {
		return nil, err
	}

	attempts := []struct {
		tool string
		ops  pathProvider
	}{
		{opts.First.Name, attempt1},
		{opts.Second.Name, attempt2},
	}

	for _, att := range attempts {
		outDir := filepath.Join(opts.OutputDir, "merge_attempt_"+att.tool)
		for _, file := range conflictFiles {
			perTool := Options{
				Case:      opts.Case,
				ToolName:  att.tool,
				OutputDir: outDir,
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", err)
			}
			reportPath, err := a.writeComparison(ctx, perTool, comparison{
				file:       file,
				basePath:   filepath.Join(base.Path(), file),
				attempt:    filepath.Join(att.ops.Path(), file),
				programmer: filepath.Join(programmer.Path(), file),
			})
			if err != nil {
				return nil, err
			}
			report.ReportPaths[att.tool] = append(report.ReportPaths[att.tool], reportPath)
		}
	}

	return report, nil
}

type pathProvider interface {
	Path() string
}
