package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mergebench/mergebench/internal/cli/ui"
	"github.com/mergebench/mergebench/internal/core/analysis"
	"github.com/mergebench/mergebench/internal/core/runner"
	"github.com/mergebench/mergebench/internal/core/scratch"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Replay a historical merge and write diff3 reports",
	Long: `Replay one merge case from a results CSV: clone the repository, recreate
the merge with the configured tool, and for each conflicting file write a
three-way diff3 comparison of the merge base, the tool's attempt, and the
merge the repository's developers committed.

With --compare a second tool is replayed on the same case and a report is
written per conflicting file per tool.`,
	RunE: runAnalyze,
}

var (
	flagAnalyzeResults    string
	flagAnalyzeIndex      int
	flagAnalyzeTool       string
	flagAnalyzeCompare    string
	flagAnalyzeRemoteBase string
	flagAnalyzeOut        string
)

func init() {
	analyzeCmd.Flags().StringVarP(&flagAnalyzeResults, "results", "r", "", "Results CSV with repository, left, right, and merge columns")
	analyzeCmd.Flags().IntVarP(&flagAnalyzeIndex, "index", "i", 0, "Row index of the merge case to replay")
	analyzeCmd.Flags().StringVarP(&flagAnalyzeTool, "tool", "t", "", "Merge tool to replay (defaults to the configured default tool)")
	analyzeCmd.Flags().StringVar(&flagAnalyzeCompare, "compare", "", "Second tool to replay for side-by-side comparison")
	analyzeCmd.Flags().StringVar(&flagAnalyzeRemoteBase, "remote-base", "", "Clone source prefix (defaults to GitHub over https)")
	analyzeCmd.Flags().StringVar(&flagAnalyzeOut, "out", "merge-analysis", "Directory the diff3 reports are written to")

	if err := analyzeCmd.MarkFlagRequired("results"); err != nil {
		panic(err)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	configManager, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	toolName, tool, err := resolveTool(cfg, flagAnalyzeTool)
	if err != nil {
		return err
	}

	cases, err := analysis.LoadCases(flagAnalyzeResults)
	if err != nil {
		return err
	}
	if flagAnalyzeIndex < 0 || flagAnalyzeIndex >= len(cases) {
		return fmt.Errorf("index %d is out of range: %s has %d cases", flagAnalyzeIndex, flagAnalyzeResults, len(cases))
	}
	mergeCase := cases[flagAnalyzeIndex]

	log := CreateLogger()
	run := runner.NewLocal(log)
	scratchManager := scratch.NewManager(configManager.GetScratchDir(), log)
	analyzer := analysis.NewAnalyzer(run, scratchManager, cfg.Diff, log)

	workDir := filepath.Join(configManager.GetScratchDir(), "analysis")

	if flagAnalyzeCompare != "" {
		compareName, compareTool, err := resolveTool(cfg, flagAnalyzeCompare)
		if err != nil {
			return err
		}

		report, err := analyzer.AnalyzePair(cmd.Context(), analysis.PairOptions{
			Case:       mergeCase,
			First:      analysis.Tool{Name: toolName, Config: tool},
			Second:     analysis.Tool{Name: compareName, Config: compareTool},
			RemoteBase: flagAnalyzeRemoteBase,
			WorkDir:    workDir,
			OutputDir:  flagAnalyzeOut,
		})
		if err != nil {
			return fmt.Errorf("pair analysis failed: %w", err)
		}

		if ui.GlobalFormatter.IsJSON() {
			return ui.GlobalFormatter.Output(report)
		}

		ui.Info("Analyzed %s with %s and %s", mergeCase.Repository, toolName, compareName)
		for tool, paths := range report.ReportPaths {
			for _, p := range paths {
				ui.OutputLine("%s: %s", tool, p)
			}
		}
		ui.Success("%d conflicting files compared", len(report.ConflictFiles))
		return nil
	}

	report, err := analyzer.Analyze(cmd.Context(), analysis.Options{
		Case:       mergeCase,
		Tool:       tool,
		ToolName:   toolName,
		RemoteBase: flagAnalyzeRemoteBase,
		WorkDir:    workDir,
		OutputDir:  flagAnalyzeOut,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(report)
	}

	ui.Info("Analyzed %s with %s", mergeCase.Repository, toolName)
	for _, p := range report.ReportPaths {
		ui.OutputLine("%s", p)
	}
	ui.Success("%d conflicting files reported", len(report.ConflictFiles))
	return nil
}
