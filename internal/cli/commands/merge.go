package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mergebench/mergebench/internal/cli/ui"
	"github.com/mergebench/mergebench/internal/core/merge"
	"github.com/mergebench/mergebench/internal/core/results"
	"github.com/mergebench/mergebench/internal/core/runner"
	"github.com/mergebench/mergebench/internal/core/scratch"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <cloneDir> <branchA> <branchB>",
	Short: "Run a structural merge tool alongside a git merge",
	Long: `Merge branchB into branchA inside an existing clone, run the configured
structural merge tool, overlay its output onto the merged working tree, and
scan the tree for leftover conflict markers.

Exits 0 when the tree is marker-free and 1 when a conflict is detected. The
working tree is left as-is in both cases so the outcome can be inspected.`,
	Args: cobra.ExactArgs(3),
	RunE: runMerge,
}

var flagMergeTool string

func init() {
	mergeCmd.Flags().StringVarP(&flagMergeTool, "tool", "t", "", "Merge tool to run (defaults to the configured default tool)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	cloneDir, branchA, branchB := args[0], args[1], args[2]

	configManager, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	toolName, tool, err := resolveTool(cfg, flagMergeTool)
	if err != nil {
		return err
	}

	log := CreateLogger()
	run := runner.NewLocal(log)
	scratchManager := scratch.NewManager(configManager.GetScratchDir(), log)
	orchestrator := merge.NewOrchestrator(run, scratchManager, log)

	result, err := orchestrator.Merge(cmd.Context(), merge.Request{
		CloneDir: cloneDir,
		BranchA:  branchA,
		BranchB:  branchB,
		Tool:     tool,
		ToolName: toolName,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	store := results.NewStore(configManager.GetResultsDir(cfg))
	record := results.Record{
		Repository:             cloneDir,
		Tool:                   toolName,
		BranchA:                branchA,
		BranchB:                branchB,
		Conflicted:             result.Conflicted,
		ContentMergeConflicted: result.ContentMergeConflicted,
		MarkerCount:            len(result.Markers),
		OverlaidFiles:          len(result.OverlaidFiles),
		Timestamp:              time.Now().UTC(),
	}
	if err := store.Append(cmd.Context(), record); err != nil {
		ui.Warning("Failed to record merge outcome: %v", err)
	}

	if ui.GlobalFormatter.IsJSON() {
		if err := ui.GlobalFormatter.Output(record); err != nil {
			return err
		}
		if result.Conflicted {
			return exit(1)
		}
		return nil
	}

	if result.Conflicted {
		ui.Conflict()
		for _, m := range result.Markers {
			ui.OutputLine("  %s", ui.DimStyle.Render(fmt.Sprintf("%s:%d: %s", m.Path, m.Line, m.Token)))
		}
		return exit(1)
	}

	ui.Success("Merge completed without conflicts (%d files overlaid)", len(result.OverlaidFiles))
	return nil
}
