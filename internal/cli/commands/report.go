package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mergebench/mergebench/internal/cli/ui"
	"github.com/mergebench/mergebench/internal/core/results"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize recorded merge outcomes per tool",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	configManager, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := results.NewStore(configManager.GetResultsDir(cfg))
	records, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read merge records: %w", err)
	}

	summaries := results.Summarize(records)

	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(summaries)
	}

	if len(summaries) == 0 {
		ui.Info("No merge outcomes recorded yet")
		return nil
	}

	ui.PrintSectionHeader("Merge outcomes", len(records))
	tbl := ui.NewTable("Tool", "Attempted", "Clean", "Conflicted")
	for _, s := range summaries {
		tbl.AddRow(s.Tool, s.Attempted, s.Clean, s.Conflicted)
	}
	tbl.Print()

	return nil
}
