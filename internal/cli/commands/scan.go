package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mergebench/mergebench/internal/cli/ui"
	"github.com/mergebench/mergebench/internal/core/conflict"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a directory tree for leftover conflict markers",
	Long: `Walk a directory tree and report every line that is a git conflict marker.
Exits 0 when the tree is clean and 1 when any marker is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	markers, err := conflict.Scan(root)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if ui.GlobalFormatter.IsJSON() {
		if err := ui.GlobalFormatter.Output(markers); err != nil {
			return err
		}
		if len(markers) > 0 {
			return exit(1)
		}
		return nil
	}

	if len(markers) == 0 {
		ui.Success("No conflict markers found")
		return nil
	}

	for _, m := range markers {
		ui.OutputLine("%s:%d: %s", m.Path, m.Line, m.Token)
	}
	ui.Conflict()
	return exit(1)
}
