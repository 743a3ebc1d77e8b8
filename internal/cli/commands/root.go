package commands

import (
	"github.com/spf13/cobra"

	"github.com/mergebench/mergebench/internal/cli/ui"
)

var rootCmd = &cobra.Command{
	Use:   "mergebench",
	Short: "Mergebench - Evaluate structural merge tools against git merges",

	Long: `Mergebench runs structural (AST-aware) merge tools side by side with
plain git merges across corpora of real repositories, overlays the tool's
output onto the merged working tree, and decides the outcome by scanning
for leftover conflict markers.`,

	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := ui.ParseFormat(flagOutputFormat)
		if err != nil {
			return err
		}
		return ui.SetGlobalFormatter(format)
	},
}

var flagOutputFormat string

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutputFormat, "output", "o", "pretty", "Output format (pretty, json)")
	RegisterLoggerFlags(rootCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
