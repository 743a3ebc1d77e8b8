package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mergebench/mergebench/internal/core/batch"
	"github.com/mergebench/mergebench/internal/core/runner"
)

var batchCmd = &cobra.Command{
	Use:   "batch [-- extra args...]",
	Short: "Delegate an experiment batch to the configured runner",
	Long: `Invoke the configured external experiment runner with the dataset, label,
worker count, and cache mode from configuration. Arguments after -- are
forwarded verbatim, and the runner's exit code is forwarded unchanged.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := CreateLogger()
	b := batch.New(runner.NewLocal(log), log)

	code, err := b.Run(cmd.Context(), batch.Options{
		Runner:    cfg.Runner,
		ExtraArgs: args,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}
	if code != 0 {
		return exit(code)
	}
	return nil
}
