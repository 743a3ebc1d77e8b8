// Package commands provides CLI command implementations for mergebench.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mergebench/mergebench/internal/cli/ui"
	"github.com/mergebench/mergebench/internal/core/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize mergebench in the current project",
	Long:  "Initialize mergebench configuration in the current project directory",
	RunE:  runInit,
}

var forceInit bool

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Force initialization, overwriting existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configManager := config.NewManager(cwd)

	if configManager.IsInitialized() && !forceInit {
		return fmt.Errorf("mergebench already initialized. Use --force to reinitialize")
	}

	cfg := config.DefaultConfig()

	if err := configManager.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if err := os.MkdirAll(configManager.GetScratchDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	if err := os.MkdirAll(configManager.GetResultsDir(cfg), 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	ui.Success("Mergebench initialized successfully in %s", cwd)
	ui.Info("Edit %s to configure merge tools and the experiment runner", configManager.GetMergebenchDir())

	return nil
}
