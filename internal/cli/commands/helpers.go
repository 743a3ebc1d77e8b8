package commands

import (
	"fmt"

	"github.com/mergebench/mergebench/internal/core/config"
)

// loadConfig locates the project root and loads its configuration
func loadConfig() (*config.Manager, *config.Config, error) {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return nil, nil, err
	}

	configManager := config.NewManager(projectRoot)
	if !configManager.IsInitialized() {
		return nil, nil, fmt.Errorf("mergebench not initialized. Run 'mergebench init' first")
	}

	cfg, err := configManager.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return configManager, cfg, nil
}

// resolveTool looks up a tool by name, falling back to the project default
func resolveTool(cfg *config.Config, name string) (string, config.Tool, error) {
	if name == "" {
		name = cfg.Project.DefaultTool
	}
	tool, ok := cfg.Tools[name]
	if !ok {
		return "", config.Tool{}, fmt.Errorf("tool %q is not configured", name)
	}
	return name, tool, nil
}
