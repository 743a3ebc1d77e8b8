// Package config provides configuration management for mergebench projects.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// MergebenchDir is the directory name for mergebench metadata
	MergebenchDir = ".mergebench"
	// ConfigFile is the filename for the mergebench configuration
	ConfigFile = "config.yaml"
)

// Manager handles mergebench configuration
type Manager struct {
	projectRoot string
	configPath  string
}

// NewManager creates a new configuration manager
func NewManager(projectRoot string) *Manager {
	return &Manager{
		projectRoot: projectRoot,
		configPath:  filepath.Join(projectRoot, MergebenchDir, ConfigFile),
	}
}

// Load reads the configuration from disk
func (m *Manager) Load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("mergebench not initialized. Run 'mergebench init' first")
		}
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Save writes the configuration to disk
func (m *Manager) Save(config *Config) error {
	// Ensure the .mergebench directory exists
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// IsInitialized checks if mergebench has been initialized in the project
func (m *Manager) IsInitialized() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// GetProjectRoot returns the project root directory
func (m *Manager) GetProjectRoot() string {
	return m.projectRoot
}

// GetMergebenchDir returns the .mergebench directory path
func (m *Manager) GetMergebenchDir() string {
	return filepath.Join(m.projectRoot, MergebenchDir)
}

// GetScratchDir returns the directory under which scratch workspaces live
func (m *Manager) GetScratchDir() string {
	return filepath.Join(m.projectRoot, MergebenchDir, "scratch")
}

// GetResultsDir returns the directory for persisted merge results
func (m *Manager) GetResultsDir(config *Config) string {
	dir := config.Project.ResultsDir
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.projectRoot, dir)
}

// FindProjectRoot searches for the project root by looking for .mergebench
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree looking for .mergebench
	dir := cwd
	for {
		candidate := filepath.Join(dir, MergebenchDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no mergebench project found (missing %s directory)", MergebenchDir)
		}
		dir = parent
	}
}
