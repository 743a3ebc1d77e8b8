package config

import "fmt"

// Validate checks a loaded configuration for inconsistencies
func Validate(c *Config) error {
	for name, tool := range c.Tools {
		if tool.Command == "" && tool.Jar == "" {
			return fmt.Errorf("tool %q: either command or jar must be set", name)
		}
		if tool.Command != "" && tool.Jar != "" {
			return fmt.Errorf("tool %q: command and jar are mutually exclusive", name)
		}
	}

	if c.Project.DefaultTool != "" {
		if _, ok := c.Tools[c.Project.DefaultTool]; !ok {
			return fmt.Errorf("defaultTool %q is not defined in tools", c.Project.DefaultTool)
		}
	}

	if c.Runner.Workers < 0 {
		return fmt.Errorf("runner workers must be non-negative, got %d", c.Runner.Workers)
	}

	return nil
}
