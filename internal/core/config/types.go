package config

// Config represents the main mergebench configuration
type Config struct {
	Version string          `yaml:"version"`
	Project ProjectConfig   `yaml:"project"`
	Tools   map[string]Tool `yaml:"tools"`
	Runner  RunnerConfig    `yaml:"runner"`
	Diff    DiffConfig      `yaml:"diff"`
}

// ProjectConfig represents project-specific configuration
type ProjectConfig struct {
	Name        string `yaml:"name"`
	DefaultTool string `yaml:"defaultTool"`
	ResultsDir  string `yaml:"resultsDir"`
}

// Tool describes how to invoke a structural merge tool. The tool is run as
// an external process with the repository path, both branch names, and the
// scratch output directory appended as positional arguments.
type Tool struct {
	// Command is the executable to run. Ignored when Jar is set.
	Command string `yaml:"command,omitempty"`
	// Jar is an optional path to a Java merge tool; it is run via "java -jar".
	Jar string `yaml:"jar,omitempty"`
	// Args are extra arguments placed before the positional arguments.
	Args []string `yaml:"args,omitempty"`
}

// RunnerConfig describes the external experiment runner and the fixed
// parameters forwarded to it by the batch command.
type RunnerConfig struct {
	Script  string `yaml:"script"`
	Dataset string `yaml:"dataset"`
	Label   string `yaml:"label"`
	Workers int    `yaml:"workers"`
	Cache   string `yaml:"cache"`
	Timing  bool   `yaml:"timing"`
}

// DiffConfig names the comparison binaries used by the analyze command.
type DiffConfig struct {
	Diff3Bin string `yaml:"diff3Bin"`
	DiffBin  string `yaml:"diffBin"`
}

// CommandLine returns the executable and leading arguments for a tool
func (t Tool) CommandLine() (string, []string) {
	if t.Jar != "" {
		args := append([]string{"-jar", t.Jar}, t.Args...)
		return "java", args
	}
	return t.Command, t.Args
}

// DefaultConfig returns the default mergebench configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Project: ProjectConfig{
			Name:        "mergebench-project",
			DefaultTool: "gitmerge",
			ResultsDir:  "results",
		},
		Tools: map[string]Tool{
			"gitmerge": {
				Command: "git-merge-tool.sh",
			},
		},
		Runner: RunnerConfig{
			Script:  "./run.sh",
			Dataset: "datasets/repos.csv",
			Label:   "repos",
			Workers: 8,
			Cache:   "full",
			Timing:  false,
		},
		Diff: DiffConfig{
			Diff3Bin: "diff3",
			DiffBin:  "diff",
		},
	}
}

// applyDefaults fills zero values with defaults after loading
func applyDefaults(c *Config) {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Project.ResultsDir == "" {
		c.Project.ResultsDir = "results"
	}
	if c.Runner.Workers == 0 {
		c.Runner.Workers = 8
	}
	if c.Runner.Cache == "" {
		c.Runner.Cache = "full"
	}
	if c.Diff.Diff3Bin == "" {
		c.Diff.Diff3Bin = "diff3"
	}
	if c.Diff.DiffBin == "" {
		c.Diff.DiffBin = "diff"
	}
}
