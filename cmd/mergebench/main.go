package main

import (
	"os"

	"github.com/mergebench/mergebench/internal/cli/commands"
	"github.com/mergebench/mergebench/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		if code, reported := commands.ExitStatus(err); reported {
			os.Exit(code)
		}
		ui.Error("Error: %v", err)
		os.Exit(1)
	}
}
