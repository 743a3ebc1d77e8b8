package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mergebench/mergebench/internal/core/config"
	"github.com/mergebench/mergebench/internal/core/runner"
)

func fakeRunnerScript(t *testing.T, exitCode string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on sh")
	}

	script := filepath.Join(t.TempDir(), "run.sh")
	body := "#!/bin/sh\necho \"args: $@\"\nexit " + exitCode + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return script
}

func testRunnerConfig(script string) config.RunnerConfig {
	return config.RunnerConfig{
		Script:  script,
		Dataset: "datasets/repos.csv",
		Label:   "repos-1k",
		Workers: 16,
		Cache:   "full",
		Timing:  false,
	}
}

func TestArguments(t *testing.T) {
	cfg := testRunnerConfig("./run.sh")

	args := Arguments(cfg, []string{"--only-trivial", "-v"})
	want := []string{
		"--dataset", "datasets/repos.csv",
		"--label", "repos-1k",
		"--workers", "16",
		"--cache", "full",
		"--no-timing",
		"--only-trivial", "-v",
	}

	if len(args) != len(want) {
		t.Fatalf("expected %v, got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d: expected %s, got %s", i, want[i], args[i])
		}
	}
}

func TestArgumentsWithTiming(t *testing.T) {
	cfg := testRunnerConfig("./run.sh")
	cfg.Timing = true

	args := Arguments(cfg, nil)
	for _, arg := range args {
		if arg == "--no-timing" {
			t.Error("expected no --no-timing flag when timing is enabled")
		}
	}
}

func TestRunForwardsArgsAndOutput(t *testing.T) {
	script := fakeRunnerScript(t, "0")

	var stdout bytes.Buffer
	b := New(runner.NewLocal(nil), nil)

	code, err := b.Run(context.Background(), Options{
		Runner:    testRunnerConfig(script),
		ExtraArgs: []string{"--passthrough"},
		Stdout:    &stdout,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if code != 0 {
		t.Errorf("expected exit 0, got %d", code)
	}

	output := stdout.String()
	if !strings.Contains(output, "--dataset datasets/repos.csv") {
		t.Errorf("expected dataset forwarded, got: %s", output)
	}
	if !strings.Contains(output, "--passthrough") {
		t.Errorf("expected extra args forwarded, got: %s", output)
	}
}

func TestRunForwardsExitCode(t *testing.T) {
	script := fakeRunnerScript(t, "7")

	b := New(runner.NewLocal(nil), nil)
	code, err := b.Run(context.Background(), Options{
		Runner: testRunnerConfig(script),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("expected runner exit to be forwarded, not an error: %v", err)
	}
	if code != 7 {
		t.Errorf("expected exit code 7 forwarded, got %d", code)
	}
}

func TestRunMissingScript(t *testing.T) {
	b := New(runner.NewLocal(nil), nil)

	_, err := b.Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected error for missing script")
	}
}
