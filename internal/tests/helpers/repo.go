// Package helpers provides git repository fixtures for mergebench tests.
package helpers

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestRepo creates a temporary git repository with an initial commit
// on main and returns its path
func CreateTestRepo(t *testing.T) string {
	t.Helper()

	// Store original environment and restore after test
	origGitDir := os.Getenv("GIT_DIR")
	origGitWorkTree := os.Getenv("GIT_WORK_TREE")
	origGitIndexFile := os.Getenv("GIT_INDEX_FILE")

	// Clear git environment variables for test isolation
	os.Unsetenv("GIT_DIR")
	os.Unsetenv("GIT_WORK_TREE")
	os.Unsetenv("GIT_INDEX_FILE")

	t.Cleanup(func() {
		if origGitDir != "" {
			os.Setenv("GIT_DIR", origGitDir)
		}
		if origGitWorkTree != "" {
			os.Setenv("GIT_WORK_TREE", origGitWorkTree)
		}
		if origGitIndexFile != "" {
			os.Setenv("GIT_INDEX_FILE", origGitIndexFile)
		}
	})

	// Create temporary directory in system temp, not in current directory.
	// This ensures we're not inside any existing git repository.
	systemTmp := os.TempDir()
	tmpDir, err := os.MkdirTemp(systemTmp, "mergebench-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	InitRepoAt(t, tmpDir)
	return tmpDir
}

// InitRepoAt initializes a git repository with an initial commit on main in
// an existing directory
func InitRepoAt(t *testing.T, tmpDir string) {
	t.Helper()

	// Initialize git repo with explicit settings
	cmd := exec.Command("git", "init", "--initial-branch=main")
	cmd.Dir = tmpDir
	if err := cmd.Run(); err != nil {
		// Fallback for older git versions
		cmd = exec.Command("git", "init")
		cmd.Dir = tmpDir
		output, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("Failed to init git repo: %v, output: %s", err, output)
		}
	}

	Git(t, tmpDir, "config", "user.email", "test@example.com")
	Git(t, tmpDir, "config", "user.name", "Test User")

	cmd = exec.Command("git", "config", "init.templateDir", "")
	cmd.Dir = tmpDir
	_ = cmd.Run()

	WriteFile(t, tmpDir, "README.md", "# Test Repository\n")
	Git(t, tmpDir, "add", "README.md")
	Git(t, tmpDir, "commit", "-m", "Initial commit")

	cmd = exec.Command("git", "branch", "-M", "main")
	cmd.Dir = tmpDir
	_ = cmd.Run() // might already be on main
}

// Git runs a git command in dir, failing the test on error
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v, output: %s", args, err, output)
	}
	return string(output)
}

// WriteFile writes content to a path relative to dir, creating parents
func WriteFile(t *testing.T, dir, relPath, content string) {
	t.Helper()

	path := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create parent dirs for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", relPath, err)
	}
}

// CommitFile writes a file and commits it on the current branch
func CommitFile(t *testing.T, dir, relPath, content, message string) {
	t.Helper()

	WriteFile(t, dir, relPath, content)
	Git(t, dir, "add", relPath)
	Git(t, dir, "commit", "-m", message)
}

// CreateDivergentBranches creates two branches off main that both edit the
// same file. With disjoint edits the branches merge cleanly; with
// conflicting edits a content-level merge stops with markers.
//
// The file starts as three sections. branchA rewrites the first line,
// branchB rewrites the last (disjoint) or the same first line (conflicting).
func CreateDivergentBranches(t *testing.T, repoDir, branchA, branchB string, conflicting bool) {
	t.Helper()

	base := "alpha\n\nbravo\n\ncharlie\n"
	CommitFile(t, repoDir, "shared.txt", base, "Add shared file")

	Git(t, repoDir, "checkout", "-b", branchA)
	CommitFile(t, repoDir, "shared.txt", "alpha-from-a\n\nbravo\n\ncharlie\n", "Edit on "+branchA)

	Git(t, repoDir, "checkout", "main")
	Git(t, repoDir, "checkout", "-b", branchB)
	if conflicting {
		CommitFile(t, repoDir, "shared.txt", "alpha-from-b\n\nbravo\n\ncharlie\n", "Edit on "+branchB)
	} else {
		CommitFile(t, repoDir, "shared.txt", "alpha\n\nbravo\n\ncharlie-from-b\n", "Edit on "+branchB)
	}

	Git(t, repoDir, "checkout", "main")
}

// CreateFakeMergeTool writes an executable script that mimics a structural
// merge tool: it copies the given files into the output directory it is
// handed as its fourth argument. The files map is relative path -> content.
// Returns the script path.
func CreateFakeMergeTool(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-merge-tool.sh")

	body := "#!/bin/sh\n# args: repo branchA branchB outputDir\nout=\"$4\"\n"
	for relPath, content := range files {
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		sub := filepath.Dir(relPath)
		if sub != "." {
			body += "mkdir -p \"$out/" + sub + "\"\n"
		}
		body += "cat > \"$out/" + relPath + "\" <<'MERGEBENCH_EOF'\n" + content + "MERGEBENCH_EOF\n"
	}
	body += "exit 0\n"

	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("Failed to write fake merge tool: %v", err)
	}
	return script
}
