package merge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/mergebench/mergebench/internal/core/config"
	"github.com/mergebench/mergebench/internal/core/merge"
	"github.com/mergebench/mergebench/internal/core/runner"
	"github.com/mergebench/mergebench/internal/core/scratch"
	"github.com/mergebench/mergebench/internal/tests/helpers"
)

func newOrchestrator(t *testing.T) (*merge.Orchestrator, string) {
	t.Helper()
	scratchBase := t.TempDir()
	o := merge.NewOrchestrator(runner.NewLocal(nil), scratch.NewManager(scratchBase, nil), nil)
	return o, scratchBase
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no leftover scratch workspaces, found %d", len(entries))
	}
}

func TestMergeDisjointEdits(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	helpers.CreateDivergentBranches(t, repoDir, "feature", "main-edit", false)
	tool := helpers.CreateFakeMergeTool(t, nil)

	o, scratchBase := newOrchestrator(t)

	result, err := o.Merge(context.Background(), merge.Request{
		CloneDir: repoDir,
		BranchA:  "feature",
		BranchB:  "main-edit",
		Tool:     config.Tool{Command: tool},
		ToolName: "fake",
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if result.Conflicted {
		t.Errorf("expected clean merge, got markers: %v", result.Markers)
	}
	if result.ContentMergeConflicted {
		t.Error("expected clean content-level merge")
	}

	content, err := os.ReadFile(filepath.Join(repoDir, "shared.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "alpha-from-a") || !strings.Contains(string(content), "charlie-from-b") {
		t.Errorf("expected both edits in merged file, got:\n%s", content)
	}

	requireEmptyDir(t, scratchBase)
}

func TestMergeConflictingEdits(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	helpers.CreateDivergentBranches(t, repoDir, "feature", "main-edit", true)
	tool := helpers.CreateFakeMergeTool(t, nil)

	o, scratchBase := newOrchestrator(t)

	result, err := o.Merge(context.Background(), merge.Request{
		CloneDir: repoDir,
		BranchA:  "feature",
		BranchB:  "main-edit",
		Tool:     config.Tool{Command: tool},
		ToolName: "fake",
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if !result.Conflicted {
		t.Fatal("expected a conflicted result")
	}
	if !result.ContentMergeConflicted {
		t.Error("expected the content-level merge to conflict")
	}
	if len(result.Markers) == 0 {
		t.Fatal("expected marker lines")
	}
	if result.Markers[0].Path != "shared.txt" {
		t.Errorf("expected markers in shared.txt, got %v", result.Markers)
	}

	// The merge is left applied, markers in place, for manual resolution
	content, err := os.ReadFile(filepath.Join(repoDir, "shared.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "<<<<<<<") {
		t.Error("expected conflict markers left in the working tree")
	}

	requireEmptyDir(t, scratchBase)
}

func TestMergeToolResolvesConflict(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	helpers.CreateDivergentBranches(t, repoDir, "feature", "main-edit", true)

	resolved := "alpha-resolved\n\nbravo\n\ncharlie\n"
	tool := helpers.CreateFakeMergeTool(t, map[string]string{
		"shared.txt": resolved,
	})

	o, scratchBase := newOrchestrator(t)

	result, err := o.Merge(context.Background(), merge.Request{
		CloneDir: repoDir,
		BranchA:  "feature",
		BranchB:  "main-edit",
		Tool:     config.Tool{Command: tool},
		ToolName: "fake",
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// The content-level merge conflicted, but the structural tool's output
	// overlays the markers away
	if !result.ContentMergeConflicted {
		t.Error("expected the content-level merge to conflict")
	}
	if result.Conflicted {
		t.Errorf("expected overlay to resolve the conflict, got markers: %v", result.Markers)
	}
	if len(result.OverlaidFiles) != 1 || result.OverlaidFiles[0] != "shared.txt" {
		t.Errorf("expected shared.txt overlaid, got %v", result.OverlaidFiles)
	}

	content, err := os.ReadFile(filepath.Join(repoDir, "shared.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != resolved {
		t.Errorf("expected tool output in working tree, got:\n%s", content)
	}

	requireEmptyDir(t, scratchBase)
}

func TestMergeToolOutputAddsFile(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	helpers.CreateDivergentBranches(t, repoDir, "feature", "main-edit", false)

	tool := helpers.CreateFakeMergeTool(t, map[string]string{
		"generated/extra.txt": "added by tool\n",
	})

	o, _ := newOrchestrator(t)

	result, err := o.Merge(context.Background(), merge.Request{
		CloneDir: repoDir,
		BranchA:  "feature",
		BranchB:  "main-edit",
		Tool:     config.Tool{Command: tool},
		ToolName: "fake",
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if result.Conflicted {
		t.Error("expected clean merge")
	}

	content, err := os.ReadFile(filepath.Join(repoDir, "generated", "extra.txt"))
	if err != nil {
		t.Fatalf("expected tool-only file to be added: %v", err)
	}
	if string(content) != "added by tool\n" {
		t.Errorf("unexpected content: %s", content)
	}
}

func TestMergeValidation(t *testing.T) {
	o, _ := newOrchestrator(t)
	ctx := context.Background()
	tool := config.Tool{Command: "true"}

	t.Run("not a repository", func(t *testing.T) {
		_, err := o.Merge(ctx, merge.Request{
			CloneDir: t.TempDir(),
			BranchA:  "a",
			BranchB:  "b",
			Tool:     tool,
		})
		if !errors.Is(err, merge.ErrNotARepository) {
			t.Errorf("expected ErrNotARepository, got %v", err)
		}
	})

	t.Run("unknown branch fails before side effects", func(t *testing.T) {
		repoDir := helpers.CreateTestRepo(t)
		helpers.CreateDivergentBranches(t, repoDir, "feature", "main-edit", false)

		before := helpers.Git(t, repoDir, "rev-parse", "HEAD")

		_, err := o.Merge(ctx, merge.Request{
			CloneDir: repoDir,
			BranchA:  "feature",
			BranchB:  "missing-branch",
			Tool:     tool,
		})
		if err == nil {
			t.Fatal("expected error for unknown branch")
		}

		after := helpers.Git(t, repoDir, "rev-parse", "HEAD")
		if before != after {
			t.Error("expected no repository mutation on validation failure")
		}
	})
}

func TestMergeBusyClone(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	helpers.CreateDivergentBranches(t, repoDir, "feature", "main-edit", false)
	tool := helpers.CreateFakeMergeTool(t, nil)

	// Hold the clone lock as a concurrent invocation would
	lock := flock.New(filepath.Join(repoDir, ".git", "mergebench.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("failed to pre-acquire clone lock: %v", err)
	}
	defer func() { _ = lock.Unlock() }()

	o := merge.NewOrchestrator(
		runner.NewLocal(nil),
		scratch.NewManager(t.TempDir(), nil),
		nil,
		merge.WithLockTimeout(200*time.Millisecond),
	)

	_, err = o.Merge(context.Background(), merge.Request{
		CloneDir: repoDir,
		BranchA:  "feature",
		BranchB:  "main-edit",
		Tool:     config.Tool{Command: tool},
		ToolName: "fake",
	})
	if !errors.Is(err, merge.ErrCloneBusy) {
		t.Errorf("expected ErrCloneBusy, got %v", err)
	}
}

func TestMergeToolFailure(t *testing.T) {
	repoDir := helpers.CreateTestRepo(t)
	helpers.CreateDivergentBranches(t, repoDir, "feature", "main-edit", false)

	o, scratchBase := newOrchestrator(t)

	_, err := o.Merge(context.Background(), merge.Request{
		CloneDir: repoDir,
		BranchA:  "feature",
		BranchB:  "main-edit",
		Tool:     config.Tool{Command: "false"},
		ToolName: "failing",
	})
	if err == nil {
		t.Fatal("expected tool failure to propagate")
	}

	// Cleanup still ran
	requireEmptyDir(t, scratchBase)
}
