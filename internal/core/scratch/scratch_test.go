package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateAndRemove(t *testing.T) {
	base := t.TempDir()
	manager := NewManager(base, nil)

	ws, err := manager.Create("merge")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(ws.Path), "merge-") {
		t.Errorf("expected workspace dir named after invocation, got %s", ws.Path)
	}

	info, err := os.Stat(ws.Path)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected workspace directory to exist: %v", err)
	}

	// Put something inside; Remove must take it along
	if err := os.WriteFile(filepath.Join(ws.Path, "out.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ws.Remove(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := os.Stat(ws.Path); !os.IsNotExist(err) {
		t.Error("expected workspace directory to be gone")
	}

	// Second removal is a no-op
	if err := ws.Remove(); err != nil {
		t.Errorf("expected repeated Remove to succeed, got %v", err)
	}
}

func TestCreateUniqueness(t *testing.T) {
	manager := NewManager(t.TempDir(), nil)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		ws, err := manager.Create("merge")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[ws.ID] {
			t.Fatalf("duplicate workspace ID: %s", ws.ID)
		}
		seen[ws.ID] = true
		if err := ws.Remove(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDefaultBaseDir(t *testing.T) {
	manager := NewManager("", nil)

	ws, err := manager.Create("scan")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	t.Cleanup(func() { _ = ws.Remove() })

	if !strings.HasPrefix(ws.Path, os.TempDir()) {
		t.Errorf("expected workspace under system temp dir, got %s", ws.Path)
	}
}

func TestRemoveNil(t *testing.T) {
	var ws *Workspace
	if err := ws.Remove(); err != nil {
		t.Errorf("expected nil workspace removal to be a no-op, got %v", err)
	}
}
