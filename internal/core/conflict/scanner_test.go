package conflict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanCleanTree(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.txt", "hello\nworld\n")
	write(t, root, "sub/b.txt", "no markers here\n")

	markers, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(markers) != 0 {
		t.Errorf("expected no markers, got %v", markers)
	}
}

func TestScanFindsMarkers(t *testing.T) {
	root := t.TempDir()
	write(t, root, "conflicted.txt", strings.Join([]string{
		"context",
		"<<<<<<< HEAD",
		"ours",
		"=======",
		"theirs",
		">>>>>>> feature",
		"more context",
	}, "\n")+"\n")

	markers, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(markers) != 3 {
		t.Fatalf("expected 3 markers, got %v", markers)
	}

	want := []Marker{
		{Path: "conflicted.txt", Line: 2, Token: TokenBegin},
		{Path: "conflicted.txt", Line: 4, Token: TokenSeparator},
		{Path: "conflicted.txt", Line: 6, Token: TokenEnd},
	}
	for i, m := range markers {
		if m != want[i] {
			t.Errorf("marker %d: expected %+v, got %+v", i, want[i], m)
		}
	}
}

func TestScanOrdering(t *testing.T) {
	root := t.TempDir()
	write(t, root, "z.txt", "=======\n")
	write(t, root, "a.txt", "line\n=======\n")

	markers, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %v", markers)
	}
	if markers[0].Path != "a.txt" || markers[1].Path != "z.txt" {
		t.Errorf("expected path ordering, got %v", markers)
	}
}

func TestScanMarkersAfterLongLine(t *testing.T) {
	root := t.TempDir()

	// Minified files carry single lines far beyond any read buffer; markers
	// after such a line must still be found
	long := strings.Repeat("x", 2*1024*1024)
	write(t, root, "minified.js", strings.Join([]string{
		long,
		"<<<<<<< HEAD",
		"ours",
		"=======",
		"theirs",
		">>>>>>> feature",
	}, "\n")+"\n")

	markers, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(markers) != 3 {
		t.Fatalf("expected 3 markers after the long line, got %d: %v", len(markers), markers)
	}

	want := []Marker{
		{Path: "minified.js", Line: 2, Token: TokenBegin},
		{Path: "minified.js", Line: 4, Token: TokenSeparator},
		{Path: "minified.js", Line: 6, Token: TokenEnd},
	}
	for i, m := range markers {
		if m != want[i] {
			t.Errorf("marker %d: expected %+v, got %+v", i, want[i], m)
		}
	}
}

func TestScanSkipsGitDir(t *testing.T) {
	root := t.TempDir()
	write(t, root, ".git/ORIG_HEAD_MSG", "<<<<<<< HEAD\n")
	write(t, root, "file.txt", "clean\n")

	markers, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(markers) != 0 {
		t.Errorf("expected .git contents to be skipped, got %v", markers)
	}
}

func TestMarkerToken(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"<<<<<<<", true},
		{"<<<<<<< HEAD", true},
		{"=======", true},
		{">>>>>>>", true},
		{">>>>>>> feature-branch", true},
		{"========", false},           // heading underline, not a marker
		{" <<<<<<< HEAD", false},      // indented
		{"x =======", false},          // mid-line
		{"<<<<<<<extra", false},       // token glued to text
		{"code // ======= done", false},
	}

	for _, tt := range tests {
		_, got := markerToken(tt.line)
		if got != tt.want {
			t.Errorf("markerToken(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
