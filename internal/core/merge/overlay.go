package merge

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Overlay copies every regular file under srcDir onto the same relative path
// under destDir, overwriting existing files and creating missing parents.
// Files present only in srcDir are added. The copy is deterministic: for a
// fixed source tree, repeated overlays produce byte-identical results.
// Returns the relative paths written, sorted.
func Overlay(srcDir, destDir string) ([]string, error) {
	var copied []string

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		target := filepath.Join(destDir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}

		if err := copyFile(path, target); err != nil {
			return fmt.Errorf("failed to overlay %s: %w", rel, err)
		}

		copied = append(copied, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(copied)
	return copied, nil
}

// copyFile replaces dst with the content and mode of src
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// O_CREATE only applies the mode to new files; an overwritten file keeps
	// its old permissions without this
	return os.Chmod(dst, info.Mode().Perm())
}
