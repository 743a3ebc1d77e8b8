// Package conflict detects leftover textual conflict markers in a directory
// tree. The scan is purely textual: every file is checked line by line
// regardless of type or encoding, mirroring what a recursive grep over the
// working tree would report.
package conflict

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// readBufferSize is the chunk size for line reads. A line that overflows it
// is too long to be a marker line; its continuation is drained so the lines
// after it are still inspected. Minified or generated files carry very long
// lines and must not stop the scan.
const readBufferSize = 64 * 1024

// Scan walks the tree rooted at root and returns every line that is a
// conflict marker: the line is exactly a marker token, or a marker token
// followed by a label (git writes "<<<<<<< HEAD" and ">>>>>>> branch").
// The .git directory is skipped. Results are ordered by path, then line.
func Scan(root string) ([]Marker, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	var mu sync.Mutex
	var markers []Marker

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	for _, path := range files {
		g.Go(func() error {
			found, err := scanFile(path)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			for i := range found {
				found[i].Path = filepath.ToSlash(rel)
			}

			mu.Lock()
			markers = append(markers, found...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(markers, func(i, j int) bool {
		if markers[i].Path != markers[j].Path {
			return markers[i].Path < markers[j].Path
		}
		return markers[i].Line < markers[j].Line
	})

	return markers, nil
}

// scanFile returns the marker lines of a single file with Path left empty
func scanFile(path string) ([]Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, readBufferSize)

	var markers []Marker
	line := 0
	for {
		fragment, isPrefix, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return markers, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		line++

		// Copy before the next read invalidates the reader's buffer
		text := string(fragment)

		// An over-long line cannot be a marker line; drain its
		// continuation and keep scanning the lines after it
		overlong := isPrefix
		for isPrefix {
			_, isPrefix, err = reader.ReadLine()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("failed to scan %s: %w", path, err)
			}
		}
		if overlong {
			continue
		}

		if token, ok := markerToken(text); ok {
			markers = append(markers, Marker{Line: line, Token: token})
		}
	}
}

// markerToken reports whether a line is a conflict-marker line
func markerToken(line string) (string, bool) {
	for _, token := range []string{TokenBegin, TokenSeparator, TokenEnd} {
		if line == token || strings.HasPrefix(line, token+" ") {
			return token, true
		}
	}
	return "", false
}
