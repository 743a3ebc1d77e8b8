// Package results persists merge evaluation outcomes. Records accumulate in
// one YAML file per project; writes are process-safe so parallel batch
// workers can append concurrently.
package results

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// ErrLockTimeout is returned when acquiring the store lock times out
var ErrLockTimeout = errors.New("timeout acquiring results lock")

// RecordsFile is the filename records are stored under
const RecordsFile = "merges.yaml"

// Record is one persisted merge outcome
type Record struct {
	Repository             string    `yaml:"repository"`
	Tool                   string    `yaml:"tool"`
	BranchA                string    `yaml:"branchA"`
	BranchB                string    `yaml:"branchB"`
	Conflicted             bool      `yaml:"conflicted"`
	ContentMergeConflicted bool      `yaml:"contentMergeConflicted"`
	MarkerCount            int       `yaml:"markerCount"`
	OverlaidFiles          int       `yaml:"overlaidFiles"`
	Timestamp              time.Time `yaml:"timestamp"`
}

// ToolSummary aggregates outcomes per tool
type ToolSummary struct {
	Tool       string
	Attempted  int
	Clean      int
	Conflicted int
}

// Store reads and appends merge records under a directory
type Store struct {
	path        string
	lockTimeout time.Duration
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{
		path:        filepath.Join(dir, RecordsFile),
		lockTimeout: 5 * time.Second,
	}
}

// Append adds a record, creating the store file if needed
func (s *Store) Append(ctx context.Context, record Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire results lock: %w", err)
	}
	if !locked {
		return ErrLockTimeout
	}
	defer func() { _ = lock.Unlock() }()

	records, err := s.load()
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	// Write atomically using temp file + rename
	tempFile := fmt.Sprintf("%s.%d.%d.tmp", s.path, os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename results file: %w", err)
	}

	return nil
}

// List returns all records in insertion order
func (s *Store) List(ctx context.Context) ([]Record, error) {
	// A store that was never written to is empty
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}

	lock := flock.New(s.path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := lock.TryRLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire results lock: %w", err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	defer func() { _ = lock.Unlock() }()

	return s.load()
}

// load reads the records file; a missing file is an empty store
func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	return records, nil
}

// Summarize aggregates records per tool, sorted by tool name
func Summarize(records []Record) []ToolSummary {
	byTool := make(map[string]*ToolSummary)
	for _, record := range records {
		summary, ok := byTool[record.Tool]
		if !ok {
			summary = &ToolSummary{Tool: record.Tool}
			byTool[record.Tool] = summary
		}
		summary.Attempted++
		if record.Conflicted {
			summary.Conflicted++
		} else {
			summary.Clean++
		}
	}

	summaries := make([]ToolSummary, 0, len(byTool))
	for _, summary := range byTool {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Tool < summaries[j].Tool
	})

	return summaries
}
