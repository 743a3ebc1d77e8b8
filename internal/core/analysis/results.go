package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// MergeCase is one row of a results dataset: a historical merge identified
// by its repository and the commits on each side, plus the merge commit the
// repository's developers actually produced.
type MergeCase struct {
	// Repository is the "owner/name" slug
	Repository string
	// Left and Right are the parent commit shas
	Left  string
	Right string
	// Merge is the programmer merge commit sha
	Merge string
}

// LoadCases reads merge cases from a results CSV. Columns are located by
// header name; both "repository" and "repo_name" are accepted for the slug.
func LoadCases(path string) ([]MergeCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Columns are located by header and guarded per row; a ragged row must
	// not reject the whole dataset
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse results csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("results csv %s is empty", path)
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	repoCol, ok := columns["repository"]
	if !ok {
		repoCol, ok = columns["repo_name"]
	}
	if !ok {
		return nil, fmt.Errorf("results csv %s has no repository column", path)
	}

	required := []string{"left", "right", "merge"}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("results csv %s has no %s column", path, name)
		}
	}

	var cases []MergeCase
	for i, row := range rows[1:] {
		get := func(col int) string {
			if col >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[col])
		}

		mergeCase := MergeCase{
			Repository: get(repoCol),
			Left:       get(columns["left"]),
			Right:      get(columns["right"]),
			Merge:      get(columns["merge"]),
		}
		if mergeCase.Repository == "" {
			return nil, fmt.Errorf("results csv %s: row %d has no repository", path, i+2)
		}
		cases = append(cases, mergeCase)
	}

	return cases, nil
}
