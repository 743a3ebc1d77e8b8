// Package git provides git operations for mergebench. Read-side queries go
// through go-git; mutations (checkout, merge, clone, fetch) go through the
// git CLI so they behave exactly as they would for a developer at the shell.
package git

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mergebench/mergebench/internal/core/runner"
)

// conflictFileRe matches the per-file conflict lines git prints during a merge
var conflictFileRe = regexp.MustCompile(`CONFLICT \(.+\): Merge conflict in (.+)`)

// Operations provides git operations bound to a single repository
type Operations struct {
	repoPath string
	run      runner.Runner
}

// NewOperations creates a new git operations instance
func NewOperations(repoPath string, run runner.Runner) *Operations {
	return &Operations{
		repoPath: repoPath,
		run:      run,
	}
}

// Path returns the repository path
func (o *Operations) Path() string {
	return o.repoPath
}

// IsGitRepository checks if the path is a git repository
func (o *Operations) IsGitRepository() bool {
	_, err := gogit.PlainOpen(o.repoPath)
	return err == nil
}

// GetRepositoryInfo returns information about the repository
func (o *Operations) GetRepositoryInfo() (*RepositoryInfo, error) {
	repo, err := gogit.PlainOpen(o.repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	info := &RepositoryInfo{
		Path: o.repoPath,
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	info.CurrentBranch = ref.Name().Short()

	wt, err := repo.Worktree()
	if err == nil {
		status, err := wt.Status()
		if err == nil {
			info.IsClean = status.IsClean()
		}
	}

	return info, nil
}

// BranchExists checks whether a local branch exists
func (o *Operations) BranchExists(branch string) (bool, error) {
	repo, err := gogit.PlainOpen(o.repoPath)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}

	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, err
}

// RevisionExists checks whether a revision (branch, tag, or sha) resolves
func (o *Operations) RevisionExists(rev string) bool {
	repo, err := gogit.PlainOpen(o.repoPath)
	if err != nil {
		return false
	}

	_, err = repo.ResolveRevision(plumbing.Revision(rev))
	return err == nil
}

// CheckoutForce switches the working tree to the given revision, discarding
// local modifications
func (o *Operations) CheckoutForce(ctx context.Context, rev string) error {
	result, err := o.run.Run(ctx, runner.Spec{
		Command: []string{"git", "checkout", rev, "--force"},
		Dir:     o.repoPath,
	})
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %s", rev, strings.TrimSpace(string(result.Output)))
	}
	return nil
}

// CheckoutNewBranch creates a branch at the current HEAD and switches to it,
// replacing any existing branch of the same name
func (o *Operations) CheckoutNewBranch(ctx context.Context, branch string) error {
	result, err := o.run.Run(ctx, runner.Spec{
		Command: []string{"git", "checkout", "-B", branch, "--force"},
		Dir:     o.repoPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %s", branch, strings.TrimSpace(string(result.Output)))
	}
	return nil
}

// Merge performs a content-level three-way merge of the given branch into the
// current one, auto-committing on success and never opening an editor. A
// conflicted merge is not an error: the outcome reports the conflicting files
// and the working tree is left with markers for the caller to inspect. Any
// other nonzero exit is a hard failure.
func (o *Operations) Merge(ctx context.Context, branch string) (*MergeOutcome, error) {
	result, err := o.run.Run(ctx, runner.Spec{
		Command: []string{"git", "merge", "--no-edit", branch},
		Dir:     o.repoPath,
	})

	outcome := &MergeOutcome{Output: string(result.Output)}

	if err == nil {
		return outcome, nil
	}

	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode == 1 {
		files := parseConflictFiles(result.Output)
		if len(files) > 0 || strings.Contains(outcome.Output, "Automatic merge failed") {
			outcome.Conflicted = true
			outcome.ConflictFiles = files
			return outcome, nil
		}
	}

	return nil, fmt.Errorf("failed to merge %s: %s", branch, strings.TrimSpace(outcome.Output))
}

// MergeBase returns the best common ancestor of two revisions
func (o *Operations) MergeBase(ctx context.Context, revA, revB string) (string, error) {
	result, err := o.run.Run(ctx, runner.Spec{
		Command: []string{"git", "merge-base", revA, revB},
		Dir:     o.repoPath,
	})
	if err != nil {
		return "", fmt.Errorf("failed to find merge base of %s and %s: %s", revA, revB, strings.TrimSpace(string(result.Output)))
	}
	return strings.TrimSpace(string(result.Output)), nil
}

// Fetch updates all remote refs
func (o *Operations) Fetch(ctx context.Context) error {
	result, err := o.run.Run(ctx, runner.Spec{
		Command: []string{"git", "fetch", "--all"},
		Dir:     o.repoPath,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch: %s", strings.TrimSpace(string(result.Output)))
	}
	return nil
}

// Clone clones a repository URL into the given path and returns operations
// bound to the new clone
func Clone(ctx context.Context, run runner.Runner, url, path string) (*Operations, error) {
	result, err := run.Run(ctx, runner.Spec{
		Command: []string{"git", "clone", url, path},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %s", url, strings.TrimSpace(string(result.Output)))
	}
	return NewOperations(path, run), nil
}

// ParseConflictFiles extracts conflicting file paths from merge tool or git
// merge output
func ParseConflictFiles(output []byte) []string {
	return parseConflictFiles(output)
}

func parseConflictFiles(output []byte) []string {
	var files []string
	for _, match := range conflictFileRe.FindAllStringSubmatch(string(output), -1) {
		if len(match) > 1 {
			files = append(files, strings.TrimSpace(match[1]))
		}
	}
	return files
}
