package git

// RepositoryInfo represents information about a git repository
type RepositoryInfo struct {
	Path          string
	CurrentBranch string
	IsClean       bool
}

// MergeOutcome describes how a content-level merge ended
type MergeOutcome struct {
	// Conflicted is true when the merge stopped with unresolved conflicts.
	// The working tree is left with conflict markers in place.
	Conflicted bool
	// ConflictFiles lists the paths git reported as conflicting, relative
	// to the repository root
	ConflictFiles []string
	// Output is the raw merge command output
	Output string
}
