package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mergebench/mergebench/internal/tests/helpers"
)

func TestScanCommandCleanTree(t *testing.T) {
	dir := t.TempDir()
	helpers.WriteFile(t, dir, "a.txt", "no markers here\n")
	helpers.WriteFile(t, dir, "sub/b.txt", "still clean\n")

	rootCmd.SetArgs([]string{"scan", dir})
	require.NoError(t, rootCmd.Execute())
}

func TestScanCommandFindsMarkers(t *testing.T) {
	dir := t.TempDir()
	helpers.WriteFile(t, dir, "conflicted.txt",
		"<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> feature\n")

	rootCmd.SetArgs([]string{"scan", dir})
	err := rootCmd.Execute()
	require.Error(t, err)

	code, reported := ExitStatus(err)
	require.True(t, reported)
	require.Equal(t, 1, code)
}

func TestScanCommandMissingDir(t *testing.T) {
	rootCmd.SetArgs([]string{"scan", "/nonexistent/path/for/scan"})
	err := rootCmd.Execute()
	require.Error(t, err)
}
