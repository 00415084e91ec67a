package project

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReaderMissingDir(t *testing.T) {
	_, err := NewReader("/no/such/dir")
	assert.Error(t, err)
}

func TestSummaryIncludesCountsAndReadme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# CatGame\nA small game.\n")
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "docs/guide.md", "guide\n")

	r, err := NewReader(root)
	require.NoError(t, err)

	summary := r.Summary()
	assert.Contains(t, summary, "Total files: 3")
	assert.Contains(t, summary, "Markdown files: 2")
	assert.Contains(t, summary, "Go files: 1")
	assert.Contains(t, summary, "README preview:")
	assert.Contains(t, summary, "# CatGame")
}

func TestComputeDeltaFilesystemFallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "one\n")

	r, err := NewReader(root)
	require.NoError(t, err)

	// First run: baseline.
	d := r.ComputeDelta("", time.Time{}, 10, 25)
	assert.Equal(t, "fs", d.Mode)
	assert.True(t, d.InitialBaseline)
	assert.False(t, d.ScanTime.IsZero())

	// Everything in the dir is newer than a scan from yesterday.
	d = r.ComputeDelta("", time.Now().Add(-24*time.Hour), 10, 25)
	assert.True(t, d.HasChanges)
	assert.Contains(t, d.ChangedFiles, "a.md")

	// Nothing is newer than a scan from the future.
	d = r.ComputeDelta("", time.Now().Add(time.Hour), 10, 25)
	assert.False(t, d.HasChanges)
}

func TestComputeDeltaGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
	writeFile(t, root, "a.md", "one\n")
	run("add", ".")
	run("commit", "-m", "first")

	r, err := NewReader(root)
	require.NoError(t, err)
	require.True(t, r.IsGitRepo())

	// Baseline run.
	d := r.ComputeDelta("", time.Time{}, 10, 25)
	assert.Equal(t, "git", d.Mode)
	assert.True(t, d.InitialBaseline)
	assert.False(t, d.HasChanges)
	assert.NotEmpty(t, d.Head)
	firstHead := d.Head

	// No new commits: no changes.
	d = r.ComputeDelta(firstHead, time.Time{}, 10, 25)
	assert.False(t, d.HasChanges)

	// One new commit: change detected with commit and file lists.
	writeFile(t, root, "b.md", "two\n")
	run("add", ".")
	run("commit", "-m", "second")

	d = r.ComputeDelta(firstHead, time.Time{}, 10, 25)
	assert.True(t, d.HasChanges)
	assert.NotEqual(t, firstHead, d.Head)
	require.Len(t, d.Commits, 1)
	assert.Contains(t, d.Commits[0], "second")
	require.Len(t, d.ChangedFiles, 1)
	assert.Contains(t, d.ChangedFiles[0], "b.md")
}
