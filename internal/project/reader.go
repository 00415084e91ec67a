// Package project reads a local project directory: summaries and change
// deltas for status posts, and documentation search for reply hints.
package project

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Reader reads and processes content from a local project directory.
type Reader struct {
	dir string
}

// NewReader builds a Reader for the given directory.
func NewReader(dir string) (*Reader, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project directory does not exist: %s", dir)
	}
	return &Reader{dir: dir}, nil
}

// Dir returns the project directory path.
func (r *Reader) Dir() string { return r.dir }

// Name returns the project's directory name, used in post titles and reply
// phrasing.
func (r *Reader) Name() string { return filepath.Base(r.dir) }

// ReadmeContent returns the first README file's content, or "".
func (r *Reader) ReadmeContent() string {
	matches, _ := filepath.Glob(filepath.Join(r.dir, "README*"))
	for _, m := range matches {
		if data, err := os.ReadFile(m); err == nil {
			return string(data)
		}
	}
	return ""
}

// Summary generates a short plain-text summary of the project: file counts
// plus a README preview.
func (r *Reader) Summary() string {
	var total, md, goFiles int
	filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		total++
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md":
			md++
		case ".go":
			goFiles++
		}
		return nil
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", r.Name())
	fmt.Fprintf(&b, "Total files: %d\n", total)
	fmt.Fprintf(&b, "Markdown files: %d\n", md)
	fmt.Fprintf(&b, "Go files: %d\n", goFiles)

	if readme := r.ReadmeContent(); readme != "" {
		lines := strings.Split(readme, "\n")
		if len(lines) > 5 {
			lines = lines[:5]
		}
		b.WriteString("\nREADME preview:\n" + strings.Join(lines, "\n"))
	}
	return b.String()
}

func (r *Reader) runGit(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %s", strings.Join(args, " "), strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// IsGitRepo reports whether the project directory is inside a git worktree.
func (r *Reader) IsGitRepo() bool {
	out, err := r.runGit("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.EqualFold(out, "true")
}

// GitHead returns the current HEAD commit, or "".
func (r *Reader) GitHead() string {
	out, err := r.runGit("rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

// CommitsSince returns oneline commit summaries since the given commit
// (all of recent history when since is "").
func (r *Reader) CommitsSince(since string, maxCount int) []string {
	rev := "HEAD"
	if since != "" {
		rev = since + "..HEAD"
	}
	out, err := r.runGit("log", rev, "--oneline", fmt.Sprintf("--max-count=%d", maxCount), "--no-decorate")
	if err != nil {
		return nil
	}
	return nonEmptyLines(out, maxCount)
}

// ChangedFilesSince returns name-status lines for files changed since the
// given commit.
func (r *Reader) ChangedFilesSince(since string, maxFiles int) []string {
	if since == "" {
		return nil
	}
	out, err := r.runGit("diff", "--name-status", since+"..HEAD")
	if err != nil {
		return nil
	}
	return nonEmptyLines(out, maxFiles)
}

// FSChangesSince lists files modified after the given time, the fallback
// for non-git projects.
func (r *Reader) FSChangesSince(since time.Time, maxFiles int) []string {
	var changed []string
	filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || len(changed) >= maxFiles {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(since) {
			rel, err := filepath.Rel(r.dir, path)
			if err != nil {
				rel = path
			}
			changed = append(changed, rel)
		}
		return nil
	})
	return changed
}

func nonEmptyLines(s string, max int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) >= max {
			break
		}
	}
	return out
}

// Delta is a minimal change summary between runs.
type Delta struct {
	Mode            string // "git" or "fs"
	Head            string
	HasChanges      bool
	InitialBaseline bool
	Commits         []string
	ChangedFiles    []string
	ScanTime        time.Time
}

// ComputeDelta summarizes what changed since the last run: git commits and
// changed files when the project is a git repo, else a filesystem mtime
// scan. A first run establishes a baseline without counting as changes.
func (r *Reader) ComputeDelta(lastHead string, lastScan time.Time, maxCommits, maxFiles int) Delta {
	if r.IsGitRepo() {
		head := r.GitHead()
		if lastHead == "" {
			// First run: baseline only, with a few recent commits for
			// visibility.
			return Delta{
				Mode:            "git",
				Head:            head,
				InitialBaseline: true,
				Commits:         r.CommitsSince("", maxCommits),
				ScanTime:        time.Now(),
			}
		}
		commits := r.CommitsSince(lastHead, maxCommits)
		return Delta{
			Mode:         "git",
			Head:         head,
			HasChanges:   len(commits) > 0 && head != lastHead,
			Commits:      commits,
			ChangedFiles: r.ChangedFilesSince(lastHead, maxFiles),
			ScanTime:     time.Now(),
		}
	}

	now := time.Now()
	since := lastScan
	if since.IsZero() {
		since = now.Add(-24 * time.Hour)
	}
	changed := r.FSChangesSince(since, maxFiles)
	return Delta{
		Mode:            "fs",
		HasChanges:      len(changed) > 0,
		InitialBaseline: lastScan.IsZero(),
		ChangedFiles:    changed,
		ScanTime:        now,
	}
}
