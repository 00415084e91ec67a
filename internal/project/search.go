package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/reply"
)

// Limits on a documentation search pass. The search runs inside the reply
// loop, so it stays deliberately cheap.
const (
	defaultMaxFiles = 80
	defaultMaxHits  = 8
	maxFileSize     = 300_000
)

// allowedExts are the file types worth scanning for documentation hints.
var allowedExts = map[string]struct{}{
	".md": {}, ".txt": {}, ".go": {}, ".py": {}, ".json": {},
	".yml": {}, ".yaml": {}, ".toml": {}, ".ini": {},
	".cs": {}, ".ts": {}, ".js": {}, ".lua": {},
}

// ignoredDirs are never descended into.
var ignoredDirs = map[string]struct{}{
	".git": {}, ".venv": {}, "venv": {}, "node_modules": {},
	"Library": {}, "Temp": {}, "Build": {}, "Logs": {},
	"obj": {}, "bin": {}, "vendor": {},
}

// Hit is one matching line in the project.
type Hit struct {
	Path    string
	Line    int
	Snippet string
}

// Searcher scans a project directory for lines matching query terms. It
// implements reply.HintSearcher for the generator.
type Searcher struct {
	Root     string
	MaxFiles int
	MaxHits  int
}

// NewSearcher builds a Searcher with default limits.
func NewSearcher(root string) *Searcher {
	return &Searcher{Root: root, MaxFiles: defaultMaxFiles, MaxHits: defaultMaxHits}
}

// candidateFiles picks a prioritized set of high-signal files to scan first.
func (s *Searcher) candidateFiles() []string {
	var out []string
	for _, name := range []string{
		"README.md", "README.MD", "readme.md",
		"CHANGELOG.md", "docs/README.md", "docs/readme.md",
	} {
		p := filepath.Join(s.Root, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

// Search returns up to MaxHits lines where every term appears
// (case-insensitive). Missing or empty roots simply return no hits.
func (s *Searcher) Search(terms []string) []Hit {
	if s == nil || s.Root == "" {
		return nil
	}
	if info, err := os.Stat(s.Root); err != nil || !info.IsDir() {
		return nil
	}

	var lowered []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lowered = append(lowered, t)
		}
	}
	if len(lowered) == 0 {
		return nil
	}

	files := s.candidateFiles()
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		seen[f] = struct{}{}
	}

	if len(files) < s.MaxFiles {
		filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if _, ignored := ignoredDirs[d.Name()]; ignored {
					return filepath.SkipDir
				}
				return nil
			}
			if len(files) >= s.MaxFiles {
				return filepath.SkipAll
			}
			if _, ok := allowedExts[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}
			if info, err := d.Info(); err != nil || info.Size() > maxFileSize {
				return nil
			}
			if _, dup := seen[path]; dup {
				return nil
			}
			seen[path] = struct{}{}
			files = append(files, path)
			return nil
		})
	}

	var hits []Hit
	for _, fp := range files {
		rel, err := filepath.Rel(s.Root, fp)
		if err != nil {
			rel = fp
		}
		data, err := os.ReadFile(fp)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(string(data), "\n") {
			lineLower := strings.ToLower(line)
			matched := true
			for _, t := range lowered {
				if !strings.Contains(lineLower, t) {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			snippet := strings.TrimSpace(line)
			if snippet == "" {
				continue
			}
			hits = append(hits, Hit{Path: filepath.ToSlash(rel), Line: i + 1, Snippet: snippet})
			if len(hits) >= s.MaxHits {
				return hits
			}
		}
	}
	return hits
}

// SearchHints satisfies reply.HintSearcher: distinct files only, at most
// two pointers, and never any line content.
func (s *Searcher) SearchHints(terms []string) []reply.Hint {
	var hints []reply.Hint
	seen := make(map[string]struct{})
	for _, hit := range s.Search(terms) {
		if _, dup := seen[hit.Path]; dup {
			continue
		}
		seen[hit.Path] = struct{}{}
		hints = append(hints, reply.Hint{Path: hit.Path, Line: hit.Line})
		if len(hints) >= 2 {
			break
		}
	}
	return hints
}
