package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSearchFindsMatchingLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# CatGame\n\nThe physics engine lives in engine/physics.\n")
	writeFile(t, root, "docs/setup.md", "install notes\nphysics tuning guide\n")
	writeFile(t, root, "notes.bin", "physics") // wrong extension, skipped

	s := NewSearcher(root)
	hits := s.Search([]string{"physics"})
	require.NotEmpty(t, hits)

	paths := map[string]struct{}{}
	for _, h := range hits {
		paths[h.Path] = struct{}{}
		assert.Greater(t, h.Line, 0)
	}
	_, ok := paths["README.md"]
	assert.True(t, ok)
	_, ok = paths["notes.bin"]
	assert.False(t, ok)
}

func TestSearchRequiresAllTerms(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "physics here\nengine there\nphysics engine together\n")

	hits := NewSearcher(root).Search([]string{"physics", "engine"})
	require.Len(t, hits, 1)
	assert.Equal(t, 3, hits[0].Line)
}

func TestSearchSkipsIgnoredDirsAndEmptyInput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/pkg/readme.md", "physics\n")
	writeFile(t, root, ".git/config.md", "physics\n")

	s := NewSearcher(root)
	assert.Empty(t, s.Search([]string{"physics"}))
	assert.Empty(t, s.Search(nil))
	assert.Empty(t, s.Search([]string{"  "}))
	assert.Empty(t, NewSearcher(filepath.Join(root, "missing")).Search([]string{"x"}))
}

func TestSearchHintsDistinctFilesCapTwo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "physics a\nphysics b\n")
	writeFile(t, root, "docs/a.md", "physics c\n")
	writeFile(t, root, "docs/b.md", "physics d\n")

	hints := NewSearcher(root).SearchHints([]string{"physics"})
	require.Len(t, hints, 2)
	assert.NotEqual(t, hints[0].Path, hints[1].Path)
}
