// Package drafts persists reply text to disk before anything is sent,
// so every outgoing reply has an on-disk audit trail.
package drafts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer saves reply drafts under a base directory, one file per
// comment, grouped by post.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir. The directory is created
// lazily on the first save.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the base draft directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Save writes the reply text to <dir>/<postID>/<commentID>.md and
// returns the path. The file holds the reply text only, terminated
// with a single newline.
func (w *Writer) Save(postID, commentID, text string) (string, error) {
	if postID == "" || commentID == "" {
		return "", fmt.Errorf("draft needs a post id and comment id")
	}

	postDir := filepath.Join(w.dir, sanitizeComponent(postID))
	if err := os.MkdirAll(postDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create draft directory: %w", err)
	}

	path := filepath.Join(postDir, sanitizeComponent(commentID)+".md")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("failed to write draft: %w", err)
	}

	return path, nil
}

// sanitizeComponent keeps ids safe to use as file names. Platform ids
// are UUID-like, so this only guards against surprises.
func sanitizeComponent(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
