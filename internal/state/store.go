// Package state persists the daemon's cross-run memory: reply hashes per
// dedup scope, responded comment ids, a reply audit trail, and small
// key/value items like the cached agent identity and the last seen git head.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/p3nGu1nZz/moltbook-daemon/internal/reply"
)

// Scope names for reply_hashes rows.
const (
	ScopePost   = "post"
	ScopeAuthor = "author"
	ScopeGlobal = "global"
)

// Store handles all database operations.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite state database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reply_hashes (
		hash TEXT NOT NULL,
		scope TEXT NOT NULL,
		scope_key TEXT NOT NULL,
		comment_id TEXT,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (hash, scope, scope_key)
	);

	CREATE TABLE IF NOT EXISTS responded_comments (
		post_id TEXT NOT NULL,
		comment_id TEXT NOT NULL,
		responded_at DATETIME,
		PRIMARY KEY (post_id, comment_id)
	);

	CREATE TABLE IF NOT EXISTS sent_replies (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		comment_id TEXT NOT NULL,
		author_key TEXT NOT NULL,
		hash TEXT NOT NULL,
		status TEXT NOT NULL,
		outcome TEXT NOT NULL,
		draft_path TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate state db: %w", err)
	}
	return nil
}

// LoadDedupState builds a reply.DedupState seeded with every persisted hash.
// Hashes are append-only, so loading them all keeps every scope's history
// intact across runs.
func (s *Store) LoadDedupState() (*reply.DedupState, error) {
	rows, err := s.db.Query(`SELECT hash, scope, scope_key FROM reply_hashes`)
	if err != nil {
		return nil, fmt.Errorf("failed to load reply hashes: %w", err)
	}
	defer rows.Close()

	ds := reply.NewDedupState()
	for rows.Next() {
		var hash, scope, key string
		if err := rows.Scan(&hash, &scope, &key); err != nil {
			return nil, fmt.Errorf("failed to scan reply hash: %w", err)
		}
		switch scope {
		case ScopePost:
			ds.SeedPost(key, []string{hash})
		case ScopeAuthor:
			ds.SeedAuthor(key, []string{hash})
		case ScopeGlobal:
			ds.SeedGlobal([]string{hash})
		}
	}
	return ds, rows.Err()
}

// ReplyRecord is the durable trace of one accepted reply.
type ReplyRecord struct {
	ID        string
	RunID     string
	PostID    string
	CommentID string
	AuthorKey string
	Hash      string
	Status    reply.Status
	Outcome   reply.Outcome
	DraftPath string
	CreatedAt time.Time
}

// RecordReply registers an accepted reply atomically: the hash lands in all
// three scopes, the comment is marked responded, and an audit row is
// written. Either everything persists or nothing does.
func (s *Store) RecordReply(rec ReplyRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	insertHash := `INSERT OR IGNORE INTO reply_hashes (hash, scope, scope_key, comment_id, created_at)
		VALUES (?, ?, ?, ?, ?)`
	for _, sc := range []struct{ scope, key string }{
		{ScopePost, rec.PostID},
		{ScopeAuthor, rec.AuthorKey},
		{ScopeGlobal, ""},
	} {
		if _, err := tx.Exec(insertHash, rec.Hash, sc.scope, sc.key, rec.CommentID, rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert %s-scope hash: %w", sc.scope, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO responded_comments (post_id, comment_id, responded_at) VALUES (?, ?, ?)`,
		rec.PostID, rec.CommentID, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to mark comment responded: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO sent_replies (id, run_id, post_id, comment_id, author_key, hash, status, outcome, draft_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.PostID, rec.CommentID, rec.AuthorKey,
		rec.Hash, string(rec.Status), string(rec.Outcome), rec.DraftPath, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert reply audit row: %w", err)
	}

	return tx.Commit()
}

// RespondedComments returns the comment ids already answered on a post.
func (s *Store) RespondedComments(postID string) (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT comment_id FROM responded_comments WHERE post_id = ?`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responded comments: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		out[cid] = struct{}{}
	}
	return out, rows.Err()
}

// GetKV returns the stored value for key, or "" when absent.
func (s *Store) GetKV(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read kv %q: %w", key, err)
	}
	return value, nil
}

// SetKV upserts a key/value pair.
func (s *Store) SetKV(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write kv %q: %w", key, err)
	}
	return nil
}

// Agent returns the cached agent identity, if any.
func (s *Store) Agent() (id, name string, err error) {
	if id, err = s.GetKV("agent.id"); err != nil {
		return "", "", err
	}
	if name, err = s.GetKV("agent.name"); err != nil {
		return "", "", err
	}
	return id, name, nil
}

// SetAgent caches the agent identity.
func (s *Store) SetAgent(id, name string) error {
	if err := s.SetKV("agent.id", id); err != nil {
		return err
	}
	return s.SetKV("agent.name", name)
}
