package reply

import "strings"

// CommentContext carries everything the engine needs to know about one
// pending comment. It is built once per comment per run and never mutated.
type CommentContext struct {
	PostID      string
	CommentID   string
	AuthorName  string
	CommentText string
	CreatedAt   string
}

// NewCommentContext builds a CommentContext, applying the input-error policy:
// a missing author name becomes "there" and missing text stays empty (which
// classifies as IntentEmpty downstream). There is no hard failure path.
func NewCommentContext(postID, commentID, authorName, text, createdAt string) CommentContext {
	name := strings.TrimSpace(authorName)
	if name == "" {
		name = "there"
	}
	return CommentContext{
		PostID:      postID,
		CommentID:   commentID,
		AuthorName:  name,
		CommentText: text,
		CreatedAt:   createdAt,
	}
}

// AuthorKey is the dedup scope key for a comment author: the platform author
// id when available, else the lowercased display name. Two unidentified
// authors sharing a display name collapse into one scope; that weakening is
// accepted and documented rather than silently changed.
func AuthorKey(authorID, authorName string) string {
	if id := strings.TrimSpace(authorID); id != "" {
		return id
	}
	return strings.ToLower(strings.TrimSpace(authorName))
}

// PersonaFlags is the explicit persona configuration consumed by the
// composer. Flags are derived once from the persona text at the boundary;
// the engine never re-parses free text.
type PersonaFlags struct {
	DryHumor bool
}

// ParsePersona derives PersonaFlags from free-form persona markdown.
func ParsePersona(personaText string) PersonaFlags {
	lower := strings.ToLower(personaText)
	return PersonaFlags{
		DryHumor: strings.Contains(lower, "dry humor"),
	}
}
