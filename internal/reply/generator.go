package reply

import "fmt"

// maxReplyKeywords caps how many topic keywords steer a single reply.
const maxReplyKeywords = 8

// Hint is a pointer into local project documentation, used to ground a reply
// with a citation. Only the path and line number ever reach generated text,
// never file content.
type Hint struct {
	Path string
	Line int
}

// HintSearcher is the collaborator that scans a local project directory for
// lines related to the given terms. Implementations live outside the engine;
// a nil searcher simply produces less specific replies.
type HintSearcher interface {
	SearchHints(terms []string) []Hint
}

// hintIntents are the intents where a documentation pointer builds trust.
func wantsHint(intent Intent) bool {
	return intent == IntentQuestion || intent == IntentBug || intent == IntentFeedback
}

// formatHint renders at most two pointers into a short parenthetical.
func formatHint(hints []Hint) string {
	switch {
	case len(hints) == 0:
		return ""
	case len(hints) == 1:
		return fmt.Sprintf("(I found related bits in `%s` around line %d.)", hints[0].Path, hints[0].Line)
	default:
		return fmt.Sprintf("(I found related bits in `%s` around line %d and `%s` around line %d.)",
			hints[0].Path, hints[0].Line, hints[1].Path, hints[1].Line)
	}
}

// Generator wires classification, keyword extraction, tone selection and
// composition together for the caller. It holds no mutable state; every
// method is a pure function of its inputs plus the optional searcher.
type Generator struct {
	Persona  PersonaFlags
	Project  string
	Searcher HintSearcher

	// MaxKeywords caps how many topic keywords steer a reply; zero means
	// the default cap.
	MaxKeywords int
}

// Generate produces the reply candidate for one comment. Deduplication is a
// separate step (EnsureUnique); the candidate returned here is deterministic
// for a fixed CommentContext and Generator configuration.
func (g *Generator) Generate(ctx CommentContext) string {
	maxKeywords := g.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = maxReplyKeywords
	}

	intent := ClassifyIntent(ctx.CommentText)
	tone := ChooseTone(intent)
	keywords := ExtractKeywords(ctx.CommentText, maxKeywords)

	var hint string
	if g.Searcher != nil && wantsHint(intent) && len(keywords) > 0 {
		terms := keywords
		if len(terms) > 2 {
			terms = terms[:2]
		}
		hints := g.Searcher.SearchHints(terms)
		if len(hints) > 2 {
			hints = hints[:2]
		}
		hint = formatHint(hints)
	}

	return Compose(ctx, ComposeInput{
		Intent:   intent,
		Tone:     tone,
		Keywords: keywords,
		Persona:  g.Persona,
		Project:  g.Project,
		Hint:     hint,
	})
}
