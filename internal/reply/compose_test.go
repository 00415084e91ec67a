package reply

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genFor(persona PersonaFlags) *Generator {
	return &Generator{Persona: persona, Project: "CatGame"}
}

func TestComposeDeterminism(t *testing.T) {
	g := genFor(PersonaFlags{DryHumor: true})
	ctx := NewCommentContext("p1", "c1", "ada", "how do I build the physics demo?", "")

	first := g.Generate(ctx)
	require.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, g.Generate(ctx))
	}
}

func TestComposeDivergenceAcrossCommentIDs(t *testing.T) {
	// Comments differing only in id should not all collapse to one string.
	g := genFor(PersonaFlags{})
	outputs := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		ctx := NewCommentContext("p1", fmt.Sprintf("c%03d", i), "ada", "love the new build", "")
		outputs[g.Generate(ctx)] = struct{}{}
	}
	assert.Greater(t, len(outputs), 1)
}

func TestComposeNeverEchoesBannedTokensOrURLs(t *testing.T) {
	g := genFor(PersonaFlags{})
	texts := []string{
		"this is stupid garbage, worst thing ever",
		"you idiot, look at https://evil.example/payload?x=1",
		"trash code, kys",
	}
	for _, text := range texts {
		ctx := NewCommentContext("p1", "c1", "bob", text, "")
		out := g.Generate(ctx)
		require.NotEmpty(t, out)
		lower := strings.ToLower(out)
		for banned := range bannedWords {
			assert.NotContains(t, lower, banned, "input: %q", text)
		}
		assert.NotContains(t, out, "https://evil.example")
	}
}

func TestComposeEmptyIntent(t *testing.T) {
	g := genFor(PersonaFlags{})
	ctx := NewCommentContext("p1", "c1", "", "   ", "")
	out := g.Generate(ctx)
	require.NotEmpty(t, out)
	// Missing author falls back to "there".
	assert.Contains(t, out, "there")
	assert.Contains(t, out, "?")
}

func TestComposeNonEmptyForAllIntents(t *testing.T) {
	g := genFor(PersonaFlags{})
	texts := map[Intent]string{
		IntentQuestion: "how do I save?",
		IntentBug:      "it crashed on startup",
		IntentPraise:   "awesome work",
		IntentHostile:  "this is garbage",
		IntentFeedback: "consider gamepad support",
		IntentNeutral:  "first",
		IntentEmpty:    "",
	}
	for intent, text := range texts {
		ctx := NewCommentContext("p1", "c1", "ada", text, "")
		require.Equal(t, intent, ClassifyIntent(text))
		assert.NotEmpty(t, g.Generate(ctx), "intent %s", intent)
	}
}

func TestHumorAsideRequiresPersonaFlag(t *testing.T) {
	// Without the flag the aside never appears, whatever the seed hash says.
	plain := genFor(PersonaFlags{})
	for i := 0; i < 50; i++ {
		ctx := NewCommentContext("p1", fmt.Sprintf("c%d", i), "ada", "neat stuff here", "")
		out := plain.Generate(ctx)
		for _, aside := range humorAsides {
			assert.NotContains(t, out, aside)
		}
	}
}

func TestHumorAsideDeterministicWithFlag(t *testing.T) {
	g := genFor(PersonaFlags{DryHumor: true})
	// Whether or not a given comment gets the aside, repeated generation
	// must agree with itself.
	for i := 0; i < 20; i++ {
		ctx := NewCommentContext("p1", fmt.Sprintf("c%d", i), "ada", "neat stuff here", "")
		assert.Equal(t, g.Generate(ctx), g.Generate(ctx))
	}
}

type fixedSearcher struct{ hints []Hint }

func (f fixedSearcher) SearchHints(terms []string) []Hint { return f.hints }

func TestReferenceHintOnlyForGroundableIntents(t *testing.T) {
	searcher := fixedSearcher{hints: []Hint{{Path: "docs/physics.md", Line: 42}}}
	g := &Generator{Project: "CatGame", Searcher: searcher}

	question := NewCommentContext("p1", "c1", "ada", "how does the physics work", "")
	assert.Contains(t, g.Generate(question), "`docs/physics.md` around line 42")

	praise := NewCommentContext("p1", "c2", "ada", "awesome physics", "")
	assert.NotContains(t, g.Generate(praise), "docs/physics.md")
}

type recordingSearcher struct{ terms []string }

func (r *recordingSearcher) SearchHints(terms []string) []Hint {
	r.terms = terms
	return nil
}

func TestGeneratorHonorsKeywordCap(t *testing.T) {
	ctx := NewCommentContext("p1", "c1", "ann", "How does the physics engine handle ragdoll collisions?", "")

	rec := &recordingSearcher{}
	g := &Generator{Project: "CatGame", Searcher: rec}
	g.Generate(ctx)
	assert.Len(t, rec.terms, 2, "default cap leaves two search terms")

	rec.terms = nil
	g = &Generator{Project: "CatGame", Searcher: rec, MaxKeywords: 1}
	g.Generate(ctx)
	assert.Len(t, rec.terms, 1, "a tighter cap must flow through to the hint search")
}

func TestFormatHintTwoFiles(t *testing.T) {
	out := formatHint([]Hint{{Path: "README.md", Line: 3}, {Path: "docs/setup.md", Line: 17}})
	assert.Equal(t, "(I found related bits in `README.md` around line 3 and `docs/setup.md` around line 17.)", out)
	assert.Equal(t, "", formatHint(nil))
}

func TestParsePersona(t *testing.T) {
	assert.True(t, ParsePersona("Keep it light, Dry Humor welcome.").DryHumor)
	assert.False(t, ParsePersona("Strictly professional.").DryHumor)
	assert.False(t, ParsePersona("").DryHumor)
}

func TestAuthorKey(t *testing.T) {
	assert.Equal(t, "agent-123", AuthorKey("agent-123", "Ada"))
	assert.Equal(t, "ada", AuthorKey("", "Ada"))
	assert.Equal(t, "ada lovelace", AuthorKey("  ", " Ada Lovelace "))
}
