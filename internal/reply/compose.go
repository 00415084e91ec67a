package reply

import (
	"fmt"
	"strconv"
	"strings"
)

// ComposeInput holds the pre-derived inputs to the phrase composer. All of
// it is computed at the boundary; Compose itself is a pure function.
type ComposeInput struct {
	Intent   Intent
	Tone     Tone
	Keywords []string
	Persona  PersonaFlags
	Project  string
	Hint     string
}

// humorAsides are small non-snarky asides included occasionally when the
// persona enables dry humor.
var humorAsides = []string{
	"I'll poke at it and report back.",
	"I'll go spelunking in the repo for this.",
	"I'll sanity-check it end-to-end.",
}

// composeSeed builds the composition seed for a comment. Including the raw
// text and comment id makes distinct comments diverge even when intent and
// tone match.
func composeSeed(ctx CommentContext) string {
	return ctx.CommentText + "\n" + ctx.AuthorName + "\n" + ctx.CommentID
}

// allowHumorAside gates the optional dry-humor aside: the persona flag must
// be set and a secondary deterministic check on the seed hash must pass, so
// the aside shows up occasionally but reproducibly.
func allowHumorAside(persona PersonaFlags, seed string) bool {
	if !persona.DryHumor {
		return false
	}
	n, _ := strconv.ParseUint(HashReply(seed)[:2], 16, 64)
	return n%5 == 0
}

func openersFor(tone Tone, author, project string) []string {
	switch tone {
	case ToneWarm:
		return []string{
			fmt.Sprintf("Thanks %s - appreciate you checking out %s.", author, project),
			fmt.Sprintf("Hey %s, glad you're following along with %s.", author, project),
		}
	case ToneHelpful:
		return []string{
			fmt.Sprintf("Good callout, %s.", author),
			fmt.Sprintf("Thanks %s - that's a solid question.", author),
		}
	case ToneBuilder:
		return []string{
			fmt.Sprintf("Fair feedback, %s.", author),
			fmt.Sprintf("That's helpful input, %s.", author),
		}
	case ToneCalm:
		return []string{
			fmt.Sprintf("I hear you, %s.", author),
			fmt.Sprintf("Got it, %s.", author),
		}
	default:
		return []string{
			fmt.Sprintf("Thanks %s.", author),
			fmt.Sprintf("Appreciate it, %s.", author),
		}
	}
}

func joinParts(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// Compose builds the reply candidate for one comment. The same
// (text, author, id) triple always composes the same string; the original
// comment text is never quoted into the output. Output is never empty: even
// IntentEmpty yields a short clarifying question.
func Compose(ctx CommentContext, in ComposeInput) string {
	seed := composeSeed(ctx)

	project := in.Project
	if project == "" {
		project = "the project"
	}
	topic := project
	if len(in.Keywords) > 0 {
		topic = in.Keywords[0]
	}

	var humor string
	if allowHumorAside(in.Persona, seed) {
		humor = stablePick(humorAsides, seed+"/humor")
	}

	opener := stablePick(openersFor(in.Tone, ctx.AuthorName, project), seed)

	switch in.Intent {
	case IntentPraise:
		mid := stablePick([]string{
			"I'm iterating quickly and sharing progress as things land.",
			"I'm polishing the rough edges and posting updates as I go.",
		}, seed+"/mid")
		ask := stablePick([]string{
			fmt.Sprintf("If there's a feature you want next around `%s`, tell me.", topic),
			"If you've got a wishlist item, toss it my way.",
		}, seed+"/ask")
		return joinParts(opener, mid, ask, humor, in.Hint)

	case IntentQuestion:
		mid := stablePick([]string{
			fmt.Sprintf("On `%s`: I'll double-check the repo and share the precise steps/entry point.", topic),
			fmt.Sprintf("Re `%s`: I'll double-check the latest %s code/docs and answer precisely.", topic, project),
		}, seed+"/mid")
		ask := stablePick([]string{
			"What's the end goal you're trying to achieve?",
			"What platform/tooling are you using?",
		}, seed+"/ask")
		return joinParts(opener, mid, ask, humor, in.Hint)

	case IntentBug:
		mid := stablePick([]string{
			fmt.Sprintf("If you can share the minimal repro steps around `%s`, I can chase it down.", topic),
			"If you can share the exact steps + environment, I can reproduce and patch it.",
		}, seed+"/mid")
		ask := stablePick([]string{
			"What were you doing right before it happened?",
			"Any error text (sanitized) or screenshot of the symptom?",
		}, seed+"/ask")
		return joinParts(opener, mid, ask, humor, in.Hint)

	case IntentFeedback:
		mid := stablePick([]string{
			fmt.Sprintf("I can see why `%s` could feel rough right now.", topic),
			"That's a reasonable ask - the current behavior is a bit raw.",
		}, seed+"/mid")
		ask := stablePick([]string{
			"If you tell me what 'good' looks like for your workflow, I'll aim for that.",
			"If you have a preferred UX, describe it and I'll match it.",
		}, seed+"/ask")
		return joinParts(opener, mid, ask, humor, in.Hint)

	case IntentHostile:
		mid := stablePick([]string{
			"If you've got specific technical feedback, I'm happy to address it.",
			"If you can make it concrete (what failed / what you expected), I can fix it.",
		}, seed+"/mid")
		close_ := stablePick([]string{
			fmt.Sprintf("Either way, I'm going to keep building %s.", project),
			"I'm going to keep iterating and posting updates.",
		}, seed+"/close")
		return joinParts(opener, mid, close_)

	case IntentEmpty:
		ask := stablePick([]string{
			"What were you curious about?",
			"What part should I clarify - gameplay, tech, or roadmap?",
		}, seed+"/ask")
		return joinParts(opener, ask)

	default: // neutral
		mid := stablePick([]string{
			fmt.Sprintf("If you meant `%s` specifically, tell me what you're aiming for and I'll respond with details.", topic),
			"If there's a specific edge case you care about, I'll prioritize it.",
		}, seed+"/mid")
		return joinParts(opener, mid, humor, in.Hint)
	}
}
