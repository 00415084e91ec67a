package reply

import "strings"

// Intent is the coarse heuristic classification of what a comment is doing.
type Intent string

const (
	IntentQuestion Intent = "question"
	IntentBug      Intent = "bug"
	IntentPraise   Intent = "praise"
	IntentHostile  Intent = "hostile"
	IntentFeedback Intent = "feedback"
	IntentNeutral  Intent = "neutral"
	IntentEmpty    Intent = "empty"
)

// Tone is the affective register a reply is drafted in.
type Tone string

const (
	ToneHelpful Tone = "helpful"
	ToneCalm    Tone = "calm"
	ToneWarm    Tone = "warm"
	ToneBuilder Tone = "builder"
	ToneNeutral Tone = "neutral"
)

var (
	questionMarkers = []string{"how do", "how to", "what is", "why", "where", "help"}
	bugMarkers      = []string{"error", "exception", "crash", "broken", "doesn't work", "doesnt work", "bug"}
	praiseMarkers   = []string{"love", "awesome", "great", "cool", "nice", "sick", "amazing"}
	hostileMarkers  = []string{"stupid", "idiot", "trash", "garbage", "worst", "hate"}
	feedbackMarkers = []string{"suggest", "maybe", "consider", "would be nice", "feature"}
)

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// ClassifyIntent maps comment text to an Intent using a fixed ordered rule
// cascade; the first matching rule wins. This is deliberately not a scored
// classifier, so ties resolve by priority order rather than confidence.
func ClassifyIntent(text string) Intent {
	t := strings.ToLower(text)
	if strings.TrimSpace(t) == "" {
		return IntentEmpty
	}
	if strings.Contains(t, "?") || containsAny(t, questionMarkers) {
		return IntentQuestion
	}
	if containsAny(t, bugMarkers) {
		return IntentBug
	}
	if containsAny(t, praiseMarkers) {
		return IntentPraise
	}
	if containsAny(t, hostileMarkers) {
		return IntentHostile
	}
	if containsAny(t, feedbackMarkers) {
		return IntentFeedback
	}
	return IntentNeutral
}

// ChooseTone maps an Intent to the Tone the composer drafts in.
func ChooseTone(intent Intent) Tone {
	switch intent {
	case IntentHostile:
		return ToneCalm
	case IntentBug, IntentQuestion:
		return ToneHelpful
	case IntentPraise:
		return ToneWarm
	case IntentFeedback:
		return ToneBuilder
	default:
		return ToneNeutral
	}
}
