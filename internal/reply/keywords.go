package reply

import (
	"regexp"
	"strings"
)

// wordPattern matches alphanumeric runs of length >= 3 (with - and _
// allowed after the first character).
var wordPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9_\-]{2,}`)

// stopwords are common function words that make poor topics.
var stopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {},
	"your": {}, "youre": {}, "about": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "would": {}, "could": {}, "should": {},
	"thanks": {}, "thank": {}, "nice": {}, "cool": {}, "good": {},
	"great": {}, "bad": {}, "lol": {}, "lmao": {},
}

// bannedWords must never surface in generated text, not even as a "topic"
// word echoed back from the comment.
var bannedWords = map[string]struct{}{
	"stupid": {}, "idiot": {}, "trash": {}, "garbage": {},
	"worst": {}, "hate": {}, "dumb": {}, "shut": {}, "kys": {},
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ExtractKeywords derives up to maxWords distinct lowercase topic tokens
// from comment text. URLs are sanitized away first, stopwords and banned
// words are filtered, pure numerics are dropped, and first-seen order is
// preserved. Output is stable for identical input.
func ExtractKeywords(text string, maxWords int) []string {
	if text == "" || maxWords <= 0 {
		return nil
	}

	cleaned := Sanitize(text)
	var out []string
	seen := map[string]struct{}{}
	for _, w := range wordPattern.FindAllString(cleaned, -1) {
		w = strings.ToLower(w)
		if _, ok := stopwords[w]; ok {
			continue
		}
		if _, ok := bannedWords[w]; ok {
			continue
		}
		if isNumeric(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) >= maxWords {
			break
		}
	}
	return out
}
