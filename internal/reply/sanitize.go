package reply

import "regexp"

// urlPattern is a best-effort match for URL-shaped substrings. It makes no
// attempt to catch every URL form.
var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// linkPlaceholder replaces URL-shaped substrings before any downstream use.
const linkPlaceholder = "(link omitted)"

// Sanitize strips URL-shaped substrings from raw comment text. Other content
// is left untouched. Empty input returns the empty string.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	return urlPattern.ReplaceAllString(text, linkPlaceholder)
}
