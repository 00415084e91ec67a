package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywordsBasics(t *testing.T) {
	// "amazing" and "love" survive: the keyword stoplist is separate from
	// the praise trigger list and contains neither.
	kws := ExtractKeywords("this is amazing, love it!", 8)
	assert.Equal(t, []string{"amazing", "love"}, kws)
}

func TestExtractKeywordsFiltering(t *testing.T) {
	kws := ExtractKeywords("this that with, the physics engine 12345 physics", 8)
	assert.Equal(t, []string{"the", "physics", "engine"}, kws)

	// Pure numerics dropped, dedupe keeps first-seen order.
	assert.NotContains(t, kws, "12345")
}

func TestExtractKeywordsNeverContainsBanned(t *testing.T) {
	kws := ExtractKeywords("stupid idiot trash garbage worst hate dumb shut kys physics", 10)
	assert.Equal(t, []string{"physics"}, kws)
}

func TestExtractKeywordsDropsURLs(t *testing.T) {
	kws := ExtractKeywords("see https://example.com/secret-page for details", 8)
	for _, k := range kws {
		assert.NotContains(t, k, "example")
		assert.NotContains(t, k, "secret")
	}
}

func TestExtractKeywordsTruncatesAndStable(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	kws := ExtractKeywords(text, 3)
	assert.Len(t, kws, 3)
	assert.Equal(t, kws, ExtractKeywords(text, 3))
}

func TestExtractKeywordsEmpty(t *testing.T) {
	assert.Empty(t, ExtractKeywords("", 8))
	assert.Empty(t, ExtractKeywords("hi ok no", 0))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
	assert.Equal(t, "check (link omitted) out", Sanitize("check https://a.b/c?d=1 out"))
	assert.Equal(t, "(link omitted)", Sanitize("HTTP://UPPER.example"))
	assert.Equal(t, "plain text stays", Sanitize("plain text stays"))
}
