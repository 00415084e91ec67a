package reply

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeForHash canonicalizes reply text for dedup hashing: trim,
// lowercase, collapse whitespace runs to single spaces.
func NormalizeForHash(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	return whitespaceRun.ReplaceAllString(t, " ")
}

// HashReply returns the stable hex digest of normalized reply text. This is
// the deduplication key across runs and scopes.
func HashReply(text string) string {
	sum := sha256.Sum256([]byte(NormalizeForHash(text)))
	return hex.EncodeToString(sum[:])
}

// stablePick deterministically selects one option from a fixed pool by
// hashing the seed and reducing modulo pool size. It is a stable
// pseudo-random selection function, not a random generator: the same seed
// always picks the same option, which keeps composed replies reproducible
// across runs.
func stablePick(options []string, seed string) string {
	if len(options) == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(seed))
	digest := hex.EncodeToString(sum[:])
	n, _ := strconv.ParseUint(digest[:8], 16, 64)
	return options[n%uint64(len(options))]
}
