// Package match implements keyword-table matching for reference lookups:
// who an event is for (person table) and what it represents (vocabulary).
package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Candidate pairs one lookup key with an opaque reference into the caller's
// table. Vocabulary entries contribute one candidate per keyword, so ranking
// is global across categories rather than per entry.
type Candidate struct {
	Key string // Matched case-insensitively as a substring of the text
	Ref int    // Caller-defined index back into the source table
}

// Best returns the candidate whose key is the longest case-insensitive
// substring of text. When several keys of equal length match, the first one
// in table order wins; table order must therefore be stable. Returns ok=false
// when nothing matches, which is a valid outcome rather than an error.
//
// Tables are small (hundreds of entries), so a linear scan is deliberate.
func Best(text string, candidates []Candidate) (Candidate, bool) {
	lower := strings.ToLower(text)

	var best Candidate
	found := false
	for _, c := range candidates {
		key := strings.ToLower(c.Key)
		if key == "" || !strings.Contains(lower, key) {
			continue
		}
		if !found || len(key) > len(strings.ToLower(best.Key)) {
			best = c
			found = true
		}
	}
	return best, found
}

// StripKey removes the first case-insensitive occurrence of key from text and
// trims leading separator punctuation from what remains. Used to take a
// matched person name out of a title before vocabulary matching, so a last
// name never collides with a keyword.
func StripKey(text, key string) string {
	start, end := indexFold(text, key)
	if start < 0 {
		return text
	}
	out := text[:start] + text[end:]
	return strings.TrimLeft(out, " \t-–—:,.;/")
}

// indexFold locates the first case-insensitive occurrence of key in text and
// returns its byte range [start, end) in text itself. Lowercasing can change
// a rune's byte length (Kelvin sign → k), so offsets are found by walking
// text rune by rune rather than by indexing a lowered copy.
func indexFold(text, key string) (start, end int) {
	if key == "" {
		return -1, -1
	}
	keyRunes := []rune(key)
	for i := range text {
		j := i
		matched := true
		for _, kr := range keyRunes {
			r, size := utf8.DecodeRuneInString(text[j:])
			if size == 0 || unicode.ToLower(r) != unicode.ToLower(kr) {
				matched = false
				break
			}
			j += size
		}
		if matched {
			return i, j
		}
	}
	return -1, -1
}
