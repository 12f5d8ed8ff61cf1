// Package queryexpand maps a raw query string to a small ordered set of
// expansion strings via a static alias table, using only stdlib text
// primitives.
package queryexpand

import (
	"strings"
	"unicode"
)

// aliases is the static table mapping a lowercase query token to the
// domain terms it should also pull into the search.
var aliases = map[string][]string{
	"db":      {"database", "sqlite", "storage"},
	"llm":     {"language model", "large language model"},
	"ann":     {"vector search", "nearest neighbor"},
	"fts":     {"full text search", "lexical search"},
	"embed":   {"embedding", "vector"},
	"mmr":     {"diversity", "reranking"},
	"cfg":     {"config", "configuration"},
	"repo":    {"repository"},
	"auth":    {"authentication", "authorization"},
	"perf":    {"performance"},
	"async":   {"asynchronous"},
	"concur":  {"concurrency", "concurrent"},
	"api":     {"interface"},
	"k8s":     {"kubernetes"},
	"ml":      {"machine learning"},
}

// isWordRune reports whether r belongs to a query token: any letter or
// digit, including CJK ideographs (U+4E00..U+9FA5), which are each their
// own single-character token since CJK text has no inter-word spacing.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenize splits q into lowercase word/digit runs, treating each CJK
// ideograph as its own token.
func tokenize(q string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range q {
		if !isWordRune(r) {
			flush()
			continue
		}
		lower := unicode.ToLower(r)
		if lower >= 0x4E00 && lower <= 0x9FA5 {
			flush()
			tokens = append(tokens, string(lower))
			continue
		}
		cur.WriteRune(lower)
	}
	flush()
	return tokens
}

// Expand produces an ordered, deduplicated set of expansion strings for
// query q: q itself, then for every alias hit on any token of q, both the
// bare alias and "q alias". Preserves insertion order. Empty (after
// trimming) input yields an empty result.
func Expand(q string) []string {
	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(trimmed)

	for _, tok := range tokenize(trimmed) {
		for _, alias := range aliases[tok] {
			add(alias)
			add(trimmed + " " + alias)
		}
	}

	return out
}
