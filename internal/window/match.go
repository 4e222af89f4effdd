package window

import "strings"

// Match strength, strongest last. Exact substring matches always beat
// fuzzy token matches.
const (
	matchNone = iota
	matchToken
	matchSubstring
)

// score rates how well a query matches a single window.
func score(query string, h *Handle) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return matchNone
	}

	title := strings.ToLower(h.Title)
	class := strings.ToLower(h.Class)

	if strings.Contains(title, q) || strings.Contains(class, q) {
		return matchSubstring
	}

	// Fuzzy: every whitespace-separated token appears somewhere in the
	// title or class, in any order.
	tokens := strings.Fields(q)
	if len(tokens) < 2 {
		return matchNone
	}
	for _, tok := range tokens {
		if !strings.Contains(title, tok) && !strings.Contains(class, tok) {
			return matchNone
		}
	}
	return matchToken
}

// bestMatches returns the indices of the strongest matches for the query,
// preserving the order of the input slice.
func bestMatches(query string, windows []*Handle) []int {
	best := matchNone
	var out []int
	for i, h := range windows {
		s := score(query, h)
		if s == matchNone || s < best {
			continue
		}
		if s > best {
			best = s
			out = out[:0]
		}
		out = append(out, i)
	}
	return out
}
