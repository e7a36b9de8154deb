package fuzzy

import (
	"strings"
	"unicode"
)

// Score rates how well a candidate title matches a search query, between 0.0
// and 1.0. Exact matches after normalization score 1.0. When every query token
// appears in the candidate (the usual case for release names that append year,
// rip and resolution tags) the score is high even though the edit distance is
// large. Otherwise the score falls back to a Levenshtein ratio.
func Score(query, candidate string) float64 {
	q := Normalize(query)
	c := Normalize(candidate)

	if q == "" || c == "" {
		return 0.0
	}
	if q == c {
		return 1.0
	}

	if containsAllTokens(c, q) {
		// Penalize slightly by how much extra text the candidate carries.
		extra := float64(len(c)-len(q)) / float64(len(c))
		score := 1.0 - extra*0.3
		if score < 0.7 {
			score = 0.7
		}
		return score
	}

	dist := levenshtein(q, c)
	maxLen := len(q)
	if len(c) > maxLen {
		maxLen = len(c)
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

// IsMatch reports whether the candidate is close enough to the query to be
// shown as a search result.
func IsMatch(query, candidate string, threshold float64) bool {
	return Score(query, candidate) >= threshold
}

// Normalize lowercases a title and strips punctuation so that release-name
// variants compare equal: dots, dashes and underscores become spaces, runs of
// whitespace collapse, everything else non-alphanumeric is dropped.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '.' || r == '-' || r == '_':
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// containsAllTokens reports whether every token of needle occurs as a token
// of haystack.
func containsAllTokens(haystack, needle string) bool {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(haystack) {
		set[tok] = struct{}{}
	}
	for _, tok := range strings.Fields(needle) {
		if _, ok := set[tok]; !ok {
			return false
		}
	}
	return true
}

func levenshtein(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
