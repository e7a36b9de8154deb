package channelindex

import (
	"strings"
	"unicode"
)

// Words that show up in channel captions but hurt matching. Lowercase.
var stopwords = map[string]struct{}{
	"movie":  {},
	"film":   {},
	"full":   {},
	"hd":     {},
	"bluray": {},
	"dvdrip": {},
	"webrip": {},
}

// NormalizeTitle projects a caption or query onto the lossy form used for
// index matching: lowercase, punctuation collapsed to spaces, stopwords
// dropped. The projection is idempotent.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if _, drop := stopwords[w]; !drop {
			kept = append(kept, w)
		}
	}

	return strings.Join(kept, " ")
}
