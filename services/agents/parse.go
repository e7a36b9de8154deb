package agents

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	yearRe     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	fileSizeRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(GB|MB)\b`)
)

// Release quality markers in the order they should be reported.
var qualityTokens = []string{
	"2160p", "4k", "1080p", "720p", "480p", "360p",
	"bluray", "brrip", "web-dl", "webrip", "hdrip", "dvdrip",
	"dvdscr", "predvd", "hdtc", "hdts", "camrip",
}

var languageTokens = []string{
	"hindi", "english", "tamil", "telugu", "malayalam", "kannada",
	"punjabi", "bengali", "marathi", "gujarati", "dual audio", "multi audio",
}

// parseYear pulls a plausible release year out of a post title.
func parseYear(title string) string {
	return yearRe.FindString(title)
}

// parseQuality collects the release quality markers present in a title.
func parseQuality(title string) []string {
	lower := strings.ToLower(title)
	var out []string
	for _, tok := range qualityTokens {
		if strings.Contains(lower, tok) {
			out = append(out, tok)
		}
	}
	return out
}

// parseLanguage returns the first language marker found in a title.
func parseLanguage(title string) string {
	lower := strings.ToLower(title)
	for _, tok := range languageTokens {
		if strings.Contains(lower, tok) {
			return titleCase(tok)
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// parseFileSize extracts a "1.4 GB" style size from text.
func parseFileSize(text string) string {
	m := fileSizeRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1] + " " + strings.ToUpper(m[2])
}

// absoluteURL resolves href against base, tolerating already-absolute hrefs.
func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(u).String()
}

// hostOf returns the lowercase hostname of a URL, or "".
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
