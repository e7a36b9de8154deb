package agents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinehound/config"
	"cinehound/models"
)

const downloadhubSearchHTML = `<html><body>
<article><h2><a href="/pushpa-2-the-rule-2024-hindi-1080p/">Pushpa 2 The Rule (2024) Hindi 1080p WEBRip 2.1 GB</a></h2></article>
<article><h2><a href="/pushpa-the-rise-2021-720p/">Pushpa The Rise (2021) 720p HDRip</a></h2></article>
<article><h2><a href="/totally-different-film/">Completely Unrelated Show S01</a></h2></article>
</body></html>`

const detailPageHTML = `<html><head><title>Pushpa 2 The Rule - DownloadHub</title></head><body>
<h5>1080p Links [2.1 GB]</h5>
<p><a href="https://drive.google.com/file/d/abc123">G-Drive</a></p>
<p><a href="https://shortlinkto.onl/xyz789">Fast Server</a></p>
<h5>720p Links [1.2 GB]</h5>
<p><a href="https://mega.nz/file/def456">Mega Download</a></p>
<p><a href="/tag/pushpa">Pushpa tag</a></p>
<p><a href="https://example.com/about">About us</a></p>
</body></html>`

func testAgentServer(t *testing.T, searchHTML, detailHTML string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") != "" || strings.Contains(r.URL.Path, "search") {
			w.Write([]byte(searchHTML))
			return
		}
		w.Write([]byte(detailHTML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadhubSearchFiltersByQuery(t *testing.T) {
	srv := testAgentServer(t, downloadhubSearchHTML, detailPageHTML)

	agent := &downloadhubAgent{
		cfg:        config.AgentConfig{Key: "downloadhub", BaseURL: srv.URL},
		client:     NewClient(5 * time.Second),
		maxResults: 20,
	}

	movies, err := agent.Search(context.Background(), "Pushpa")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("got %d results, want 2 (unrelated post must be filtered)", len(movies))
	}

	first := movies[0]
	if first.Source != "DownloadHub" || first.SourceColor != "#4CAF50" {
		t.Errorf("source tagging wrong: %q %q", first.Source, first.SourceColor)
	}
	if first.Year != "2024" {
		t.Errorf("year = %q, want 2024", first.Year)
	}
	if len(first.Quality) == 0 || first.Quality[0] != "1080p" {
		t.Errorf("quality = %v, want [1080p ...]", first.Quality)
	}
	if first.Language != "Hindi" {
		t.Errorf("language = %q, want Hindi", first.Language)
	}
	if first.FileSize != "2.1 GB" {
		t.Errorf("file size = %q, want 2.1 GB", first.FileSize)
	}
	if !strings.HasPrefix(first.URL, srv.URL) {
		t.Errorf("relative href not resolved: %q", first.URL)
	}
}

func TestDownloadhubExtractLinks(t *testing.T) {
	srv := testAgentServer(t, downloadhubSearchHTML, detailPageHTML)

	agent := &downloadhubAgent{
		cfg:        config.AgentConfig{Key: "downloadhub", BaseURL: srv.URL},
		client:     NewClient(5 * time.Second),
		maxResults: 20,
	}

	result, err := agent.ExtractLinks(context.Background(), srv.URL+"/pushpa-2-the-rule-2024-hindi-1080p/")
	if err != nil {
		t.Fatalf("ExtractLinks: %v", err)
	}
	if result.PageTitle != "Pushpa 2 The Rule" {
		t.Errorf("page title = %q", result.PageTitle)
	}
	if result.TotalLinks != len(result.DownloadLinks) {
		t.Errorf("total %d != len(links) %d", result.TotalLinks, len(result.DownloadLinks))
	}

	byHost := make(map[string]models.DownloadLink)
	for _, l := range result.DownloadLinks {
		byHost[l.Host] = l
	}
	if l, ok := byHost["drive.google.com"]; !ok || l.Kind != models.LinkKindDirect {
		t.Errorf("drive link missing or misclassified: %+v", l)
	}
	if l, ok := byHost["shortlinkto.onl"]; !ok || l.Kind != models.LinkKindShortlink {
		t.Errorf("shortlink missing or misclassified: %+v", l)
	}
	if _, ok := byHost["example.com"]; ok {
		t.Error("non-download anchor leaked into results")
	}
}

func TestMovies4uSectionLinksCarryHeadingQuality(t *testing.T) {
	srv := testAgentServer(t, downloadhubSearchHTML, detailPageHTML)

	agent := &movies4uAgent{
		cfg:        config.AgentConfig{Key: "movies4u", BaseURL: srv.URL},
		client:     NewClient(5 * time.Second),
		maxResults: 20,
	}

	result, err := agent.ExtractLinks(context.Background(), srv.URL+"/pushpa-2/")
	if err != nil {
		t.Fatalf("ExtractLinks: %v", err)
	}

	var found bool
	for _, l := range result.DownloadLinks {
		if l.Host == "mega.nz" {
			found = true
			if l.Quality != "720p" {
				t.Errorf("mega link quality = %q, want 720p from its heading", l.Quality)
			}
			if l.FileSize != "1.2 GB" {
				t.Errorf("mega link size = %q, want 1.2 GB from its heading", l.FileSize)
			}
		}
	}
	if !found {
		t.Fatal("mega link not extracted from h5 section")
	}
}

func TestMovieboxScoringPrefersFilmsOverMusic(t *testing.T) {
	film := movieScore("Animal", "Animal (2023) Hindi 1080p")
	song := movieScore("Animal", "Animal Movie Songs Jukebox Audio Album")
	if film <= song {
		t.Errorf("film score %v should beat music score %v", film, song)
	}
}

func TestGuessDetailURLStable(t *testing.T) {
	a := guessDetailURL("https://moviebox.ph", "Pushpa 2: The Rule")
	b := guessDetailURL("https://moviebox.ph/", "Pushpa 2: The Rule")
	if a == "" || a != b {
		t.Errorf("guessed URLs differ: %q vs %q", a, b)
	}
	if !strings.Contains(a, "/movies/pushpa-2-the-rule-") {
		t.Errorf("unexpected slug in %q", a)
	}
}

func TestMovierulzDomainPromotion(t *testing.T) {
	agent := &movierulzAgent{cfg: config.AgentConfig{BaseURL: "https://www.5movierulz.chat/"}}
	domains := agent.domains()

	if domains[0] != "https://www.5movierulz.chat" {
		t.Errorf("configured mirror should be first, got %q", domains[0])
	}
	count := 0
	for _, d := range domains {
		if d == "https://www.5movierulz.chat" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("configured mirror appears %d times, want 1", count)
	}
}

func TestRelevantToQuery(t *testing.T) {
	tests := []struct {
		query, title string
		want         bool
	}{
		{"pushpa 2", "Pushpa 2 The Rule Telugu HDRip", true},
		{"pushpa 2", "KGF Chapter 2", false},
		{"salaar", "Salaar (2023) DVDScr", true},
	}
	for _, tt := range tests {
		if got := relevantToQuery(tt.query, tt.title); got != tt.want {
			t.Errorf("relevantToQuery(%q, %q) = %v, want %v", tt.query, tt.title, got, tt.want)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	title := "Jawan (2023) Hindi 1080p BluRay 2.4 GB"
	if y := parseYear(title); y != "2023" {
		t.Errorf("year = %q", y)
	}
	if q := parseQuality(title); len(q) != 2 || q[0] != "1080p" || q[1] != "bluray" {
		t.Errorf("quality = %v", q)
	}
	if l := parseLanguage(title); l != "Hindi" {
		t.Errorf("language = %q", l)
	}
	if s := parseFileSize(title); s != "2.4 GB" {
		t.Errorf("size = %q", s)
	}
	if s := parseFileSize("no size here"); s != "" {
		t.Errorf("size = %q, want empty", s)
	}
}
