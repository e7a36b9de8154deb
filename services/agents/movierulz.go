package agents

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinehound/config"
	"cinehound/models"
	"cinehound/utils/fuzzy"
)

// movierulzAgent scrapes a mirror that rotates domains constantly. It keeps a
// priority list of known mirrors and promotes the configured base URL to the
// front, falling through the list until one answers.
type movierulzAgent struct {
	cfg        config.AgentConfig
	client     *Client
	maxResults int
}

var movierulzMirrors = []string{
	"https://www.5movierulz.soy",
	"https://www.5movierulz.prof",
	"https://www.5movierulz.chat",
	"https://www.movierulz.com",
}

func (a *movierulzAgent) Key() string { return "movierulz" }

// domains returns the mirror list with the configured base URL first.
func (a *movierulzAgent) domains() []string {
	base := strings.TrimRight(strings.TrimSpace(a.cfg.BaseURL), "/")
	out := make([]string, 0, len(movierulzMirrors)+1)
	if base != "" {
		out = append(out, base)
	}
	for _, m := range movierulzMirrors {
		if m != base {
			out = append(out, m)
		}
	}
	return out
}

func (a *movierulzAgent) Search(ctx context.Context, query string) ([]models.Movie, error) {
	var lastErr error
	for _, domain := range a.domains() {
		searchURL := domain + "/search_movies?s=" + url.QueryEscape(query)
		doc, err := a.client.Document(ctx, searchURL)
		if err != nil {
			lastErr = err
			log.Printf("[movierulz] mirror %s failed: %v", domain, err)
			continue
		}

		movies := a.parseResults(doc, domain, query)
		tagSource(movies, a.Key())
		log.Printf("[movierulz] %d result(s) for %q via %s", len(movies), query, domain)
		return movies, nil
	}
	return nil, fmt.Errorf("movierulz search: all mirrors failed: %w", lastErr)
}

func (a *movierulzAgent) parseResults(doc *goquery.Document, domain, query string) []models.Movie {
	var movies []models.Movie
	seen := make(map[string]struct{})

	doc.Find(".film a[href], .boxed a[href], article a[href], h2 a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		link := absoluteURL(domain, href)
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title, _ = sel.Attr("title")
			title = strings.TrimSpace(title)
		}

		if title == "" || link == "" || !strings.HasPrefix(link, "http") {
			return true
		}
		if !fuzzy.IsMatch(query, title, 0.5) {
			return true
		}
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}

		movies = append(movies, models.Movie{
			Title:     title,
			URL:       link,
			DetailURL: link,
			Year:      parseYear(title),
			Quality:   parseQuality(title),
			Language:  parseLanguage(title),
		})
		return len(movies) < a.maxResults
	})

	return movies
}

func (a *movierulzAgent) ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error) {
	doc, err := a.client.Document(ctx, movieURL)
	if err != nil {
		return nil, fmt.Errorf("movierulz extract: %w", err)
	}

	links := collectDownloadLinks(doc, movieURL)
	return &models.ExtractionResult{
		MovieURL:      movieURL,
		Source:        SourceName(a.Key()),
		PageTitle:     pageTitle(doc),
		DownloadLinks: links,
		TotalLinks:    len(links),
	}, nil
}
