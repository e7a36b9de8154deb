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

// downloadhubAgent scrapes a WordPress-style mirror: search hits are post
// anchors, detail pages carry host links behind headings.
type downloadhubAgent struct {
	cfg        config.AgentConfig
	client     *Client
	maxResults int
}

func (a *downloadhubAgent) Key() string { return "downloadhub" }

func (a *downloadhubAgent) Search(ctx context.Context, query string) ([]models.Movie, error) {
	searchURL := a.cfg.EffectiveSearchURL() + url.QueryEscape(query)
	doc, err := a.client.Document(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("downloadhub search: %w", err)
	}

	var movies []models.Movie
	seen := make(map[string]struct{})

	doc.Find("article a[href], h2 a[href], h3 a[href], .post-title a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		link := absoluteURL(a.cfg.BaseURL, href)
		title := strings.TrimSpace(sel.Text())

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
			FileSize:  parseFileSize(title),
		})
		return len(movies) < a.maxResults
	})

	tagSource(movies, a.Key())
	log.Printf("[downloadhub] %d result(s) for %q", len(movies), query)
	return movies, nil
}

func (a *downloadhubAgent) ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error) {
	doc, err := a.client.Document(ctx, movieURL)
	if err != nil {
		return nil, fmt.Errorf("downloadhub extract: %w", err)
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
