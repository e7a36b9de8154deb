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

// skysetxAgent scrapes post cards from a "?s=" search page.
type skysetxAgent struct {
	cfg        config.AgentConfig
	client     *Client
	maxResults int
}

func (a *skysetxAgent) Key() string { return "skysetx" }

func (a *skysetxAgent) Search(ctx context.Context, query string) ([]models.Movie, error) {
	searchURL := a.cfg.EffectiveSearchURL() + url.QueryEscape(query)
	doc, err := a.client.Document(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("skysetx search: %w", err)
	}

	var movies []models.Movie
	seen := make(map[string]struct{})

	doc.Find(".post-card, article, .result-item").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		anchor := card.Find("a[href]").First()
		href, _ := anchor.Attr("href")
		link := absoluteURL(a.cfg.BaseURL, href)

		title := strings.TrimSpace(card.Find("h2, h3, .title").First().Text())
		if title == "" {
			title = strings.TrimSpace(anchor.Text())
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

		poster, _ := card.Find("img[src]").First().Attr("src")

		movies = append(movies, models.Movie{
			Title:     title,
			URL:       link,
			DetailURL: link,
			Year:      parseYear(title),
			Quality:   parseQuality(title),
			Language:  parseLanguage(title),
			Poster:    absoluteURL(a.cfg.BaseURL, poster),
		})
		return len(movies) < a.maxResults
	})

	tagSource(movies, a.Key())
	log.Printf("[skysetx] %d result(s) for %q", len(movies), query)
	return movies, nil
}

func (a *skysetxAgent) ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error) {
	doc, err := a.client.Document(ctx, movieURL)
	if err != nil {
		return nil, fmt.Errorf("skysetx extract: %w", err)
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
