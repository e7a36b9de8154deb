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

// moviezwapAgent scrapes a table-layout mirror. A hit is relevant when every
// query token appears in the candidate title, or the fuzzy score clears the
// threshold.
type moviezwapAgent struct {
	cfg        config.AgentConfig
	client     *Client
	maxResults int
}

func (a *moviezwapAgent) Key() string { return "moviezwap" }

func relevantToQuery(query, title string) bool {
	queryTokens := strings.Fields(fuzzy.Normalize(query))
	titleText := " " + fuzzy.Normalize(title) + " "

	allPresent := len(queryTokens) > 0
	for _, tok := range queryTokens {
		if !strings.Contains(titleText, " "+tok+" ") {
			allPresent = false
			break
		}
	}
	return allPresent || fuzzy.Score(query, title) >= 0.6
}

func (a *moviezwapAgent) Search(ctx context.Context, query string) ([]models.Movie, error) {
	searchURL := a.cfg.EffectiveSearchURL() + url.QueryEscape(query)
	doc, err := a.client.Document(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("moviezwap search: %w", err)
	}

	var movies []models.Movie
	seen := make(map[string]struct{})

	doc.Find("table a[href], .list a[href], li a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		link := absoluteURL(a.cfg.BaseURL, href)
		title := strings.TrimSpace(sel.Text())

		if title == "" || link == "" || !strings.HasPrefix(link, "http") {
			return true
		}
		if !relevantToQuery(query, title) {
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

	tagSource(movies, a.Key())
	log.Printf("[moviezwap] %d result(s) for %q", len(movies), query)
	return movies, nil
}

func (a *moviezwapAgent) ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error) {
	doc, err := a.client.Document(ctx, movieURL)
	if err != nil {
		return nil, fmt.Errorf("moviezwap extract: %w", err)
	}

	links := collectDownloadLinks(doc, movieURL)

	// Detail pages often point at an intermediate download page; follow one
	// level when the page itself had no host links.
	if len(links) == 0 {
		if next := a.downloadPageLink(doc, movieURL); next != "" {
			if nextDoc, err := a.client.Document(ctx, next); err == nil {
				links = collectDownloadLinks(nextDoc, next)
			} else {
				log.Printf("[moviezwap] download page fetch failed: %v", err)
			}
		}
	}

	return &models.ExtractionResult{
		MovieURL:      movieURL,
		Source:        SourceName(a.Key()),
		PageTitle:     pageTitle(doc),
		DownloadLinks: links,
		TotalLinks:    len(links),
	}, nil
}

func (a *moviezwapAgent) downloadPageLink(doc *goquery.Document, base string) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if strings.Contains(text, "download page") || strings.Contains(text, "click here to download") {
			href, _ := sel.Attr("href")
			found = absoluteURL(base, href)
			return false
		}
		return true
	})
	return found
}
