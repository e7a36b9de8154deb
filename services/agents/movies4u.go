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

// movies4uAgent scrapes a site whose search wants an extra ct_post_type
// parameter and whose detail pages group links under h5/h6 section headings.
type movies4uAgent struct {
	cfg        config.AgentConfig
	client     *Client
	maxResults int
}

func (a *movies4uAgent) Key() string { return "movies4u" }

func (a *movies4uAgent) searchURL(query string) string {
	base := strings.TrimRight(a.cfg.BaseURL, "/")
	return base + "/?s=" + url.QueryEscape(query) + "&ct_post_type=post%3Apage"
}

func (a *movies4uAgent) Search(ctx context.Context, query string) ([]models.Movie, error) {
	doc, err := a.client.Document(ctx, a.searchURL(query))
	if err != nil {
		return nil, fmt.Errorf("movies4u search: %w", err)
	}

	var movies []models.Movie
	seen := make(map[string]struct{})

	doc.Find("article a[href], .entry-title a[href], h2 a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
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
		})
		return len(movies) < a.maxResults
	})

	tagSource(movies, a.Key())
	log.Printf("[movies4u] %d result(s) for %q", len(movies), query)
	return movies, nil
}

func (a *movies4uAgent) ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error) {
	doc, err := a.client.Document(ctx, movieURL)
	if err != nil {
		return nil, fmt.Errorf("movies4u extract: %w", err)
	}

	links := a.sectionLinks(doc, movieURL)
	if len(links) == 0 {
		links = collectDownloadLinks(doc, movieURL)
	}

	return &models.ExtractionResult{
		MovieURL:      movieURL,
		Source:        SourceName(a.Key()),
		PageTitle:     pageTitle(doc),
		DownloadLinks: links,
		TotalLinks:    len(links),
	}, nil
}

// sectionLinks walks h5/h6 download headings and collects the anchors that
// follow each one, carrying the heading text as the quality label.
func (a *movies4uAgent) sectionLinks(doc *goquery.Document, base string) []models.DownloadLink {
	var links []models.DownloadLink
	seen := make(map[string]struct{})

	doc.Find("h5, h6").Each(func(_ int, heading *goquery.Selection) {
		label := strings.TrimSpace(heading.Text())
		if label == "" {
			return
		}

		heading.NextUntil("h5, h6").Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			link := absoluteURL(base, href)
			if link == "" || !strings.HasPrefix(link, "http") {
				return
			}
			if !isDownloadHost(link) && !hasDownloadText(sel.Text()) && linkKind(link) == models.LinkKindDirect {
				return
			}
			if _, dup := seen[link]; dup {
				return
			}
			seen[link] = struct{}{}

			quality := strings.Join(parseQuality(label), ", ")
			if quality == "" {
				quality = label
			}

			links = append(links, models.DownloadLink{
				URL:      link,
				Text:     strings.TrimSpace(sel.Text()),
				Host:     hostOf(link),
				Quality:  quality,
				FileSize: parseFileSize(label),
				Kind:     linkKind(link),
			})
		})
	})

	return links
}
