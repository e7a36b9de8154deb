package agents

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinehound/config"
	"cinehound/models"
	"cinehound/utils/fuzzy"
)

// movieboxAgent scrapes a mixed movies-and-music site. Search results are
// scored so film entries outrank songs and albums for the same title, and
// detail URLs missing from cards are guessed from the site's slug scheme.
type movieboxAgent struct {
	cfg        config.AgentConfig
	client     *Client
	maxResults int
}

var movieboxDomains = []string{
	"https://moviebox.ph",
	"https://moviebox.id",
	"https://moviebox.ng",
}

var musicTokens = []string{
	"song", "songs", "audio", "album", "jukebox", "lyrical", "track", "music video", "ost",
}

func (a *movieboxAgent) Key() string { return "moviebox" }

func (a *movieboxAgent) domains() []string {
	base := strings.TrimRight(strings.TrimSpace(a.cfg.BaseURL), "/")
	out := make([]string, 0, len(movieboxDomains)+1)
	if base != "" {
		out = append(out, base)
	}
	for _, d := range movieboxDomains {
		if d != base {
			out = append(out, d)
		}
	}
	return out
}

// movieScore rates a candidate: fuzzy similarity, minus a penalty per music
// marker, plus a small bonus when the title carries film release markers.
func movieScore(query, title string) float64 {
	score := fuzzy.Score(query, title)
	lower := strings.ToLower(title)

	for _, tok := range musicTokens {
		if strings.Contains(lower, tok) {
			score -= 0.3
		}
	}
	if parseYear(title) != "" {
		score += 0.1
	}
	if len(parseQuality(title)) > 0 {
		score += 0.1
	}
	return score
}

// guessDetailURL reconstructs the site's detail page URL from a title when a
// search card carries none: slug plus a stable numeric suffix hashed from it.
func guessDetailURL(domain, title string) string {
	slug := strings.Join(strings.Fields(fuzzy.Normalize(title)), "-")
	if slug == "" {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(slug))
	return fmt.Sprintf("%s/movies/%s-%d", strings.TrimRight(domain, "/"), slug, h.Sum32()%100000)
}

func (a *movieboxAgent) Search(ctx context.Context, query string) ([]models.Movie, error) {
	var lastErr error
	for _, domain := range a.domains() {
		searchURL := domain + "/web/searchResult?keyword=" + url.QueryEscape(query)
		doc, err := a.client.Document(ctx, searchURL)
		if err != nil {
			lastErr = err
			log.Printf("[moviebox] domain %s failed: %v", domain, err)
			continue
		}

		movies := a.parseResults(doc, domain, query)
		tagSource(movies, a.Key())
		log.Printf("[moviebox] %d result(s) for %q via %s", len(movies), query, domain)
		return movies, nil
	}
	return nil, fmt.Errorf("moviebox search: all domains failed: %w", lastErr)
}

func (a *movieboxAgent) parseResults(doc *goquery.Document, domain, query string) []models.Movie {
	type scored struct {
		movie models.Movie
		score float64
	}
	var candidates []scored
	seen := make(map[string]struct{})

	doc.Find(".pc-card, .card-item, article, li").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(".pc-card-title, h2, h3, .title").First().Text())
		if title == "" {
			return
		}

		href, _ := card.Find("a[href]").First().Attr("href")
		link := absoluteURL(domain, href)
		if link == "" {
			link = guessDetailURL(domain, title)
		}
		if link == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}

		score := movieScore(query, title)
		if score < 0.5 {
			return
		}
		seen[link] = struct{}{}

		poster, _ := card.Find("img[src]").First().Attr("src")

		candidates = append(candidates, scored{
			movie: models.Movie{
				Title:     title,
				URL:       link,
				DetailURL: link,
				Year:      parseYear(title),
				Quality:   parseQuality(title),
				Language:  parseLanguage(title),
				Poster:    absoluteURL(domain, poster),
				Relevance: score,
			},
			score: score,
		})
	})

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	movies := make([]models.Movie, 0, len(candidates))
	for _, c := range candidates {
		movies = append(movies, c.movie)
		if len(movies) >= a.maxResults {
			break
		}
	}
	return movies
}

func (a *movieboxAgent) ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error) {
	doc, err := a.client.Document(ctx, movieURL)
	if err != nil {
		return nil, fmt.Errorf("moviebox extract: %w", err)
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
