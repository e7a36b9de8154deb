package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cinehound/models"
	"cinehound/services/channelindex"
)

// telegramAgent searches the channel movie index instead of scraping a site.
// Result URLs are t.me deep links that hand the title to the bot, spaces
// replaced with underscores in the payload.
type telegramAgent struct {
	store       *channelindex.Store
	botUsername string
}

func (a *telegramAgent) Key() string { return "telegram" }

func (a *telegramAgent) Search(ctx context.Context, query string) ([]models.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.store == nil {
		return nil, errors.New("telegram agent: channel index not configured")
	}

	rows, err := a.store.Search(query)
	if err != nil {
		return nil, fmt.Errorf("telegram search: %w", err)
	}

	movies := make([]models.Movie, 0, len(rows))
	for _, row := range rows {
		size := ""
		if row.FileSize > 0 {
			size = fmt.Sprintf("%.1f MB", float64(row.FileSize)/(1024*1024))
		}
		movies = append(movies, models.Movie{
			Title:             row.Title,
			URL:               channelindex.DeepLink(a.botUsername, row.Title),
			Year:              row.Year,
			Quality:           splitQuality(row.Quality),
			Language:          row.Language,
			FileSize:          size,
			TelegramMessageID: row.MessageID,
		})
	}

	tagSource(movies, a.Key())
	return movies, nil
}

// ExtractLinks has nothing to scrape; the deep link is the delivery channel.
func (a *telegramAgent) ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var links []models.DownloadLink
	if movieURL != "" {
		links = append(links, models.DownloadLink{
			URL:  movieURL,
			Text: "Get via Telegram bot",
			Host: "t.me",
			Kind: models.LinkKindDirect,
		})
	}

	return &models.ExtractionResult{
		MovieURL:      movieURL,
		Source:        SourceName(a.Key()),
		DownloadLinks: links,
		TotalLinks:    len(links),
	}, nil
}

func splitQuality(q string) []string {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	parts := strings.Split(q, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
