package agents

import (
	"context"
	"errors"

	"cinehound/models"
)

// Agent is one movie source: a site scraper or the Telegram channel index.
// Search returns candidate movies for a query; ExtractLinks pulls the
// download links off a movie's detail page.
type Agent interface {
	Key() string
	Search(ctx context.Context, query string) ([]models.Movie, error)
	ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error)
}

var ErrUnknownAgent = errors.New("unknown agent")

type sourceInfo struct {
	name  string
	color string
}

// Display name and badge color per agent key. The colors are part of the API
// contract with the frontend.
var sources = map[string]sourceInfo{
	"downloadhub": {"DownloadHub", "#4CAF50"},
	"moviezwap":   {"MoviezWap", "#2196F3"},
	"movierulz":   {"MovieRulz", "#FF9800"},
	"skysetx":     {"SkySetX", "#9C27B0"},
	"movies4u":    {"Movies4U", "#E91E63"},
	"moviebox":    {"MovieBox", "#3CB371"},
	"telegram":    {"Telegram", "#0088cc"},
}

// SourceName returns the display name for an agent key.
func SourceName(key string) string {
	if s, ok := sources[key]; ok {
		return s.name
	}
	return key
}

// SourceColor returns the badge color for an agent key.
func SourceColor(key string) string {
	if s, ok := sources[key]; ok {
		return s.color
	}
	return "#607D8B"
}

// tagSource stamps source identity onto a batch of results.
func tagSource(movies []models.Movie, key string) {
	for i := range movies {
		movies[i].Source = SourceName(key)
		movies[i].SourceColor = SourceColor(key)
	}
}
