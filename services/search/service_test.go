package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinehound/models"
	"cinehound/services/agents"
)

type fakeAgent struct {
	key     string
	results []models.Movie
	err     error
}

func (f *fakeAgent) Key() string { return f.key }

func (f *fakeAgent) Search(ctx context.Context, query string) ([]models.Movie, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeAgent) ExtractLinks(ctx context.Context, movieURL string) (*models.ExtractionResult, error) {
	return &models.ExtractionResult{MovieURL: movieURL}, nil
}

type fakeProvider struct {
	agents []agents.Agent
}

func (p *fakeProvider) Enabled() []agents.Agent { return p.agents }

func (p *fakeProvider) Agent(key string) (agents.Agent, bool) {
	for _, a := range p.agents {
		if a.Key() == key {
			return a, true
		}
	}
	return nil, false
}

func newTestService(agentList ...agents.Agent) *Service {
	return NewService(&fakeProvider{agents: agentList}, 16, time.Minute)
}

func TestSearchMergesAndSkipsFailures(t *testing.T) {
	svc := newTestService(
		&fakeAgent{key: "downloadhub", results: []models.Movie{
			{Title: "Pushpa 2 The Rule 1080p", Source: "DownloadHub"},
		}},
		&fakeAgent{key: "moviezwap", err: errors.New("mirror down")},
		&fakeAgent{key: "skysetx", results: []models.Movie{
			{Title: "Pushpa 2", Source: "SkySetX"},
		}},
	)

	resp, err := svc.Search(context.Background(), "Pushpa 2", nil, Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2 (failed agent skipped, not fatal)", resp.Total)
	}
	if len(resp.SourcesUsed) != 2 {
		t.Errorf("sources used = %v, want the two healthy agents", resp.SourcesUsed)
	}
	for _, key := range resp.SourcesUsed {
		if key == "moviezwap" {
			t.Error("failed agent must not be listed as used")
		}
	}
}

func TestSearchRanksByRelevance(t *testing.T) {
	svc := newTestService(
		&fakeAgent{key: "downloadhub", results: []models.Movie{
			{Title: "Some Other Movie Entirely"},
			{Title: "Pushpa 2 The Rule"},
		}},
	)

	resp, err := svc.Search(context.Background(), "Pushpa 2 The Rule", nil, Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Results[0].Title != "Pushpa 2 The Rule" {
		t.Errorf("best match should sort first, got %q", resp.Results[0].Title)
	}
	if resp.Results[0].Relevance <= resp.Results[1].Relevance {
		t.Errorf("relevance not descending: %v", resp.Results)
	}
}

func TestSearchFilters(t *testing.T) {
	svc := newTestService(
		&fakeAgent{key: "downloadhub", results: []models.Movie{
			{Title: "A", Language: "Hindi", Year: "2024", Quality: []string{"1080p"}},
			{Title: "B", Language: "Telugu", Year: "2024", Quality: []string{"720p"}},
			{Title: "C", Language: "Hindi", Year: "2021", Quality: []string{"1080p"}},
		}},
	)

	resp, err := svc.Search(context.Background(), "query", nil, Filters{Language: "hindi", Year: "2024"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].Title != "A" {
		t.Errorf("filtered results = %v, want only A", resp.Results)
	}
	if resp.FiltersApplied == nil || resp.FiltersApplied.Language != "hindi" {
		t.Errorf("filters applied = %+v", resp.FiltersApplied)
	}
}

func TestSearchSourceSelection(t *testing.T) {
	svc := newTestService(
		&fakeAgent{key: "downloadhub", results: []models.Movie{{Title: "From DH"}}},
		&fakeAgent{key: "skysetx", results: []models.Movie{{Title: "From SkySetX"}}},
	)

	resp, err := svc.Search(context.Background(), "query", []string{"skysetx", "unknown"}, Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].Title != "From SkySetX" {
		t.Errorf("results = %v, want only the requested source", resp.Results)
	}
}

func TestSearchStoreRoundTrip(t *testing.T) {
	svc := newTestService(
		&fakeAgent{key: "downloadhub", results: []models.Movie{{Title: "Stored"}}},
	)

	resp, err := svc.Search(context.Background(), "query", nil, Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	got, ok := svc.Get(resp.SearchID)
	if !ok || len(got) != 1 || got[0].Title != "Stored" {
		t.Errorf("Get(%q) = %v, %v", resp.SearchID, got, ok)
	}
	if _, ok := svc.Get("search_0_missing"); ok {
		t.Error("unknown search ID should miss")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := newTestService(&fakeAgent{key: "downloadhub"})

	if _, err := svc.Search(context.Background(), "   ", nil, Filters{}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestSearchStoreEviction(t *testing.T) {
	svc := NewService(&fakeProvider{agents: []agents.Agent{
		&fakeAgent{key: "downloadhub", results: []models.Movie{{Title: "X"}}},
	}}, 2, time.Minute)

	var ids []string
	for i := 0; i < 3; i++ {
		resp, err := svc.Search(context.Background(), "query", nil, Filters{})
		if err != nil {
			t.Fatalf("Search %d: %v", i, err)
		}
		ids = append(ids, resp.SearchID)
	}

	if _, ok := svc.Get(ids[0]); ok {
		t.Error("oldest search should have been evicted from a size-2 store")
	}
	if _, ok := svc.Get(ids[2]); !ok {
		t.Error("newest search must survive")
	}
}
