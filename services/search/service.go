package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sourcegraph/conc/pool"

	"cinehound/models"
	"cinehound/services/agents"
	"cinehound/utils/fuzzy"
)

var ErrEmptyQuery = errors.New("movie name is required")

// AgentProvider is the slice of the agent registry the aggregator needs.
type AgentProvider interface {
	Enabled() []agents.Agent
	Agent(key string) (agents.Agent, bool)
}

// Filters narrows aggregated results after the fan-out.
type Filters struct {
	Language string `json:"language_filter,omitempty"`
	Year     string `json:"year_filter,omitempty"`
	Quality  string `json:"quality_filter,omitempty"`
}

func (f Filters) empty() bool {
	return f.Language == "" && f.Year == "" && f.Quality == ""
}

// Response is the aggregated search outcome handed back to the API.
type Response struct {
	SearchID       string         `json:"search_id"`
	Query          string         `json:"query"`
	Results        []models.Movie `json:"results"`
	Total          int            `json:"total"`
	SourcesUsed    []string       `json:"sources_used"`
	FiltersApplied *Filters       `json:"filters_applied,omitempty"`
}

// Service fans a query out to the enabled agents, merges and ranks the
// results, and keeps them for later extraction in a bounded TTL store.
type Service struct {
	provider AgentProvider
	store    *expirable.LRU[string, []models.Movie]
}

// NewService builds the aggregator with a store holding at most maxStored
// searches, each expiring after ttl.
func NewService(provider AgentProvider, maxStored int, ttl time.Duration) *Service {
	if maxStored <= 0 {
		maxStored = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{
		provider: provider,
		store:    expirable.NewLRU[string, []models.Movie](maxStored, nil, ttl),
	}
}

// Search runs the query against the requested agents (all enabled ones when
// sources is empty). A failing agent is logged and skipped; the others still
// contribute.
func (s *Service) Search(ctx context.Context, query string, sourceKeys []string, filters Filters) (Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Response{}, ErrEmptyQuery
	}

	selected := s.selectAgents(sourceKeys)
	if len(selected) == 0 {
		return Response{}, errors.New("no agents available for this search")
	}

	var (
		mu      sync.Mutex
		merged  []models.Movie
		used    []string
		started = time.Now()
	)

	p := pool.New().WithMaxGoroutines(len(selected))
	for _, agent := range selected {
		p.Go(func() {
			t0 := time.Now()
			results, err := agent.Search(ctx, query)
			if err != nil {
				log.Printf("[search] agent %s failed after %s: %v", agent.Key(), time.Since(t0).Round(time.Millisecond), err)
				return
			}
			log.Printf("[search] agent %s: %d result(s) in %s", agent.Key(), len(results), time.Since(t0).Round(time.Millisecond))

			mu.Lock()
			merged = append(merged, results...)
			used = append(used, agent.Key())
			mu.Unlock()
		})
	}
	p.Wait()

	merged = applyFilters(merged, filters)
	rankByRelevance(merged, query)
	sort.Strings(used)

	id := newSearchID()
	s.store.Add(id, merged)
	log.Printf("[search] %q: %d result(s) from %d agent(s) in %s (id %s)",
		query, len(merged), len(used), time.Since(started).Round(time.Millisecond), id)

	resp := Response{
		SearchID:    id,
		Query:       query,
		Results:     merged,
		Total:       len(merged),
		SourcesUsed: used,
	}
	if !filters.empty() {
		resp.FiltersApplied = &filters
	}
	return resp, nil
}

// Get returns the stored results for a search ID, if still live.
func (s *Service) Get(searchID string) ([]models.Movie, bool) {
	return s.store.Get(searchID)
}

func (s *Service) selectAgents(sourceKeys []string) []agents.Agent {
	if len(sourceKeys) == 0 {
		return s.provider.Enabled()
	}

	var selected []agents.Agent
	for _, key := range sourceKeys {
		agent, ok := s.provider.Agent(strings.ToLower(strings.TrimSpace(key)))
		if !ok {
			log.Printf("[search] requested agent %q is unknown or disabled", key)
			continue
		}
		selected = append(selected, agent)
	}
	return selected
}

func applyFilters(movies []models.Movie, f Filters) []models.Movie {
	if f.empty() {
		return movies
	}

	kept := movies[:0]
	for _, m := range movies {
		if f.Language != "" && !strings.EqualFold(m.Language, f.Language) {
			continue
		}
		if f.Year != "" && m.Year != f.Year {
			continue
		}
		if f.Quality != "" && !hasQuality(m.Quality, f.Quality) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func hasQuality(qualities []string, want string) bool {
	for _, q := range qualities {
		if strings.EqualFold(q, want) {
			return true
		}
	}
	return false
}

// rankByRelevance scores each result against the query and sorts best-first.
// Agents may pre-score (moviebox does); existing scores are kept.
func rankByRelevance(movies []models.Movie, query string) {
	for i := range movies {
		if movies[i].Relevance == 0 {
			movies[i].Relevance = fuzzy.Score(query, movies[i].Title)
		}
	}
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].Relevance > movies[j].Relevance
	})
}

// newSearchID is unix-stamped for debuggability with an entropy suffix so two
// searches in the same second cannot collide.
func newSearchID() string {
	return fmt.Sprintf("search_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
}
