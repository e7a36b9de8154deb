package agents

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cinehound/config"
	"cinehound/services/channelindex"
)

// RegistryStats summarizes the agent fleet for the admin endpoints.
type RegistryStats struct {
	Total    int `json:"total_agents"`
	Enabled  int `json:"enabled_agents"`
	Disabled int `json:"disabled_agents"`
}

// Registry builds one agent per enabled config entry and applies the admin
// mutations (toggle, URL updates) by writing through the config manager and
// rebuilding. All reads go through the mutex so a reload mid-search is safe.
type Registry struct {
	cfg   *config.Manager
	store *channelindex.Store

	mu      sync.RWMutex
	client  *Client
	agents  map[string]Agent
	enabled []string
}

// NewRegistry constructs a registry; call Reload before first use.
func NewRegistry(cfg *config.Manager) *Registry {
	return &Registry{
		cfg:    cfg,
		agents: make(map[string]Agent),
	}
}

// SetChannelStore wires the channel index used by the telegram agent.
func (r *Registry) SetChannelStore(store *channelindex.Store) {
	r.mu.Lock()
	r.store = store
	r.mu.Unlock()
}

// Reload re-reads settings and rebuilds the agent set.
func (r *Registry) Reload() error {
	settings, err := r.cfg.Load()
	if err != nil {
		return fmt.Errorf("reload agents: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.client = NewClient(time.Duration(settings.Search.RequestTimeoutSeconds) * time.Second)
	r.agents = make(map[string]Agent, len(settings.Agents))
	r.enabled = r.enabled[:0]

	for _, ac := range settings.Agents {
		if !ac.Enabled {
			continue
		}
		agent, err := r.build(ac, settings.Search.MaxResultsPerAgent, settings.Channel)
		if err != nil {
			log.Printf("[agents] skipping %s: %v", ac.Key, err)
			continue
		}
		r.agents[ac.Key] = agent
		r.enabled = append(r.enabled, ac.Key)
	}

	log.Printf("[agents] loaded %d enabled agent(s)", len(r.enabled))
	return nil
}

func (r *Registry) build(ac config.AgentConfig, maxResults int, ch config.ChannelSettings) (Agent, error) {
	switch ac.Key {
	case "downloadhub":
		return &downloadhubAgent{cfg: ac, client: r.client, maxResults: maxResults}, nil
	case "moviezwap":
		return &moviezwapAgent{cfg: ac, client: r.client, maxResults: maxResults}, nil
	case "movierulz":
		return &movierulzAgent{cfg: ac, client: r.client, maxResults: maxResults}, nil
	case "skysetx":
		return &skysetxAgent{cfg: ac, client: r.client, maxResults: maxResults}, nil
	case "movies4u":
		return &movies4uAgent{cfg: ac, client: r.client, maxResults: maxResults}, nil
	case "moviebox":
		return &movieboxAgent{cfg: ac, client: r.client, maxResults: maxResults}, nil
	case "telegram":
		return &telegramAgent{store: r.store, botUsername: ch.BotUsername}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, ac.Key)
	}
}

// Agent returns the enabled agent for a key.
func (r *Registry) Agent(key string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[key]
	return a, ok
}

// AgentBySource resolves an agent from a result's display name.
func (r *Registry) AgentBySource(source string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for key, a := range r.agents {
		if strings.EqualFold(SourceName(key), source) {
			return a, true
		}
	}
	return nil, false
}

// Enabled returns the enabled agents in config order.
func (r *Registry) Enabled() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Agent, 0, len(r.enabled))
	for _, key := range r.enabled {
		out = append(out, r.agents[key])
	}
	return out
}

// EnabledKeys returns the keys of enabled agents in config order.
func (r *Registry) EnabledKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.enabled...)
}

// Config returns the full agent configuration for the admin API.
func (r *Registry) Config() ([]config.AgentConfig, error) {
	settings, err := r.cfg.Load()
	if err != nil {
		return nil, err
	}
	return settings.Agents, nil
}

// Toggle enables or disables one agent and rebuilds.
func (r *Registry) Toggle(key string, enabled bool) error {
	err := r.mutate(key, func(ac *config.AgentConfig) {
		ac.Enabled = enabled
	})
	if err != nil {
		return err
	}
	log.Printf("[agents] %s enabled=%v", key, enabled)
	return nil
}

// UpdateURL points an agent at a new mirror. When searchURL is empty the
// WordPress "?s=" form is derived from the base URL.
func (r *Registry) UpdateURL(key, baseURL, searchURL string) error {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(searchURL) == "" {
		searchURL = strings.TrimRight(baseURL, "/") + "/?s="
	}

	err := r.mutate(key, func(ac *config.AgentConfig) {
		ac.BaseURL = baseURL
		ac.SearchURL = searchURL
		ac.LastUpdated = config.Timestamp(time.Now())
	})
	if err != nil {
		return err
	}
	log.Printf("[agents] %s url updated to %s", key, baseURL)
	return nil
}

func (r *Registry) mutate(key string, apply func(*config.AgentConfig)) error {
	settings, err := r.cfg.Load()
	if err != nil {
		return err
	}

	ac := settings.AgentByKey(key)
	if ac == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, key)
	}
	apply(ac)

	if err := r.cfg.Save(settings); err != nil {
		return err
	}
	return r.Reload()
}

// EnableAll turns every agent on.
func (r *Registry) EnableAll() error {
	return r.setAll(true)
}

// DisableAll turns every agent off.
func (r *Registry) DisableAll() error {
	return r.setAll(false)
}

func (r *Registry) setAll(enabled bool) error {
	settings, err := r.cfg.Load()
	if err != nil {
		return err
	}
	for i := range settings.Agents {
		settings.Agents[i].Enabled = enabled
	}
	if err := r.cfg.Save(settings); err != nil {
		return err
	}
	log.Printf("[agents] all agents enabled=%v", enabled)
	return r.Reload()
}

// Stats counts the fleet.
func (r *Registry) Stats() (RegistryStats, error) {
	settings, err := r.cfg.Load()
	if err != nil {
		return RegistryStats{}, err
	}

	stats := RegistryStats{Total: len(settings.Agents)}
	for _, ac := range settings.Agents {
		if ac.Enabled {
			stats.Enabled++
		}
	}
	stats.Disabled = stats.Total - stats.Enabled
	return stats, nil
}
