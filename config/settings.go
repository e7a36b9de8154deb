package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server     ServerSettings     `json:"server"`
	Agents     []AgentConfig      `json:"agents"`
	Search     SearchSettings     `json:"search"`
	Extraction ExtractionSettings `json:"extraction"`
	Sessions   SessionSettings    `json:"sessions"`
	Channel    ChannelSettings    `json:"channel"`
	Log        LogConfig          `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// AgentConfig holds the per-site scraper configuration. BaseURL and SearchURL
// override the agent defaults; piracy mirrors rotate domains often enough that
// these need to be editable at runtime.
type AgentConfig struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
	BaseURL     string `json:"baseUrl,omitempty"`
	SearchURL   string `json:"searchUrl,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

type SearchSettings struct {
	MaxResultsPerAgent    int `json:"maxResultsPerAgent"`
	RequestTimeoutSeconds int `json:"requestTimeoutSeconds"`
	ResultTTLMinutes      int `json:"resultTtlMinutes"`
	MaxStoredSearches     int `json:"maxStoredSearches"`
}

type ExtractionSettings struct {
	JobTimeoutSeconds int  `json:"jobTimeoutSeconds"`
	ResultTTLMinutes  int  `json:"resultTtlMinutes"`
	MaxStoredJobs     int  `json:"maxStoredJobs"`
	AutoHealthCheck   bool `json:"autoHealthCheck"`
}

type SessionSettings struct {
	TimeoutMinutes         int `json:"timeoutMinutes"`
	CleanupIntervalSeconds int `json:"cleanupIntervalSeconds"`
}

// ChannelSettings configures the Telegram channel movie index. Only the index
// and deep-link construction live here; bot API proxying is out of scope.
type ChannelSettings struct {
	DatabasePath string `json:"databasePath"`
	BotUsername  string `json:"botUsername"`
	ChannelID    string `json:"channelId,omitempty"`
}

type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first start.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 8080},
		Agents: []AgentConfig{
			{Key: "downloadhub", Name: "DownloadHub Agent", Enabled: true,
				BaseURL: "https://downloadhub.diy", Description: "Searches and extracts download links from DownloadHub"},
			{Key: "moviezwap", Name: "MoviezWap Agent", Enabled: true,
				BaseURL: "https://www.moviezwap.pink", Description: "Searches and extracts download links from MoviezWap"},
			{Key: "movierulz", Name: "MovieRulz Agent", Enabled: true,
				BaseURL: "https://www.5movierulz.soy", Description: "Searches and extracts download links from MovieRulz"},
			{Key: "skysetx", Name: "SkySetX Agent", Enabled: true,
				BaseURL: "https://skysetx.lol", Description: "Searches and extracts download links from SkySetX"},
			{Key: "movies4u", Name: "Movies4U Agent", Enabled: true,
				BaseURL: "https://movies4u.fm", Description: "Searches and extracts download links from Movies4U"},
			{Key: "moviebox", Name: "MovieBox Agent", Enabled: true,
				BaseURL: "https://moviebox.ph", Description: "Searches and extracts download links from MovieBox"},
			{Key: "telegram", Name: "Telegram Movie Agent", Enabled: false,
				Description: "Searches movies indexed from a Telegram channel"},
		},
		Search: SearchSettings{
			MaxResultsPerAgent:    20,
			RequestTimeoutSeconds: 15,
			ResultTTLMinutes:      30,
			MaxStoredSearches:     256,
		},
		Extraction: ExtractionSettings{
			JobTimeoutSeconds: 120,
			ResultTTLMinutes:  30,
			MaxStoredJobs:     256,
			AutoHealthCheck:   true,
		},
		Sessions: SessionSettings{
			TimeoutMinutes:         15,
			CleanupIntervalSeconds: 60,
		},
		Channel: ChannelSettings{
			DatabasePath: filepath.Join("cache", "channel_movies.db"),
			BotUsername:  "",
		},
		Log: LogConfig{
			File:       filepath.Join("cache", "logs", "cinehound.log"),
			MaxSize:    20,
			MaxAge:     14,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// AgentByKey returns a pointer into the settings' agent list, or nil.
func (s *Settings) AgentByKey(key string) *AgentConfig {
	for i := range s.Agents {
		if s.Agents[i].Key == key {
			return &s.Agents[i]
		}
	}
	return nil
}

// EffectiveSearchURL resolves the search URL for an agent, deriving the
// WordPress-style "?s=" form from the base URL when none is configured.
func (a AgentConfig) EffectiveSearchURL() string {
	if strings.TrimSpace(a.SearchURL) != "" {
		return a.SearchURL
	}
	if strings.TrimSpace(a.BaseURL) != "" {
		return strings.TrimRight(a.BaseURL, "/") + "/?s="
	}
	return ""
}

// Manager loads and persists settings. Load re-reads the file each call so
// out-of-band edits and admin mutations are picked up without restarting.
type Manager struct {
	mu   sync.Mutex
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Path returns the backing file path.
func (m *Manager) Path() string { return m.path }

// Load reads the settings file, creating it with defaults when missing, and
// fills in zero values for sections added after the file was first written.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.saveLocked(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}

	applyFallbacks(&s)
	return s, nil
}

// Save persists settings, creating the parent directory if needed.
func (m *Manager) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(s)
}

func (m *Manager) saveLocked(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}

// applyFallbacks patches zero values in configs written by older versions.
func applyFallbacks(s *Settings) {
	defaults := DefaultSettings()

	if s.Server.Port == 0 {
		s.Server = defaults.Server
	}
	if len(s.Agents) == 0 {
		s.Agents = defaults.Agents
	}
	if s.Search.MaxResultsPerAgent == 0 {
		s.Search.MaxResultsPerAgent = defaults.Search.MaxResultsPerAgent
	}
	if s.Search.RequestTimeoutSeconds == 0 {
		s.Search.RequestTimeoutSeconds = defaults.Search.RequestTimeoutSeconds
	}
	if s.Search.ResultTTLMinutes == 0 {
		s.Search.ResultTTLMinutes = defaults.Search.ResultTTLMinutes
	}
	if s.Search.MaxStoredSearches == 0 {
		s.Search.MaxStoredSearches = defaults.Search.MaxStoredSearches
	}
	if s.Extraction.JobTimeoutSeconds == 0 {
		s.Extraction.JobTimeoutSeconds = defaults.Extraction.JobTimeoutSeconds
	}
	if s.Extraction.ResultTTLMinutes == 0 {
		s.Extraction.ResultTTLMinutes = defaults.Extraction.ResultTTLMinutes
	}
	if s.Extraction.MaxStoredJobs == 0 {
		s.Extraction.MaxStoredJobs = defaults.Extraction.MaxStoredJobs
	}
	if s.Sessions.TimeoutMinutes == 0 {
		s.Sessions.TimeoutMinutes = defaults.Sessions.TimeoutMinutes
	}
	if s.Sessions.CleanupIntervalSeconds == 0 {
		s.Sessions.CleanupIntervalSeconds = defaults.Sessions.CleanupIntervalSeconds
	}
	if strings.TrimSpace(s.Channel.DatabasePath) == "" {
		s.Channel.DatabasePath = defaults.Channel.DatabasePath
	}
	if s.Log.MaxSize == 0 {
		s.Log = defaults.Log
	}
}

// Timestamp is the format used for the agents' lastUpdated field.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
