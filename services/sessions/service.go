package sessions

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinehound/models"
)

const (
	maxConversations  = 10
	maxSearchHistory  = 5
	contextWindow     = 3
	followUpRelevance = 5 * time.Minute
)

// Conversation is one user/assistant exchange kept in session memory.
type Conversation struct {
	Timestamp    time.Time      `json:"timestamp"`
	UserMessage  string         `json:"user_message"`
	AIResponse   string         `json:"ai_response"`
	MovieResults []models.Movie `json:"movie_results,omitempty"`
	MovieCount   int            `json:"movie_count"`
}

// SearchRecord is one remembered search.
type SearchRecord struct {
	Query        string    `json:"query"`
	ResultsCount int       `json:"results_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// FollowUpContext marks what the user was just discussing.
type FollowUpContext struct {
	Type       string    `json:"type"`
	MovieTitle string    `json:"movie_title,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type session struct {
	createdAt       time.Time
	lastActivity    time.Time
	conversations   []Conversation
	searchHistory   []SearchRecord
	preferences     map[string]string
	movieContext    map[string]string
	followUpContext *FollowUpContext
}

// Stats summarizes one session for the stats endpoints.
type Stats struct {
	SessionID            string  `json:"session_id"`
	CreatedAt            string  `json:"created_at"`
	SessionAgeMinutes    float64 `json:"session_age_minutes"`
	TimeRemainingMinutes float64 `json:"time_remaining_minutes"`
	ConversationCount    int     `json:"conversation_count"`
	SearchCount          int     `json:"search_count"`
	HasPreferences       bool    `json:"has_preferences"`
	HasMovieContext      bool    `json:"has_movie_context"`
}

// OverviewStats summarizes all live sessions.
type OverviewStats struct {
	TotalActiveSessions   int     `json:"total_active_sessions"`
	SessionTimeoutMinutes float64 `json:"session_timeout_minutes"`
	Sessions              []Stats `json:"sessions"`
}

// Service keeps short-lived per-user conversation state in memory. Sessions
// expire after the configured idle timeout; a background sweep removes them
// and Get treats an expired entry as absent even before the sweep runs.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*session
	timeout  time.Duration
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewService starts a session service sweeping at the given interval.
func NewService(timeout, cleanupInterval time.Duration) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	s := &Service{
		sessions: make(map[string]*session),
		timeout:  timeout,
		interval: cleanupInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Close stops the background sweeper.
func (s *Service) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Service) sweepLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := s.sweep()
			if removed > 0 {
				log.Printf("[sessions] expired %d session(s)", removed)
			}
		case <-s.stop:
			return
		}
	}
}

func (s *Service) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActivity) > s.timeout {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Create registers a new session and returns its ID.
func (s *Service) Create() string {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	s.sessions[id] = &session{
		createdAt:    now,
		lastActivity: now,
		preferences:  make(map[string]string),
		movieContext: make(map[string]string),
	}
	s.mu.Unlock()

	log.Printf("[sessions] created session %s", id)
	return id
}

// touch returns the live session for id, refreshing its activity timestamp.
// Expired sessions are deleted and reported as absent.
func (s *Service) touch(id string) *session {
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}

	now := s.now()
	if now.Sub(sess.lastActivity) > s.timeout {
		delete(s.sessions, id)
		log.Printf("[sessions] session expired on access: %s", id)
		return nil
	}

	sess.lastActivity = now
	return sess
}

// Exists reports whether the session is live, refreshing its activity.
func (s *Service) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touch(id) != nil
}

// AddConversation appends an exchange, trimming history to the last 10
// conversations and the last 5 searches.
func (s *Service) AddConversation(id, userMessage, aiResponse string, movieResults []models.Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	if sess == nil {
		return false
	}

	sess.conversations = append(sess.conversations, Conversation{
		Timestamp:    s.now(),
		UserMessage:  userMessage,
		AIResponse:   aiResponse,
		MovieResults: movieResults,
		MovieCount:   len(movieResults),
	})
	if len(sess.conversations) > maxConversations {
		sess.conversations = sess.conversations[len(sess.conversations)-maxConversations:]
	}

	if len(movieResults) > 0 {
		sess.searchHistory = append(sess.searchHistory, SearchRecord{
			Query:        userMessage,
			ResultsCount: len(movieResults),
			Timestamp:    s.now(),
		})
		if len(sess.searchHistory) > maxSearchHistory {
			sess.searchHistory = sess.searchHistory[len(sess.searchHistory)-maxSearchHistory:]
		}
	}

	return true
}

// UpdatePreferences merges the given preferences into the session.
func (s *Service) UpdatePreferences(id string, prefs map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	if sess == nil {
		return false
	}
	for k, v := range prefs {
		sess.preferences[k] = v
	}
	return true
}

// SetMovieContext records the movie currently under discussion so follow-up
// questions can resolve against it.
func (s *Service) SetMovieContext(id string, movieInfo map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	if sess == nil {
		return false
	}

	sess.movieContext = movieInfo
	sess.followUpContext = &FollowUpContext{
		Type:       "movie_discussion",
		MovieTitle: movieInfo["title"],
		Timestamp:  s.now(),
	}
	return true
}

// ConversationContext renders recent history, preferences and context into a
// prompt block for the assistant.
func (s *Service) ConversationContext(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	if sess == nil || len(sess.conversations) == 0 {
		return ""
	}

	var parts []string

	recent := sess.conversations
	if len(recent) > contextWindow {
		recent = recent[len(recent)-contextWindow:]
	}
	parts = append(parts, "RECENT CONVERSATION HISTORY:")
	for i, conv := range recent {
		parts = append(parts, fmt.Sprintf("%d. User: %s", i+1, conv.UserMessage))
		parts = append(parts, fmt.Sprintf("   AI: %s", truncate(conv.AIResponse, 100)))
		if conv.MovieCount > 0 {
			parts = append(parts, fmt.Sprintf("   Found: %d movies", conv.MovieCount))
		}
	}

	if len(sess.preferences) > 0 {
		parts = append(parts, "", "USER PREFERENCES:")
		for k, v := range sess.preferences {
			parts = append(parts, fmt.Sprintf("- %s: %s", k, v))
		}
	}

	if title := sess.movieContext["title"]; title != "" {
		parts = append(parts, "", "CURRENT MOVIE CONTEXT:", fmt.Sprintf("- Discussing: %s", title))
	}

	if fu := sess.followUpContext; fu != nil && s.now().Sub(fu.Timestamp) < followUpRelevance {
		parts = append(parts, "", "FOLLOW-UP CONTEXT:", fmt.Sprintf("- Type: %s", fu.Type))
		if fu.MovieTitle != "" {
			parts = append(parts, fmt.Sprintf("- Movie: %s", fu.MovieTitle))
		}
	}

	return strings.Join(parts, "\n")
}

// Stats returns a summary of one session, or false when it is absent/expired.
func (s *Service) Stats(id string) (Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked(id)
}

func (s *Service) statsLocked(id string) (Stats, bool) {
	sess := s.touch(id)
	if sess == nil {
		return Stats{}, false
	}

	now := s.now()
	age := now.Sub(sess.createdAt)
	remaining := s.timeout - now.Sub(sess.lastActivity)
	if remaining < 0 {
		remaining = 0
	}

	return Stats{
		SessionID:            id,
		CreatedAt:            sess.createdAt.UTC().Format(time.RFC3339),
		SessionAgeMinutes:    roundMinutes(age),
		TimeRemainingMinutes: roundMinutes(remaining),
		ConversationCount:    len(sess.conversations),
		SearchCount:          len(sess.searchHistory),
		HasPreferences:       len(sess.preferences) > 0,
		HasMovieContext:      len(sess.movieContext) > 0,
	}, true
}

// AllStats summarizes every live session.
func (s *Service) AllStats() OverviewStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}

	out := OverviewStats{
		SessionTimeoutMinutes: s.timeout.Minutes(),
	}
	for _, id := range ids {
		if st, ok := s.statsLocked(id); ok {
			out.Sessions = append(out.Sessions, st)
		}
	}
	out.TotalActiveSessions = len(out.Sessions)
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func roundMinutes(d time.Duration) float64 {
	return float64(int(d.Minutes()*10+0.5)) / 10
}
