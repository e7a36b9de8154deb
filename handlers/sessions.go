package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinehound/models"
	"cinehound/services/sessions"
)

type sessionsService interface {
	Create() string
	Exists(id string) bool
	AddConversation(id, userMessage, aiResponse string, movieResults []models.Movie) bool
	UpdatePreferences(id string, prefs map[string]string) bool
	SetMovieContext(id string, movieInfo map[string]string) bool
	ConversationContext(id string) string
	Stats(id string) (sessions.Stats, bool)
	AllStats() sessions.OverviewStats
}

var _ sessionsService = (*sessions.Service)(nil)

type SessionsHandler struct {
	Service sessionsService
}

func NewSessionsHandler(service sessionsService) *SessionsHandler {
	return &SessionsHandler{Service: service}
}

func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"session_id": h.Service.Create()})
}

func (h *SessionsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionID"]
	stats, ok := h.Service.Stats(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *SessionsHandler) AllStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.AllStats())
}

func (h *SessionsHandler) AddConversation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID    string         `json:"session_id"`
		UserMessage  string         `json:"user_message"`
		AIResponse   string         `json:"ai_response"`
		MovieResults []models.Movie `json:"movie_results,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.SessionID) == "" || strings.TrimSpace(body.UserMessage) == "" {
		writeError(w, http.StatusBadRequest, "session_id and user_message are required")
		return
	}

	if !h.Service.AddConversation(body.SessionID, body.UserMessage, body.AIResponse, body.MovieResults) {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *SessionsHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID   string            `json:"session_id"`
		Preferences map[string]string `json:"preferences"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.SessionID) == "" || len(body.Preferences) == 0 {
		writeError(w, http.StatusBadRequest, "session_id and preferences are required")
		return
	}

	if !h.Service.UpdatePreferences(body.SessionID, body.Preferences) {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *SessionsHandler) SetMovieContext(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string            `json:"session_id"`
		Movie     map[string]string `json:"movie"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.SessionID) == "" || len(body.Movie) == 0 {
		writeError(w, http.StatusBadRequest, "session_id and movie are required")
		return
	}

	if !h.Service.SetMovieContext(body.SessionID, body.Movie) {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *SessionsHandler) Context(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionID"]
	if !h.Service.Exists(id) {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": id,
		"context":    h.Service.ConversationContext(id),
	})
}
