package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cinehound/config"
	"cinehound/services/agents"
)

type agentRegistry interface {
	Config() ([]config.AgentConfig, error)
	Toggle(key string, enabled bool) error
	EnableAll() error
	DisableAll() error
	UpdateURL(key, baseURL, searchURL string) error
	Stats() (agents.RegistryStats, error)
}

var _ agentRegistry = (*agents.Registry)(nil)

type AgentsHandler struct {
	Registry agentRegistry
}

func NewAgentsHandler(registry agentRegistry) *AgentsHandler {
	return &AgentsHandler{Registry: registry}
}

func (h *AgentsHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfgs, err := h.Registry.Config()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": cfgs})
}

func (h *AgentsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key     string `json:"key"`
		Enabled *bool  `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Key) == "" || body.Enabled == nil {
		writeError(w, http.StatusBadRequest, "key and enabled are required")
		return
	}

	if err := h.Registry.Toggle(body.Key, *body.Enabled); err != nil {
		writeError(w, agentStatusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": body.Key, "enabled": *body.Enabled})
}

func (h *AgentsHandler) EnableAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.EnableAll(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "all agents enabled"})
}

func (h *AgentsHandler) DisableAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.DisableAll(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "all agents disabled"})
}

func (h *AgentsHandler) UpdateURL(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key       string `json:"key"`
		BaseURL   string `json:"base_url"`
		SearchURL string `json:"search_url,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Key) == "" || strings.TrimSpace(body.BaseURL) == "" {
		writeError(w, http.StatusBadRequest, "key and base_url are required")
		return
	}

	if err := h.Registry.UpdateURL(body.Key, body.BaseURL, body.SearchURL); err != nil {
		writeError(w, agentStatusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": body.Key, "base_url": body.BaseURL})
}

func (h *AgentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Registry.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func agentStatusFor(err error) int {
	if errors.Is(err, agents.ErrUnknownAgent) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
