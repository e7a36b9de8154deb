package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"cinehound/models"
	"cinehound/services/linkhealth"
)

type linkChecker interface {
	Check(ctx context.Context, url string) models.LinkHealth
	CheckMany(ctx context.Context, urls []string) []models.LinkHealth
}

var _ linkChecker = (*linkhealth.Checker)(nil)

type LinkHealthHandler struct {
	Checker linkChecker
}

func NewLinkHealthHandler(checker linkChecker) *LinkHealthHandler {
	return &LinkHealthHandler{Checker: checker}
}

func (h *LinkHealthHandler) CheckOne(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	writeJSON(w, http.StatusOK, h.Checker.Check(r.Context(), body.URL))
}

func (h *LinkHealthHandler) CheckMany(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls is required")
		return
	}

	results := h.Checker.CheckMany(r.Context(), body.URLs)
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(results),
		"results": results,
	})
}
