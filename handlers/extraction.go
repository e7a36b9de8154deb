package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinehound/models"
	"cinehound/services/extraction"
)

type extractionManager interface {
	Start(searchID string, movieIndex int) (extraction.Job, error)
	Status(id string) (extraction.Job, error)
	Cancel(id string) (extraction.Job, error)
	HealthResults(id string) ([]models.LinkHealth, bool, error)
}

var _ extractionManager = (*extraction.Manager)(nil)

type ExtractionHandler struct {
	Manager extractionManager
}

func NewExtractionHandler(manager extractionManager) *ExtractionHandler {
	return &ExtractionHandler{Manager: manager}
}

func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SearchID   string `json:"search_id"`
		MovieIndex *int   `json:"movie_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.SearchID) == "" || body.MovieIndex == nil {
		writeError(w, http.StatusBadRequest, "search_id and movie_index are required")
		return
	}

	job, err := h.Manager.Start(body.SearchID, *body.MovieIndex)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, extraction.ErrSearchNotFound) || errors.Is(err, extraction.ErrInvalidIndex) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (h *ExtractionHandler) Status(w http.ResponseWriter, r *http.Request) {
	job, err := h.Manager.Status(mux.Vars(r)["extractionID"])
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *ExtractionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job, err := h.Manager.Cancel(mux.Vars(r)["extractionID"])
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *ExtractionHandler) HealthResults(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["extractionID"]
	results, finished, err := h.Manager.HealthResults(id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"extraction_id":          id,
		"health_check_completed": finished,
		"results":                results,
	})
}

func statusFor(err error) int {
	if errors.Is(err, extraction.ErrJobNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
