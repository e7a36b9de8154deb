package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cinehound/services/search"
)

type searchService interface {
	Search(ctx context.Context, query string, sources []string, filters search.Filters) (search.Response, error)
}

var _ searchService = (*search.Service)(nil)

type SearchHandler struct {
	Service searchService
}

func NewSearchHandler(service searchService) *SearchHandler {
	return &SearchHandler{Service: service}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MovieName      string   `json:"movie_name"`
		Sources        []string `json:"sources,omitempty"`
		LanguageFilter string   `json:"language_filter,omitempty"`
		YearFilter     string   `json:"year_filter,omitempty"`
		QualityFilter  string   `json:"quality_filter,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.Service.Search(r.Context(), body.MovieName, body.Sources, search.Filters{
		Language: body.LanguageFilter,
		Year:     body.YearFilter,
		Quality:  body.QualityFilter,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, search.ErrEmptyQuery) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
