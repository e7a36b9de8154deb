package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"cinehound/models"
	"cinehound/services/channelindex"
	"cinehound/utils/pagination"
)

type channelStore interface {
	Add(title string, messageID int64, info models.ChannelFileInfo) error
	Search(query string) ([]models.ChannelMovie, error)
	LogSearch(entry models.SearchLogEntry) error
	List(page, perPage int) ([]models.ChannelMovie, pagination.Page, error)
	Stats() (models.ChannelStats, error)
}

var _ channelStore = (*channelindex.Store)(nil)

type ChannelHandler struct {
	Store       channelStore
	BotUsername string
}

func NewChannelHandler(store channelStore, botUsername string) *ChannelHandler {
	return &ChannelHandler{Store: store, BotUsername: botUsername}
}

func (h *ChannelHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title     string                 `json:"title"`
		MessageID int64                  `json:"message_id"`
		FileInfo  models.ChannelFileInfo `json:"file_info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.Store.Add(body.Title, body.MessageID, body.FileInfo); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, channelindex.ErrTitleRequired) || errors.Is(err, channelindex.ErrMessageIDRequired) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "indexed", "message_id": body.MessageID})
}

func (h *ChannelHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	movies, meta, err := h.Store.List(page, perPage)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"movies":     movies,
		"pagination": meta,
	})
}

func (h *ChannelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// SearchMovie looks the title up in the index and answers with a deep link
// to the bot. Actual file forwarding happens bot-side.
func (h *ChannelHandler) SearchMovie(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MovieTitle string `json:"movie_title"`
		UserID     int64  `json:"user_id,omitempty"`
		ChatID     int64  `json:"chat_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.MovieTitle) == "" {
		writeError(w, http.StatusBadRequest, "movie_title is required")
		return
	}

	movies, err := h.Store.Search(body.MovieTitle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entry := models.SearchLogEntry{
		UserID:     body.UserID,
		ChatID:     body.ChatID,
		MovieTitle: body.MovieTitle,
		Found:      len(movies) > 0,
	}
	if err := h.Store.LogSearch(entry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if len(movies) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"found": false, "movies": []models.ChannelMovie{}})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"found":     true,
		"movies":    movies,
		"deep_link": channelindex.DeepLink(h.BotUsername, movies[0].Title),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
