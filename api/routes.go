package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinehound/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Register mounts every endpoint onto the router. The frontend historically
// called some routes bare and some under /api, so everything is reachable at
// both prefixes.
func Register(
	r *mux.Router,
	searchHandler *handlers.SearchHandler,
	extractionHandler *handlers.ExtractionHandler,
	linkHealthHandler *handlers.LinkHealthHandler,
	agentsHandler *handlers.AgentsHandler,
	sessionsHandler *handlers.SessionsHandler,
	channelHandler *handlers.ChannelHandler,
	healthHandler *handlers.HealthHandler,
) {
	r.Use(corsMiddleware)

	for _, root := range []*mux.Router{r, r.PathPrefix("/api").Subrouter()} {
		root.HandleFunc("/search", searchHandler.Search).Methods(http.MethodPost, http.MethodOptions)

		root.HandleFunc("/extract", extractionHandler.Extract).Methods(http.MethodPost, http.MethodOptions)
		root.HandleFunc("/status/{extractionID}", extractionHandler.Status).Methods(http.MethodGet, http.MethodOptions)
		root.HandleFunc("/cancel/{extractionID}", extractionHandler.Cancel).Methods(http.MethodPost, http.MethodOptions)
		root.HandleFunc("/auto_health_results/{extractionID}", extractionHandler.HealthResults).Methods(http.MethodGet, http.MethodOptions)

		root.HandleFunc("/check_link_health", linkHealthHandler.CheckOne).Methods(http.MethodPost, http.MethodOptions)
		root.HandleFunc("/check_multiple_links_health", linkHealthHandler.CheckMany).Methods(http.MethodPost, http.MethodOptions)

		root.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet, http.MethodOptions)

		for _, prefix := range []string{"/admin/agents", "/agents"} {
			root.HandleFunc(prefix, agentsHandler.GetConfig).Methods(http.MethodGet, http.MethodOptions)
			root.HandleFunc(prefix+"/toggle", agentsHandler.Toggle).Methods(http.MethodPost, http.MethodOptions)
			root.HandleFunc(prefix+"/enable-all", agentsHandler.EnableAll).Methods(http.MethodPost, http.MethodOptions)
			root.HandleFunc(prefix+"/disable-all", agentsHandler.DisableAll).Methods(http.MethodPost, http.MethodOptions)
			root.HandleFunc(prefix+"/update-url", agentsHandler.UpdateURL).Methods(http.MethodPost, http.MethodOptions)
			root.HandleFunc(prefix+"/stats", agentsHandler.Stats).Methods(http.MethodGet, http.MethodOptions)
		}

		root.HandleFunc("/sessions", sessionsHandler.Create).Methods(http.MethodPost, http.MethodOptions)
		root.HandleFunc("/sessions/stats", sessionsHandler.AllStats).Methods(http.MethodGet, http.MethodOptions)
		root.HandleFunc("/sessions/{sessionID}/stats", sessionsHandler.Stats).Methods(http.MethodGet, http.MethodOptions)
		root.HandleFunc("/sessions/{sessionID}/context", sessionsHandler.Context).Methods(http.MethodGet, http.MethodOptions)
		root.HandleFunc("/sessions/conversation", sessionsHandler.AddConversation).Methods(http.MethodPost, http.MethodOptions)
		root.HandleFunc("/sessions/preferences", sessionsHandler.UpdatePreferences).Methods(http.MethodPost, http.MethodOptions)
		root.HandleFunc("/sessions/movie-context", sessionsHandler.SetMovieContext).Methods(http.MethodPost, http.MethodOptions)

		root.HandleFunc("/telegram/add-movie", channelHandler.AddMovie).Methods(http.MethodPost, http.MethodOptions)
		root.HandleFunc("/telegram/movies", channelHandler.ListMovies).Methods(http.MethodGet, http.MethodOptions)
		root.HandleFunc("/telegram/stats", channelHandler.Stats).Methods(http.MethodGet, http.MethodOptions)
		root.HandleFunc("/telegram/search-movie", channelHandler.SearchMovie).Methods(http.MethodPost, http.MethodOptions)
	}
}
