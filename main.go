package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinehound/api"
	"cinehound/config"
	"cinehound/handlers"
	"cinehound/services/agents"
	"cinehound/services/channelindex"
	"cinehound/services/extraction"
	"cinehound/services/linkhealth"
	"cinehound/services/search"
	"cinehound/services/sessions"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 cinehound starting...")

	configPath := os.Getenv("AGGREGATOR_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// File logging with rotation, mirrored to stdout.
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Channel movie index (SQLite).
	channelStore, err := channelindex.Open(settings.Channel.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open channel index: %v", err)
	}

	// Agent registry with the channel store wired in for the telegram agent.
	registry := agents.NewRegistry(cfgManager)
	registry.SetChannelStore(channelStore)
	if err := registry.Reload(); err != nil {
		log.Fatalf("failed to load agents: %v", err)
	}

	requestTimeout := time.Duration(settings.Search.RequestTimeoutSeconds) * time.Second
	checker := linkhealth.NewChecker(nil, requestTimeout)

	searchSvc := search.NewService(registry,
		settings.Search.MaxStoredSearches,
		time.Duration(settings.Search.ResultTTLMinutes)*time.Minute)

	extractionMgr := extraction.NewManager(searchSvc, registry, checker,
		settings.Extraction.MaxStoredJobs,
		time.Duration(settings.Extraction.ResultTTLMinutes)*time.Minute,
		time.Duration(settings.Extraction.JobTimeoutSeconds)*time.Second,
		settings.Extraction.AutoHealthCheck)

	sessionSvc := sessions.NewService(
		time.Duration(settings.Sessions.TimeoutMinutes)*time.Minute,
		time.Duration(settings.Sessions.CleanupIntervalSeconds)*time.Second)

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewSearchHandler(searchSvc),
		handlers.NewExtractionHandler(extractionMgr),
		handlers.NewLinkHealthHandler(checker),
		handlers.NewAgentsHandler(registry),
		handlers.NewSessionsHandler(sessionSvc),
		handlers.NewChannelHandler(channelStore, settings.Channel.BotUsername),
		handlers.NewHealthHandler(registry),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	extractionMgr.Close()
	sessionSvc.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := channelStore.Close(); err != nil {
		log.Printf("Channel index close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
