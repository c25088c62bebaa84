package api

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"snaptour/internal/ui"
	"snaptour/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, tourH *TourHandler, audioH *AudioHandler, chatH *ChatHandler, extrasH *ExtrasHandler, certH *CertificateHandler, mapH *MapHandler, credH *CredentialHandler, cfgH *ConfigHandler, statsH *StatsHandler, eventsH *EventsHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 3. Tour Pipeline Endpoints
	mux.HandleFunc("POST /api/tour/submit", tourH.HandleSubmit)
	mux.HandleFunc("POST /api/tour/retry", tourH.HandleRetry)
	mux.HandleFunc("POST /api/tour/reset", tourH.HandleReset)
	mux.HandleFunc("GET /api/tour/status", tourH.HandleStatus)
	mux.HandleFunc("POST /api/tour/select", tourH.HandleSelect)
	mux.HandleFunc("GET /api/tour/ledger", tourH.HandleLedger)
	mux.HandleFunc("POST /api/tour/ledger/clear", tourH.HandleClearLedger)

	// 3b. Stage Event Stream
	if eventsH != nil {
		mux.HandleFunc("GET /api/tour/events", eventsH.HandleEvents)
	}

	// 4. Audio Endpoints
	if audioH != nil {
		mux.HandleFunc("POST /api/audio/play", audioH.HandlePlay)
		mux.HandleFunc("POST /api/audio/stop", audioH.HandleStop)
		mux.HandleFunc("GET /api/audio/status", audioH.HandleStatus)
	}

	// 5. Chat Endpoints
	if chatH != nil {
		mux.HandleFunc("POST /api/chat", chatH.HandleChat)
		mux.HandleFunc("GET /api/chat/history", chatH.HandleHistory)
	}

	// 6. Secondary Feature Endpoints
	if extrasH != nil {
		mux.HandleFunc("GET /api/extras/funfact", extrasH.HandleFunFact)
		mux.HandleFunc("POST /api/extras/artwork", extrasH.HandleArtwork)
		mux.HandleFunc("GET /api/extras/emoji", extrasH.HandleEmoji)
	}

	// 7. Certificate Endpoint
	if certH != nil {
		mux.HandleFunc("GET /api/certificate", certH.HandleCertificate)
	}

	// 8. Map Endpoints
	if mapH != nil {
		mux.HandleFunc("GET /api/map/embed", mapH.HandleEmbed)
		mux.HandleFunc("GET /api/map/thumbnail", mapH.HandleThumbnail)
	}

	// 9. Credential Endpoints
	mux.HandleFunc("POST /api/credential", credH.HandleSet)
	mux.HandleFunc("DELETE /api/credential", credH.HandleClear)
	mux.HandleFunc("GET /api/credential", credH.HandleStatus)

	// 10. Config Endpoint
	mux.HandleFunc("/api/config", cfgH.HandleConfig)

	// 11. Stats and Logs
	mux.Handle("GET /api/stats", statsH)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 12. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// 13. Static Frontend Serving (SPA)
	distFS, err := fs.Sub(ui.DistFS, "dist")
	if err != nil {
		panic(fmt.Sprintf("Failed to subtree dist from embedded assets: %v", err))
	}

	spaFS := &spaFileSystem{root: http.FS(distFS)}
	mux.Handle("/", http.FileServer(spaFS))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
