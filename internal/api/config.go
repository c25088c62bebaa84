package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"snaptour/pkg/config"
	"snaptour/pkg/prompt"
)

// ConfigHandler exposes the user-tunable settings. The API key lives under
// /api/credential and is never part of this payload.
type ConfigHandler struct {
	mu      sync.Mutex
	cfg     *config.Config
	cfgPath string
}

// NewConfigHandler creates a new ConfigHandler. cfgPath is where updates are
// persisted; empty disables persistence.
func NewConfigHandler(cfg *config.Config, cfgPath string) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, cfgPath: cfgPath}
}

// ConfigResponse represents the config API response.
type ConfigResponse struct {
	DefaultAudience string   `json:"default_audience"`
	Audiences       []string `json:"audiences"`
	Voice           string   `json:"voice"`
	Model           string   `json:"model"`
}

// ConfigRequest represents the config API request for updates.
type ConfigRequest struct {
	DefaultAudience string `json:"default_audience,omitempty"`
	Voice           string `json:"voice,omitempty"`
}

// HandleConfig is a unified handler for all config-related methods.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w)
	case http.MethodPut, http.MethodPost:
		h.handleSet(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ConfigHandler) handleGet(w http.ResponseWriter) {
	h.mu.Lock()
	resp := ConfigResponse{
		DefaultAudience: h.cfg.Tour.DefaultAudience,
		Audiences:       prompt.Levels(),
		Voice:           h.cfg.Speech.Voice,
		Model:           h.cfg.LLM.Model,
	}
	h.mu.Unlock()

	writeJSON(w, resp)
}

func (h *ConfigHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	if req.DefaultAudience != "" {
		if !prompt.IsKnownLevel(req.DefaultAudience) {
			h.mu.Unlock()
			http.Error(w, "unknown audience level", http.StatusBadRequest)
			return
		}
		h.cfg.Tour.DefaultAudience = req.DefaultAudience
		slog.Debug("Config updated", "default_audience", req.DefaultAudience)
	}
	if req.Voice != "" {
		h.cfg.Speech.Voice = req.Voice
		slog.Debug("Config updated", "voice", req.Voice)
	}
	if h.cfgPath != "" {
		if err := h.cfg.Save(h.cfgPath); err != nil {
			slog.Error("Failed to persist config", "error", err)
		}
	}
	h.mu.Unlock()

	h.handleGet(w)
}
