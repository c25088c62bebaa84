package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// CredentialManager manages the AI provider credential at runtime.
type CredentialManager interface {
	Configure(key, modelName string, profiles map[string]string) error
	ClearCredential()
	Configured() bool
}

// CredentialHandler lets the frontend supply or clear the API key without
// restarting the server. The key is never echoed back.
type CredentialHandler struct {
	manager  CredentialManager
	model    string
	profiles map[string]string
}

// NewCredentialHandler creates a new CredentialHandler. model and profiles
// come from configuration and are reused for every key change.
func NewCredentialHandler(m CredentialManager, model string, profiles map[string]string) *CredentialHandler {
	return &CredentialHandler{manager: m, model: model, profiles: profiles}
}

// CredentialRequest carries a new API key.
type CredentialRequest struct {
	Key string `json:"key"`
}

// HandleSet handles POST /api/credential.
func (h *CredentialHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	key := strings.TrimSpace(req.Key)
	if key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	if err := h.manager.Configure(key, h.model, h.profiles); err != nil {
		slog.Warn("API: credential rejected", "error", err)
		http.Error(w, "credential rejected", http.StatusUnprocessableEntity)
		return
	}

	slog.Info("API: credential updated")
	writeJSON(w, map[string]bool{"configured": true})
}

// HandleClear handles DELETE /api/credential.
func (h *CredentialHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearCredential()
	slog.Info("API: credential cleared")
	writeJSON(w, map[string]bool{"configured": false})
}

// HandleStatus handles GET /api/credential.
func (h *CredentialHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"configured": h.manager.Configured()})
}
