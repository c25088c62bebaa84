package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"snaptour/pkg/chat"
	"snaptour/pkg/model"
	"snaptour/pkg/prompt"
)

// maxQuestionLen caps chat questions to keep prompts bounded.
const maxQuestionLen = 500

// LandmarkSource exposes the landmark of the current tour stop.
type LandmarkSource interface {
	CurrentLandmark() (*model.LandmarkInfo, string)
}

// Answerer is the slice of the AI client the chat endpoint needs.
type Answerer interface {
	Answer(ctx context.Context, landmarkName, knownHistory, question, audienceLevel string) (string, error)
}

// ChatHandler handles follow-up questions about the landmark on display.
type ChatHandler struct {
	store    *chat.Store
	answerer Answerer
	source   LandmarkSource
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(store *chat.Store, a Answerer, src LandmarkSource) *ChatHandler {
	return &ChatHandler{store: store, answerer: a, source: src}
}

// ChatRequest is a visitor question about the current landmark.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Audience  string `json:"audience"`
}

// ChatResponse carries the model's answer.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// HandleChat handles POST /api/chat.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" || req.SessionID == "" {
		http.Error(w, "session_id and question are required", http.StatusBadRequest)
		return
	}
	question = truncateRunes(question, maxQuestionLen)

	landmark, history := h.source.CurrentLandmark()
	if landmark == nil {
		http.Error(w, "no landmark on display", http.StatusConflict)
		return
	}

	audience := req.Audience
	if !prompt.IsKnownLevel(audience) {
		audience = prompt.AudienceCasual
	}

	conv := h.store.Conversation(req.SessionID)
	if conv.BindLandmark(landmark.Name) {
		slog.Debug("API: chat moved to new landmark", "session", req.SessionID, "landmark", landmark.Name)
	}

	answer, err := h.answerer.Answer(r.Context(), landmark.Name, history, question, audience)
	if err != nil {
		slog.Warn("API: chat answer failed", "landmark", landmark.Name, "error", err)
		http.Error(w, "could not answer the question", http.StatusBadGateway)
		return
	}

	conv.Append(model.RoleUser, question)
	conv.Append(model.RoleModel, answer)

	writeJSON(w, ChatResponse{Answer: answer})
}

// truncateRunes caps s at n bytes without splitting a multi-byte rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// HandleHistory handles GET /api/chat/history. The session is identified by
// the session_id query parameter.
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.store.Conversation(id).History())
}
