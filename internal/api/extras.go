package api

import (
	"context"
	"log/slog"
	"net/http"

	"snaptour/pkg/model"
	"snaptour/pkg/prompt"
)

// ImageSource exposes the photograph of the current tour stop.
type ImageSource interface {
	CurrentImage() *model.Image
}

// ExtrasProvider is the slice of the AI client the secondary features need.
type ExtrasProvider interface {
	FunFact(ctx context.Context, landmarkName, audienceLevel string) (string, error)
	Illustrate(ctx context.Context, image []byte, mime, stylePrompt string) ([]byte, error)
	EmojiTag(ctx context.Context, landmarkName string) (string, error)
}

// ExtrasHandler serves the secondary AI features: fun facts, stylized
// artwork, and emoji tags.
type ExtrasHandler struct {
	provider ExtrasProvider
	source   LandmarkSource
	images   ImageSource
}

// NewExtrasHandler creates a new ExtrasHandler.
func NewExtrasHandler(p ExtrasProvider, src LandmarkSource, img ImageSource) *ExtrasHandler {
	return &ExtrasHandler{provider: p, source: src, images: img}
}

// HandleFunFact handles GET /api/extras/funfact.
func (h *ExtrasHandler) HandleFunFact(w http.ResponseWriter, r *http.Request) {
	landmark, _ := h.source.CurrentLandmark()
	if landmark == nil {
		http.Error(w, "no landmark on display", http.StatusConflict)
		return
	}

	audience := r.URL.Query().Get("audience")
	if !prompt.IsKnownLevel(audience) {
		audience = prompt.AudienceCasual
	}

	fact, err := h.provider.FunFact(r.Context(), landmark.Name, audience)
	if err != nil {
		slog.Warn("API: fun fact failed", "landmark", landmark.Name, "error", err)
		http.Error(w, "no fun fact available", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"fact": fact})
}

// HandleArtwork handles POST /api/extras/artwork. The style query parameter
// selects one of the preset styles; unknown values fall back to watercolor.
func (h *ExtrasHandler) HandleArtwork(w http.ResponseWriter, r *http.Request) {
	img := h.images.CurrentImage()
	if img == nil || img.Released() {
		http.Error(w, "no photograph on display", http.StatusConflict)
		return
	}

	style := prompt.StylePrompt(r.URL.Query().Get("style"))
	data, err := h.provider.Illustrate(r.Context(), img.Data, img.MIME, style)
	if err != nil {
		slog.Warn("API: artwork generation failed", "error", err)
		http.Error(w, "artwork generation failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write artwork response", "error", err)
	}
}

// HandleEmoji handles GET /api/extras/emoji.
func (h *ExtrasHandler) HandleEmoji(w http.ResponseWriter, r *http.Request) {
	landmark, _ := h.source.CurrentLandmark()
	if landmark == nil {
		http.Error(w, "no landmark on display", http.StatusConflict)
		return
	}

	emoji, err := h.provider.EmojiTag(r.Context(), landmark.Name)
	if err != nil {
		slog.Warn("API: emoji tag failed", "landmark", landmark.Name, "error", err)
		http.Error(w, "no emoji available", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"emoji": emoji})
}
