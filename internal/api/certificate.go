package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"snaptour/pkg/cert"
	"snaptour/pkg/model"
)

// EmojiTagger decorates certificate entries.
type EmojiTagger interface {
	EmojiTag(ctx context.Context, landmarkName string) (string, error)
}

// CertificateLedger lists the visited landmarks.
type CertificateLedger interface {
	Summarize() []model.LandmarkInfo
}

// CertificateHandler renders the printable tour certificate.
type CertificateHandler struct {
	renderer *cert.Renderer
	ledger   CertificateLedger
	tagger   EmojiTagger
}

// NewCertificateHandler creates a new CertificateHandler. tagger may be nil;
// entries then carry the placeholder tag.
func NewCertificateHandler(r *cert.Renderer, l CertificateLedger, tagger EmojiTagger) *CertificateHandler {
	return &CertificateHandler{renderer: r, ledger: l, tagger: tagger}
}

// HandleCertificate handles GET /api/certificate.
func (h *CertificateHandler) HandleCertificate(w http.ResponseWriter, r *http.Request) {
	stops := h.ledger.Summarize()
	if len(stops) == 0 {
		http.Error(w, "no landmarks visited yet", http.StatusConflict)
		return
	}

	entries := make([]cert.Entry, 0, len(stops))
	for _, lm := range stops {
		entries = append(entries, cert.Entry{
			Name:     lm.Name,
			Location: fmt.Sprintf("%s, %s", lm.City, lm.Country),
			Emoji:    h.tag(r.Context(), lm.Name),
		})
	}

	data, err := h.renderer.Render(r.URL.Query().Get("visitor"), time.Now(), entries)
	if err != nil {
		slog.Error("API: certificate render failed", "error", err)
		http.Error(w, "certificate render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="snaptour-certificate.png"`)
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write certificate response", "error", err)
	}
}

// tag fetches a decorative emoji, falling back to the placeholder on any
// failure so a flaky backend never blocks the certificate.
func (h *CertificateHandler) tag(ctx context.Context, landmarkName string) string {
	if h.tagger == nil {
		return ""
	}
	emoji, err := h.tagger.EmojiTag(ctx, landmarkName)
	if err != nil {
		slog.Debug("API: emoji tag unavailable for certificate", "landmark", landmarkName, "error", err)
		return ""
	}
	return emoji
}
