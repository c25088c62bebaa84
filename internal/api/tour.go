package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"snaptour/pkg/llm/imageutil"
	"snaptour/pkg/model"
	"snaptour/pkg/prompt"
	"snaptour/pkg/tour"
)

// maxUploadBytes caps the photo upload size at 20 MB.
const maxUploadBytes = 20 << 20

// TourMachine is the slice of the pipeline the handler needs.
type TourMachine interface {
	SubmitImage(data []byte, mime, audienceLevel string) error
	Retry() error
	Reset()
	SelectStop(i int) error
	Status() tour.Status
}

// LedgerView exposes the recorded stops for listing.
type LedgerView interface {
	Summarize() []model.LandmarkInfo
	Clear()
}

// TourHandler handles the tour pipeline endpoints.
type TourHandler struct {
	machine TourMachine
	ledger  LedgerView
}

// NewTourHandler creates a new TourHandler.
func NewTourHandler(m TourMachine, l LedgerView) *TourHandler {
	return &TourHandler{machine: m, ledger: l}
}

// HandleSubmit handles POST /api/tour/submit. The photo arrives as multipart
// form data and is normalized before entering the pipeline.
func (h *TourHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "missing image field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	prepared, mime, err := imageutil.Prepare(raw)
	if err != nil {
		slog.Warn("API: rejected upload", "error", err, "bytes", len(raw))
		http.Error(w, "unrecognized image format", http.StatusUnprocessableEntity)
		return
	}

	audience := r.FormValue("audience")
	if !prompt.IsKnownLevel(audience) {
		audience = prompt.AudienceCasual
	}

	if err := h.machine.SubmitImage(prepared, mime, audience); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "accepted"})
}

// HandleRetry handles POST /api/tour/retry.
func (h *TourHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Retry(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"status": "retrying"})
}

// HandleReset handles POST /api/tour/reset.
func (h *TourHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.machine.Reset()
	writeJSON(w, map[string]string{"status": "idle"})
}

// HandleStatus handles GET /api/tour/status.
func (h *TourHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.machine.Status())
}

// SelectRequest identifies a recorded stop to replay.
type SelectRequest struct {
	Index int `json:"index"`
}

// HandleSelect handles POST /api/tour/select.
func (h *TourHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.machine.SelectStop(req.Index); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"status": "selected"})
}

// HandleLedger handles GET /api/tour/ledger.
func (h *TourHandler) HandleLedger(w http.ResponseWriter, r *http.Request) {
	stops := h.ledger.Summarize()
	if stops == nil {
		stops = []model.LandmarkInfo{}
	}
	writeJSON(w, stops)
}

// HandleClearLedger handles POST /api/tour/ledger/clear.
func (h *TourHandler) HandleClearLedger(w http.ResponseWriter, r *http.Request) {
	h.ledger.Clear()
	h.machine.Reset()
	slog.Info("API: tour ledger cleared")
	writeJSON(w, map[string]string{"status": "cleared"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
