package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"snaptour/pkg/audio"
	"snaptour/pkg/pcm"
	"snaptour/pkg/tour"
)

// AudioHandler plays the narration of the current tour stop on the host
// speaker. Playback runs server-side so the GUI shell stays silent.
type AudioHandler struct {
	audio      audio.Service
	machine    TourMachine
	sampleRate int
	channels   int
}

// NewAudioHandler creates a new AudioHandler.
func NewAudioHandler(audioSvc audio.Service, m TourMachine, sampleRate, channels int) *AudioHandler {
	return &AudioHandler{
		audio:      audioSvc,
		machine:    m,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// AudioStatusResponse represents the playback state.
type AudioStatusResponse struct {
	IsPlaying bool `json:"is_playing"`
}

// HandlePlay handles POST /api/audio/play. It decodes the narration of the
// current stop and starts playback, stopping any narration already playing.
func (h *AudioHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	status := h.machine.Status()
	if status.Stage != tour.StageDone || status.Audio == "" {
		http.Error(w, "no narration available", http.StatusConflict)
		return
	}

	raw, err := pcm.Decode(status.Audio)
	if err != nil {
		slog.Error("API: narration payload corrupt", "error", err)
		http.Error(w, "narration payload corrupt", http.StatusInternalServerError)
		return
	}
	buf, err := pcm.DecodeAudioData(raw, h.sampleRate, h.channels)
	if err != nil {
		slog.Error("API: narration format unsupported", "error", err)
		http.Error(w, "narration format unsupported", http.StatusInternalServerError)
		return
	}

	if err := h.audio.Play(buf, func() {
		slog.Debug("API: narration finished")
	}); err != nil {
		http.Error(w, "playback failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "playing"})
}

// HandleStop handles POST /api/audio/stop.
func (h *AudioHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.audio.Stop()
	writeJSON(w, map[string]string{"status": "stopped"})
}

// HandleStatus handles GET /api/audio/status.
func (h *AudioHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	resp := AudioStatusResponse{IsPlaying: h.audio.IsPlaying()}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
