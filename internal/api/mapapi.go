package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"snaptour/pkg/mapembed"
)

// MapHandler serves map URLs and static thumbnails for identified landmarks.
type MapHandler struct {
	maps *mapembed.Service
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(m *mapembed.Service) *MapHandler {
	return &MapHandler{maps: m}
}

// HandleEmbed handles GET /api/map/embed.
func (h *MapHandler) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoords(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]string{"url": h.maps.EmbedURL(lat, lon)})
}

// HandleThumbnail handles GET /api/map/thumbnail.
func (h *MapHandler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoords(w, r)
	if !ok {
		return
	}

	data, err := h.maps.Thumbnail(r.Context(), lat, lon)
	if err != nil {
		slog.Warn("API: static map fetch failed", "lat", lat, "lon", lon, "error", err)
		http.Error(w, "static map unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write thumbnail response", "error", err)
	}
}

func parseCoords(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	var err error
	lat, err = strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		http.Error(w, "invalid lat", http.StatusBadRequest)
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		http.Error(w, "invalid lon", http.StatusBadRequest)
		return 0, 0, false
	}
	return lat, lon, true
}
