package api

import (
	"encoding/json"
	"net/http"

	"snaptour/pkg/tracker"
)

// StatsHandler serves cache and API usage counters per provider.
type StatsHandler struct {
	tracker *tracker.Tracker
	events  *EventsHandler
	ledger  CertificateLedger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(t *tracker.Tracker, events *EventsHandler, ledger CertificateLedger) *StatsHandler {
	return &StatsHandler{tracker: t, events: events, ledger: ledger}
}

// ProviderStatsDTO summarizes one upstream provider.
type ProviderStatsDTO struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_errors"`
	HitRate     int64 `json:"hit_rate"`
}

// StatsResponse is the full stats payload.
type StatsResponse struct {
	Providers    map[string]ProviderStatsDTO `json:"providers"`
	EventClients int                         `json:"event_clients"`
	TourStops    int                         `json:"tour_stops"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{
		Providers: make(map[string]ProviderStatsDTO),
	}
	if h.events != nil {
		resp.EventClients = h.events.ClientCount()
	}
	if h.ledger != nil {
		resp.TourStops = len(h.ledger.Summarize())
	}

	for provider, stats := range snapshot {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:   stats.CacheHits,
			CacheMisses: stats.CacheMisses,
			APISuccess:  stats.APISuccess,
			APIFailures: stats.APIFailures,
			HitRate:     hitRate,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
