// Package mapembed builds OpenStreetMap views for an identified landmark: an
// iframe embed URL for the result page and a cached static thumbnail for the
// tour ledger.
package mapembed

import (
	"context"
	"fmt"
	"net/url"

	"github.com/paulmach/orb"

	"snaptour/pkg/config"
)

// Fetcher is the slice of the HTTP client the thumbnail path needs.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, cacheKey string) ([]byte, error)
}

// Service builds map URLs and fetches static map images.
type Service struct {
	fetcher Fetcher
	cfg     config.MapConfig
}

// New creates a map service. fetcher may be nil if thumbnails are not needed.
func New(fetcher Fetcher, cfg config.MapConfig) *Service {
	return &Service{fetcher: fetcher, cfg: cfg}
}

// EmbedURL returns the iframe URL for an interactive map centered on the
// landmark, with the viewport padded around the marker.
func (s *Service) EmbedURL(lat, lon float64) string {
	b := s.bound(lat, lon)

	q := url.Values{}
	q.Set("bbox", fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.Min[0], b.Min[1], b.Max[0], b.Max[1]))
	q.Set("layer", "mapnik")
	q.Set("marker", fmt.Sprintf("%.6f,%.6f", lat, lon))
	return s.cfg.EmbedBase + "?" + q.Encode()
}

// Thumbnail fetches a static map image for the landmark. Responses are cached
// by the underlying client, keyed on the coordinates.
func (s *Service) Thumbnail(ctx context.Context, lat, lon float64) ([]byte, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("no HTTP client configured for static maps")
	}

	q := url.Values{}
	q.Set("center", fmt.Sprintf("%.6f,%.6f", lat, lon))
	q.Set("zoom", "15")
	q.Set("size", fmt.Sprintf("%dx%d", s.cfg.ThumbWidth, s.cfg.ThumbHeight))
	q.Set("markers", fmt.Sprintf("%.6f,%.6f,red-pushpin", lat, lon))

	key := fmt.Sprintf("staticmap:%.6f:%.6f:%dx%d", lat, lon, s.cfg.ThumbWidth, s.cfg.ThumbHeight)
	return s.fetcher.Get(ctx, s.cfg.StaticBase+"?"+q.Encode(), key)
}

// bound returns the viewport around the marker, padded on each side and
// clamped to valid coordinates.
func (s *Service) bound(lat, lon float64) orb.Bound {
	pad := s.cfg.PaddingDeg
	if pad <= 0 {
		pad = 0.01
	}
	b := orb.Bound{
		Min: orb.Point{lon - pad, lat - pad},
		Max: orb.Point{lon + pad, lat + pad},
	}
	b.Min[0] = clamp(b.Min[0], -180, 180)
	b.Max[0] = clamp(b.Max[0], -180, 180)
	b.Min[1] = clamp(b.Min[1], -90, 90)
	b.Max[1] = clamp(b.Max[1], -90, 90)
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
