package mapembed

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"snaptour/pkg/config"
)

type mockFetcher struct {
	calls   int
	lastURL string
	lastKey string
	data    []byte
	err     error
}

func (f *mockFetcher) Get(ctx context.Context, rawURL, cacheKey string) ([]byte, error) {
	f.calls++
	f.lastURL = rawURL
	f.lastKey = cacheKey
	return f.data, f.err
}

func testCfg() config.MapConfig {
	return config.DefaultConfig().Map
}

func TestEmbedURL(t *testing.T) {
	s := New(nil, testCfg())

	raw := s.EmbedURL(48.858, 2.294)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid embed URL: %v", err)
	}
	q := u.Query()

	if q.Get("marker") != "48.858000,2.294000" {
		t.Errorf("unexpected marker: %s", q.Get("marker"))
	}
	bbox := strings.Split(q.Get("bbox"), ",")
	if len(bbox) != 4 {
		t.Fatalf("bbox must have 4 components: %s", q.Get("bbox"))
	}
	// West edge is padded left of the marker longitude
	if bbox[0] != "2.284000" {
		t.Errorf("unexpected west edge: %s", bbox[0])
	}
	if q.Get("layer") != "mapnik" {
		t.Errorf("unexpected layer: %s", q.Get("layer"))
	}
}

func TestEmbedURLClampsAtPoles(t *testing.T) {
	s := New(nil, testCfg())

	u, err := url.Parse(s.EmbedURL(89.999, 179.999))
	if err != nil {
		t.Fatal(err)
	}
	bbox := strings.Split(u.Query().Get("bbox"), ",")
	if bbox[2] != "180.000000" || bbox[3] != "90.000000" {
		t.Errorf("bbox must clamp to valid coordinates, got %v", bbox)
	}
}

func TestThumbnail(t *testing.T) {
	f := &mockFetcher{data: []byte{0x89, 'P', 'N', 'G'}}
	s := New(f, testCfg())

	data, err := s.Thumbnail(context.Background(), 48.858, 2.294)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if len(data) != 4 {
		t.Errorf("unexpected payload: %v", data)
	}
	if !strings.Contains(f.lastURL, "zoom=15") || !strings.Contains(f.lastURL, "size=400x300") {
		t.Errorf("unexpected request URL: %s", f.lastURL)
	}
	if !strings.HasPrefix(f.lastKey, "staticmap:") {
		t.Errorf("unexpected cache key: %s", f.lastKey)
	}
}

func TestThumbnailWithoutFetcher(t *testing.T) {
	s := New(nil, testCfg())
	if _, err := s.Thumbnail(context.Background(), 0, 0); err == nil {
		t.Error("expected error when no client is configured")
	}
}
