package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"snaptour/pkg/cache"
	"snaptour/pkg/tracker"
)

func newTestClient() *Client {
	return New(cache.Null{}, tracker.New(), 5*time.Second, 3, time.Millisecond)
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected default user agent")
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := newTestClient()
	body, err := c.Get(context.Background(), srv.URL, "")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestGetRetriesOn500(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c := newTestClient()
	body, err := c.Get(context.Background(), srv.URL, "")
	if err != nil {
		t.Fatalf("Get failed after retries: %v", err)
	}
	if string(body) != "recovered" {
		t.Errorf("unexpected body: %s", body)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestGetFailsOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient()
	if _, err := c.Get(context.Background(), srv.URL, ""); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestGetUsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	mem := &memCache{data: map[string][]byte{}}
	c := New(mem, tracker.New(), 5*time.Second, 3, time.Millisecond)

	for i := 0; i < 2; i++ {
		body, err := c.Get(context.Background(), srv.URL, "map:1")
		if err != nil {
			t.Fatalf("Get %d failed: %v", i, err)
		}
		if string(body) != "payload" {
			t.Errorf("unexpected body: %s", body)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"staticmap.openstreetmap.de", "osm"},
		{"tile.openstreetmap.org", "osm"},
		{"generativelanguage.googleapis.com", "gemini"},
		{"example.com", "example.com"},
	}
	for _, tt := range tests {
		if got := normalizeProvider(tt.host); got != tt.want {
			t.Errorf("normalizeProvider(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

type memCache struct {
	data map[string][]byte
}

func (m *memCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memCache) SetCache(ctx context.Context, key string, val []byte) error {
	m.data[key] = val
	return nil
}
