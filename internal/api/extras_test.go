package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"snaptour/pkg/model"
)

// MockExtrasProvider matches the interface needed by ExtrasHandler.
type MockExtrasProvider struct {
	funFactCalls    int
	illustrateCalls int
	lastStyle       string
	fact            string
	artwork         []byte
	emoji           string
	err             error
}

func (m *MockExtrasProvider) FunFact(ctx context.Context, landmarkName, audienceLevel string) (string, error) {
	m.funFactCalls++
	return m.fact, m.err
}

func (m *MockExtrasProvider) Illustrate(ctx context.Context, image []byte, mime, stylePrompt string) ([]byte, error) {
	m.illustrateCalls++
	m.lastStyle = stylePrompt
	return m.artwork, m.err
}

func (m *MockExtrasProvider) EmojiTag(ctx context.Context, landmarkName string) (string, error) {
	return m.emoji, m.err
}

// MockImageSource matches the interface needed by ExtrasHandler.
type MockImageSource struct {
	image *model.Image
}

func (m *MockImageSource) CurrentImage() *model.Image { return m.image }

func TestHandleFunFact(t *testing.T) {
	p := &MockExtrasProvider{fact: "It grows 15 cm in summer heat."}
	src := &MockLandmarkSource{landmark: &model.LandmarkInfo{Name: "Eiffel Tower"}}
	h := NewExtrasHandler(p, src, &MockImageSource{})

	req := httptest.NewRequest("GET", "/api/extras/funfact", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleFunFact(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "15 cm") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestHandleFunFactWithoutLandmark(t *testing.T) {
	h := NewExtrasHandler(&MockExtrasProvider{}, &MockLandmarkSource{}, &MockImageSource{})

	w := httptest.NewRecorder()
	h.HandleFunFact(w, httptest.NewRequest("GET", "/api/extras/funfact", http.NoBody))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestHandleArtwork(t *testing.T) {
	p := &MockExtrasProvider{artwork: []byte{0x89, 'P', 'N', 'G'}}
	img := &MockImageSource{image: &model.Image{Data: []byte{1, 2}, MIME: "image/jpeg"}}
	h := NewExtrasHandler(p, &MockLandmarkSource{}, img)

	req := httptest.NewRequest("POST", "/api/extras/artwork?style=pencil_sketch", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleArtwork(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("unexpected content type: %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(strings.ToLower(p.lastStyle), "sketch") {
		t.Errorf("style prompt must reflect the requested style, got %q", p.lastStyle)
	}
}

func TestHandleArtworkUnknownStyleFallsBack(t *testing.T) {
	p := &MockExtrasProvider{artwork: []byte{1}}
	img := &MockImageSource{image: &model.Image{Data: []byte{1}, MIME: "image/jpeg"}}
	h := NewExtrasHandler(p, &MockLandmarkSource{}, img)

	req := httptest.NewRequest("POST", "/api/extras/artwork?style=cubism", http.NoBody)
	h.HandleArtwork(httptest.NewRecorder(), req)

	if !strings.Contains(strings.ToLower(p.lastStyle), "watercolor") {
		t.Errorf("unknown style must fall back to watercolor, got %q", p.lastStyle)
	}
}

func TestHandleArtworkWithoutPhoto(t *testing.T) {
	released := &model.Image{Data: []byte{1}, MIME: "image/jpeg"}
	released.Release()

	for _, src := range []*MockImageSource{{}, {image: released}} {
		h := NewExtrasHandler(&MockExtrasProvider{}, &MockLandmarkSource{}, src)
		w := httptest.NewRecorder()
		h.HandleArtwork(w, httptest.NewRequest("POST", "/api/extras/artwork", http.NoBody))
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409 without a usable photo, got %d", w.Code)
		}
	}
}
