package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"snaptour/pkg/model"
	"snaptour/pkg/tour"
)

// MockMachine matches the interface needed by TourHandler.
type MockMachine struct {
	submitCalls int
	lastMime    string
	lastLevel   string
	submitErr   error
	retryErr    error
	selectErr   error
	resetCalls  int
	status      tour.Status
}

func (m *MockMachine) SubmitImage(data []byte, mime, audienceLevel string) error {
	m.submitCalls++
	m.lastMime = mime
	m.lastLevel = audienceLevel
	return m.submitErr
}
func (m *MockMachine) Retry() error { return m.retryErr }

func (m *MockMachine) Reset() { m.resetCalls++ }

func (m *MockMachine) SelectStop(i int) error { return m.selectErr }

func (m *MockMachine) Status() tour.Status { return m.status }

// MockLedger matches the interface needed by TourHandler.
type MockLedger struct {
	stops      []model.LandmarkInfo
	clearCalls int
}

func (m *MockLedger) Summarize() []model.LandmarkInfo { return m.stops }

func (m *MockLedger) Clear() { m.clearCalls++ }

func pngUpload(t *testing.T, audience string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(2, 2, color.RGBA{200, 30, 30, 255})
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(encoded.Bytes()); err != nil {
		t.Fatal(err)
	}
	if audience != "" {
		if err := mw.WriteField("audience", audience); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestHandleSubmit(t *testing.T) {
	m := &MockMachine{}
	h := NewTourHandler(m, &MockLedger{})

	body, contentType := pngUpload(t, "scholar")
	req := httptest.NewRequest("POST", "/api/tour/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if m.submitCalls != 1 {
		t.Errorf("expected 1 submission, got %d", m.submitCalls)
	}
	if m.lastMime != "image/jpeg" {
		t.Errorf("uploads must be normalized to JPEG, got %s", m.lastMime)
	}
	if m.lastLevel != "scholar" {
		t.Errorf("unexpected audience: %s", m.lastLevel)
	}
}

func TestHandleSubmitUnknownAudienceFallsBack(t *testing.T) {
	m := &MockMachine{}
	h := NewTourHandler(m, &MockLedger{})

	body, contentType := pngUpload(t, "professor")
	req := httptest.NewRequest("POST", "/api/tour/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)

	if m.lastLevel != "casual" {
		t.Errorf("unknown audience must fall back to casual, got %s", m.lastLevel)
	}
}

func TestHandleSubmitRejectsGarbage(t *testing.T) {
	m := &MockMachine{}
	h := NewTourHandler(m, &MockLedger{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("image", "notes.txt")
	fw.Write([]byte("this is not an image"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/tour/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	if m.submitCalls != 0 {
		t.Error("invalid uploads must not reach the pipeline")
	}
}

func TestHandleSubmitMissingField(t *testing.T) {
	h := NewTourHandler(&MockMachine{}, &MockLedger{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("audience", "casual")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/tour/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.HandleSubmit(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	m := &MockMachine{status: tour.Status{Stage: tour.StageIdentifying, Attempt: 2}}
	h := NewTourHandler(m, &MockLedger{})

	req := httptest.NewRequest("GET", "/api/tour/status", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleStatus(w, req)

	var got tour.Status
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Stage != tour.StageIdentifying || got.Attempt != 2 {
		t.Errorf("unexpected status: %+v", got)
	}
}

func TestHandleSelect(t *testing.T) {
	m := &MockMachine{}
	h := NewTourHandler(m, &MockLedger{})

	req := httptest.NewRequest("POST", "/api/tour/select", strings.NewReader(`{"index":1}`))
	w := httptest.NewRecorder()
	h.HandleSelect(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("POST", "/api/tour/select", strings.NewReader(`not json`))
	w = httptest.NewRecorder()
	h.HandleSelect(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad body, got %d", w.Code)
	}
}

func TestHandleLedgerEmpty(t *testing.T) {
	h := NewTourHandler(&MockMachine{}, &MockLedger{})

	req := httptest.NewRequest("GET", "/api/tour/ledger", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleLedger(w, req)

	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty ledger must serialize as [], got %s", w.Body.String())
	}
}

func TestHandleClearLedger(t *testing.T) {
	m := &MockMachine{}
	l := &MockLedger{stops: []model.LandmarkInfo{{Name: "Eiffel Tower"}}}
	h := NewTourHandler(m, l)

	req := httptest.NewRequest("POST", "/api/tour/ledger/clear", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleClearLedger(w, req)

	if l.clearCalls != 1 || m.resetCalls != 1 {
		t.Errorf("clear must wipe the ledger and reset the step, clear=%d reset=%d", l.clearCalls, m.resetCalls)
	}
}
