package api

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"snaptour/pkg/cert"
	"snaptour/pkg/model"
)

// MockTagger matches the interface needed by CertificateHandler.
type MockTagger struct {
	emoji string
	err   error
}

func (m *MockTagger) EmojiTag(ctx context.Context, landmarkName string) (string, error) {
	return m.emoji, m.err
}

func TestHandleCertificate(t *testing.T) {
	l := &MockLedger{stops: []model.LandmarkInfo{
		{Name: "Eiffel Tower", City: "Paris", Country: "France"},
		{Name: "Louvre", City: "Paris", Country: "France"},
	}}
	h := NewCertificateHandler(cert.NewRenderer(), l, &MockTagger{emoji: "[tower]"})

	req := httptest.NewRequest("GET", "/api/certificate?visitor=Alex", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleCertificate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Fatalf("response is not a valid PNG: %v", err)
	}
}

func TestHandleCertificateEmptyLedger(t *testing.T) {
	h := NewCertificateHandler(cert.NewRenderer(), &MockLedger{}, nil)

	w := httptest.NewRecorder()
	h.HandleCertificate(w, httptest.NewRequest("GET", "/api/certificate", http.NoBody))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 with no visits, got %d", w.Code)
	}
}

func TestHandleCertificateTaggerFailureIsNotFatal(t *testing.T) {
	l := &MockLedger{stops: []model.LandmarkInfo{{Name: "Eiffel Tower", City: "Paris", Country: "France"}}}
	h := NewCertificateHandler(cert.NewRenderer(), l, &MockTagger{err: errors.New("quota")})

	w := httptest.NewRecorder()
	h.HandleCertificate(w, httptest.NewRequest("GET", "/api/certificate", http.NoBody))
	if w.Code != http.StatusOK {
		t.Errorf("emoji failures must not block the certificate, got %d", w.Code)
	}
}
