package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// MockCredentialManager matches the interface needed by CredentialHandler.
type MockCredentialManager struct {
	key        string
	model      string
	configured bool
	clearCalls int
	err        error
}

func (m *MockCredentialManager) Configure(key, modelName string, profiles map[string]string) error {
	if m.err != nil {
		return m.err
	}
	m.key = key
	m.model = modelName
	m.configured = true
	return nil
}

func (m *MockCredentialManager) ClearCredential() {
	m.clearCalls++
	m.configured = false
}

func (m *MockCredentialManager) Configured() bool { return m.configured }

func TestHandleSetCredential(t *testing.T) {
	mgr := &MockCredentialManager{}
	h := NewCredentialHandler(mgr, "gemini-2.5-flash", map[string]string{"identify": "gemini-2.5-flash"})

	req := httptest.NewRequest("POST", "/api/credential", strings.NewReader(`{"key":"  AIzaTest  "}`))
	w := httptest.NewRecorder()
	h.HandleSet(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mgr.key != "AIzaTest" {
		t.Errorf("key must be trimmed, got %q", mgr.key)
	}
	if mgr.model != "gemini-2.5-flash" {
		t.Errorf("configured model must come from config, got %q", mgr.model)
	}
	if strings.Contains(w.Body.String(), "AIzaTest") {
		t.Error("the key must never be echoed back")
	}
}

func TestHandleSetCredentialEmpty(t *testing.T) {
	h := NewCredentialHandler(&MockCredentialManager{}, "m", nil)

	req := httptest.NewRequest("POST", "/api/credential", strings.NewReader(`{"key":"   "}`))
	w := httptest.NewRecorder()
	h.HandleSet(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank key, got %d", w.Code)
	}
}

func TestHandleClearCredential(t *testing.T) {
	mgr := &MockCredentialManager{configured: true}
	h := NewCredentialHandler(mgr, "m", nil)

	req := httptest.NewRequest("DELETE", "/api/credential", http.NoBody)
	w := httptest.NewRecorder()
	h.HandleClear(w, req)

	if mgr.clearCalls != 1 {
		t.Error("clear must reach the manager")
	}
	if !strings.Contains(w.Body.String(), `"configured":false`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestHandleCredentialStatus(t *testing.T) {
	h := NewCredentialHandler(&MockCredentialManager{configured: true}, "m", nil)

	w := httptest.NewRecorder()
	h.HandleStatus(w, httptest.NewRequest("GET", "/api/credential", http.NoBody))
	if !strings.Contains(w.Body.String(), `"configured":true`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}
