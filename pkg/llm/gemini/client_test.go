package gemini

import (
	"context"
	"testing"

	"google.golang.org/genai"

	"snaptour/pkg/config"
	"snaptour/pkg/llm"
	"snaptour/pkg/tracker"
)

func newUnconfiguredClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(config.LLMConfig{Model: "gemini-2.5-flash"}, "Kore", "", tracker.New())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestUnconfiguredClientFailsFast(t *testing.T) {
	c := newUnconfiguredClient(t)
	ctx := context.Background()

	if c.Configured() {
		t.Fatal("client without key must not report configured")
	}

	_, err := c.Identify(ctx, []byte{1}, "image/jpeg")
	ce, ok := llm.AsCapabilityError(err)
	if !ok {
		t.Fatalf("expected CapabilityError, got %v", err)
	}
	if ce.Kind != llm.KindInvalidCredential {
		t.Errorf("expected invalid credential, got %s", ce.Kind)
	}

	if _, _, err := c.Narrate(ctx, "Eiffel Tower", "casual"); err == nil {
		t.Error("narrate must fail without credential")
	}
	if _, err := c.Speak(ctx, "hello"); err == nil {
		t.Error("speak must fail without credential")
	}
}

func TestResolveModel(t *testing.T) {
	c := newUnconfiguredClient(t)
	c.profiles = map[string]string{"identify": "gemini-pro-vision", "speak": ""}

	if got := c.resolveModel("identify"); got != "gemini-pro-vision" {
		t.Errorf("expected profile model, got %s", got)
	}
	// Empty profile entry falls back to default
	if got := c.resolveModel("speak"); got != "gemini-2.5-flash" {
		t.Errorf("expected default model, got %s", got)
	}
	if got := c.resolveModel("unknown"); got != "gemini-2.5-flash" {
		t.Errorf("expected default model for unknown intent, got %s", got)
	}
}

func TestIdentifyResponseValidation(t *testing.T) {
	tests := []struct {
		name     string
		resp     identifyResponse
		wantKind llm.Kind
	}{
		{
			name:     "not a landmark flag",
			resp:     identifyResponse{IsLandmark: false},
			wantKind: llm.KindNotALandmark,
		},
		{
			name:     "missing name",
			resp:     identifyResponse{IsLandmark: true, City: "Paris", Country: "France"},
			wantKind: llm.KindNotALandmark,
		},
		{
			name:     "missing country",
			resp:     identifyResponse{IsLandmark: true, Name: "Eiffel Tower", City: "Paris"},
			wantKind: llm.KindNotALandmark,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.resp.toLandmarkInfo()
			ce, ok := llm.AsCapabilityError(err)
			if !ok {
				t.Fatalf("expected CapabilityError, got %v", err)
			}
			if ce.Kind != tt.wantKind {
				t.Errorf("expected %s, got %s", tt.wantKind, ce.Kind)
			}
		})
	}

	info, err := identifyResponse{
		IsLandmark: true,
		Name:       "Eiffel Tower",
		City:       "Paris",
		Country:    "France",
		Latitude:   48.8584,
		Longitude:  2.2945,
	}.toLandmarkInfo()
	if err != nil {
		t.Fatalf("valid response failed: %v", err)
	}
	if info.Name != "Eiffel Tower" || info.Latitude != 48.8584 {
		t.Errorf("unexpected landmark info: %+v", info)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want llm.Kind
	}{
		{"api 403", genai.APIError{Code: 403, Message: "forbidden"}, llm.KindInvalidCredential},
		{"api 401", genai.APIError{Code: 401, Message: "unauthorized"}, llm.KindInvalidCredential},
		{"api 429", genai.APIError{Code: 429, Message: "too many requests"}, llm.KindQuotaExhausted},
		{"api 500", genai.APIError{Code: 500, Message: "internal"}, llm.KindTransient},
		{"key sniff", errTransport("API key not valid. Please pass a valid API key."), llm.KindInvalidCredential},
		{"quota sniff", errTransport("rpc error: RESOURCE_EXHAUSTED"), llm.KindQuotaExhausted},
		{"network", errTransport("connection reset by peer"), llm.KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, ok := llm.AsCapabilityError(classify("narrate", tt.err))
			if !ok {
				t.Fatal("expected CapabilityError")
			}
			if ce.Kind != tt.want {
				t.Errorf("expected %s, got %s", tt.want, ce.Kind)
			}
			if ce.Op != "narrate" {
				t.Errorf("expected op to be preserved, got %s", ce.Op)
			}
		})
	}
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	orig := llm.NewCapabilityError(llm.KindNoAudioProduced, "speak", "empty", nil)
	got := classify("speak", orig)
	ce, ok := llm.AsCapabilityError(got)
	if !ok || ce.Kind != llm.KindNoAudioProduced {
		t.Errorf("pre-classified error must pass through, got %v", got)
	}
}

func TestIdentifySchemaCoversFields(t *testing.T) {
	s := identifySchema()
	for _, field := range []string{"is_landmark", "name", "city", "country", "latitude", "longitude"} {
		if _, ok := s.Properties[field]; !ok {
			t.Errorf("schema missing field %s", field)
		}
	}
}

type errTransport string

func (e errTransport) Error() string { return string(e) }
