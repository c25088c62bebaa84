package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Address == "" {
		t.Error("expected default server address")
	}
	if cfg.LLM.Model == "" {
		t.Error("expected default model")
	}
	if cfg.Speech.SampleRate != 24000 {
		t.Errorf("expected 24000 sample rate, got %d", cfg.Speech.SampleRate)
	}
	if cfg.Speech.Channels != 1 {
		t.Errorf("expected mono default, got %d channels", cfg.Speech.Channels)
	}
	if cfg.Tour.DefaultAudience != "casual" {
		t.Errorf("unexpected default audience: %s", cfg.Tour.DefaultAudience)
	}

	// Every capability intent must have a profile so per-intent model
	// resolution never falls through unexpectedly.
	for _, intent := range []string{"identify", "narrate", "speak", "chat", "funfact", "emoji", "illustrate"} {
		if cfg.LLM.Profiles[intent] == "" {
			t.Errorf("missing model profile for intent %q", intent)
		}
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snaptour.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != DefaultConfig().Server.Address {
		t.Error("expected defaults for fresh config")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
}

func TestLoadMergesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snaptour.yaml")

	content := "server:\n  address: \"localhost:9999\"\nspeech:\n  voice: \"Puck\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != "localhost:9999" {
		t.Errorf("expected overridden address, got %s", cfg.Server.Address)
	}
	if cfg.Speech.Voice != "Puck" {
		t.Errorf("expected overridden voice, got %s", cfg.Speech.Voice)
	}
	// Untouched sections keep defaults
	if cfg.DB.Path != DefaultConfig().DB.Path {
		t.Error("expected default db path to survive merge")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"30s", 30 * time.Second, false},
		{"5m", 5 * time.Minute, false},
		{"2d", 48 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"", 0, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseDuration(%q) error = %v, want err=%v", tt.in, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
