package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
	Request RequestConfig `yaml:"request"`
	LLM     LLMConfig     `yaml:"llm"`
	Tour    TourConfig    `yaml:"tour"`
	Speech  SpeechConfig  `yaml:"speech"`
	Map     MapConfig     `yaml:"map"`
	Chat    ChatConfig    `yaml:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	Gemini   LogSettings `yaml:"gemini"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LLMConfig holds settings for the generative model provider.
type LLMConfig struct {
	Model    string            `yaml:"model"`    // default model
	Key      string            `yaml:"key"`      // API key (usually supplied by the user at runtime)
	Profiles map[string]string `yaml:"profiles"` // Map of intent -> model
}

// TourConfig holds settings for the tour pipeline.
type TourConfig struct {
	DefaultAudience string   `yaml:"default_audience"`
	CacheTTL        Duration `yaml:"cache_ttl"`
}

// SpeechConfig holds settings for speech synthesis and playback.
type SpeechConfig struct {
	Voice      string `yaml:"voice"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
}

// MapConfig holds settings for the embedded map view.
type MapConfig struct {
	EmbedBase   string  `yaml:"embed_base"`
	StaticBase  string  `yaml:"static_base"`
	PaddingDeg  float64 `yaml:"padding_deg"`
	ThumbWidth  int     `yaml:"thumb_width"`
	ThumbHeight int     `yaml:"thumb_height"`
}

// ChatConfig holds settings for result-view chat sessions.
type ChatConfig struct {
	SessionTTL Duration `yaml:"session_ttl"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1878",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			Gemini: LogSettings{
				Path:  "./logs/gemini.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/snaptour.db",
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(300 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		LLM: LLMConfig{
			Model: "gemini-2.5-flash",
			Key:   "",
			Profiles: map[string]string{
				"identify":   "gemini-2.5-flash",
				"narrate":    "gemini-2.5-flash",
				"chat":       "gemini-2.5-flash-lite",
				"funfact":    "gemini-2.5-flash-lite",
				"emoji":      "gemini-2.5-flash-lite",
				"speak":      "gemini-2.5-flash-preview-tts",
				"illustrate": "gemini-2.5-flash-image",
			},
		},
		Tour: TourConfig{
			DefaultAudience: "casual",
			CacheTTL:        Duration(7 * Day),
		},
		Speech: SpeechConfig{
			Voice:      "Kore",
			SampleRate: 24000,
			Channels:   1,
		},
		Map: MapConfig{
			EmbedBase:   "https://www.openstreetmap.org/export/embed.html",
			StaticBase:  "https://staticmap.openstreetmap.de/staticmap.php",
			PaddingDeg:  0.01,
			ThumbWidth:  400,
			ThumbHeight: 300,
		},
		Chat: ChatConfig{
			SessionTTL: Duration(30 * time.Minute),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, defaults are merged with existing values but the file
// is NOT written back, to preserve user formatting and comments.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GenerateDefault writes a default config file to the given path.
func GenerateDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return DefaultConfig().Save(path)
}
