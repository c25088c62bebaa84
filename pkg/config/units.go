package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML parsing with human-friendly units.
type Duration time.Duration

// Common durations.
const (
	Day  = Duration(24 * time.Hour)
	Week = 7 * Day
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ParseDuration parses a duration string, supporting d and w suffixes in
// addition to the standard time.ParseDuration units.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	// Fast path for standard units
	if dur, err := time.ParseDuration(s); err == nil {
		return dur, nil
	}

	// Handle day/week suffixes (single-unit form, e.g. "30d" or "2w")
	if strings.HasSuffix(s, "d") {
		var days float64
		if _, err := fmt.Sscanf(s, "%fd", &days); err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return time.Duration(days * float64(24*time.Hour)), nil
	}
	if strings.HasSuffix(s, "w") {
		var weeks float64
		if _, err := fmt.Sscanf(s, "%fw", &weeks); err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return time.Duration(weeks * float64(7*24*time.Hour)), nil
	}

	return 0, fmt.Errorf("invalid duration %q", s)
}
