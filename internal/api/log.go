package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"snaptour/pkg/logging"
)

// Slog text attrs: key=value, values optionally quoted.
var attrPattern = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// Attr values longer than this clutter the status bar and are dropped.
const maxAttrLen = 20

// handleLatestLog returns the last captured log line for the status bar.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	line := logging.GlobalLogCapture.GetLastLine()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"log": formatLogLine(line),
	}); err != nil {
		fmt.Printf("Failed to write log response: %v\n", err)
	}
}

// formatLogLine condenses a slog text line to "HH:MM:SS msg (k=v, k=v)".
// Lines that do not parse as slog attrs pass through unchanged.
func formatLogLine(raw string) string {
	clock, msg, attrs := splitLogAttrs(raw)
	if msg == "" {
		return raw
	}

	var b strings.Builder
	if clock != "" {
		b.WriteString(clock)
		b.WriteByte(' ')
	}
	b.WriteString(msg)
	if len(attrs) > 0 {
		sort.Strings(attrs)
		b.WriteString(" (")
		b.WriteString(strings.Join(attrs, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

// splitLogAttrs pulls the timestamp, message and short display attrs out of a
// slog text line. The level attr is dropped, it adds nothing in a one-line
// status display.
func splitLogAttrs(raw string) (clock, msg string, attrs []string) {
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		key := m[1]
		val := m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				clock = t.Format("15:04:05")
			}
		case "level":
		case "msg":
			msg = val
		default:
			if len(val) <= maxAttrLen {
				attrs = append(attrs, key+"="+val)
			}
		}
	}
	return clock, msg, attrs
}
