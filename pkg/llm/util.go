package llm

import (
	"strings"
)

// SanitizeMarkup strips emphasis markup from generated text so narration and
// chat answers read cleanly and feed the TTS without artifacts. The transform
// is a pure character filter and therefore idempotent.
func SanitizeMarkup(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		// Heading markers only count at the start of a line
		for strings.HasPrefix(trimmed, "#") {
			trimmed = strings.TrimPrefix(trimmed, "#")
		}
		trimmed = strings.TrimLeft(trimmed, " ")
		lines[i] = trimmed
	}
	text = strings.Join(lines, "\n")

	replacer := strings.NewReplacer("**", "", "*", "", "__", "", "_", "", "`", "")
	return strings.TrimSpace(replacer.Replace(text))
}

// CleanJSONBlock removes markdown code fences from a JSON string if present.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "```json")
	if start != -1 {
		text = text[start+len("```json"):]
		if end := strings.LastIndex(text, "```"); end != -1 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	start = strings.Index(text, "```")
	if start != -1 {
		text = text[start+len("```"):]
		if end := strings.LastIndex(text, "```"); end != -1 {
			text = text[:end]
		}
	}

	return strings.TrimSpace(text)
}

// WordWrap wraps text at the specified width. Used for prompt history logs.
func WordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLineLength := 0
		for j, word := range words {
			if j > 0 {
				if currentLineLength+len(word)+1 > width {
					result.WriteString("\n")
					currentLineLength = 0
				} else {
					result.WriteString(" ")
					currentLineLength++
				}
			}
			result.WriteString(word)
			currentLineLength += len(word)
		}
	}

	return result.String()
}
