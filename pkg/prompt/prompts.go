package prompt

import (
	"fmt"
	"strings"
)

// Artwork styles selectable in the UI.
const (
	StyleWatercolor = "watercolor"
	StyleVintage    = "vintage_postcard"
	StyleSketch     = "pencil_sketch"
	StylePopArt     = "pop_art"
)

var artworkStyles = map[string]string{
	StyleWatercolor: "a soft watercolor painting with loose brush strokes and muted colors",
	StyleVintage:    "a 1920s vintage travel postcard with warm faded tones and ornate lettering space",
	StyleSketch:     "a detailed pencil sketch with cross-hatching on textured paper",
	StylePopArt:     "a bold pop-art print with flat saturated colors and heavy outlines",
}

// Styles returns the fixed list of artwork styles, in UI order.
func Styles() []string {
	return []string{StyleWatercolor, StyleVintage, StyleSketch, StylePopArt}
}

// StylePrompt returns the rendering instruction for an artwork style,
// falling back to watercolor for unknown styles.
func StylePrompt(style string) string {
	if p, ok := artworkStyles[style]; ok {
		return p
	}
	return artworkStyles[StyleWatercolor]
}

// Identify builds the vision identification prompt. The response is
// schema-constrained on the client side.
func Identify() string {
	return strings.Join([]string{
		"Identify the landmark in this photo.",
		"If the photo does not clearly show a recognizable landmark, set is_landmark to false and leave the other fields empty.",
		"Otherwise set is_landmark to true and fill in the landmark's common name, city, country and WGS84 coordinates.",
	}, " ")
}

// Narrate builds the grounded history prompt for a landmark.
func Narrate(landmarkName, audienceLevel string) string {
	return fmt.Sprintf(
		"Give a two-paragraph history of %s. Use web search to ground every claim. %s Plain prose only, no markdown, no lists.",
		landmarkName, AudiencePhrasing(audienceLevel))
}

// Answer builds the Q&A prompt for a landmark chat turn.
func Answer(landmarkName, knownHistory, question, audienceLevel string) string {
	var sb strings.Builder
	sb.WriteString("You are a tour guide answering a visitor's question about ")
	sb.WriteString(landmarkName)
	sb.WriteString(".\n\n")
	if knownHistory != "" {
		sb.WriteString("What the visitor has already been told:\n")
		sb.WriteString(knownHistory)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\n")
	sb.WriteString(AudiencePhrasing(audienceLevel))
	sb.WriteString(" Answer in a short paragraph, plain prose, no markdown.")
	return sb.String()
}

// FunFact builds the fun-fact prompt for a landmark.
func FunFact(landmarkName, audienceLevel string) string {
	return fmt.Sprintf(
		"Share one surprising, true fun fact about %s that most visitors don't know. %s One or two sentences, plain prose.",
		landmarkName, AudiencePhrasing(audienceLevel))
}

// EmojiTag builds the emoji-tagging prompt for a landmark.
func EmojiTag(landmarkName string) string {
	return fmt.Sprintf(
		"Reply with exactly one emoji character that best represents %s. No words, no punctuation, just the emoji.",
		landmarkName)
}

// Illustrate builds the style-transfer prompt for the artwork feature.
func Illustrate(style string) string {
	return fmt.Sprintf("Redraw this photo as %s. Keep the landmark recognizable and the composition intact.", StylePrompt(style))
}
