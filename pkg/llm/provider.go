// Package llm defines the typed facade over the external generative model.
package llm

import (
	"context"

	"snaptour/pkg/model"
)

// Provider exposes one operation per AI capability. Every operation returns
// either a structured value or a *CapabilityError; each call is pure
// request/response and independently retryable by the caller.
type Provider interface {
	// Identify recognizes the landmark in an image.
	Identify(ctx context.Context, image []byte, mime string) (*model.LandmarkInfo, error)

	// Narrate returns a historical summary for a landmark with web citations.
	// Emphasis markup is stripped and sources are filtered to well-formed
	// entries before return.
	Narrate(ctx context.Context, landmarkName, audienceLevel string) (string, []model.GroundingSource, error)

	// Speak synthesizes speech and returns a base64-encoded PCM payload.
	Speak(ctx context.Context, text string) (string, error)

	// Answer responds to a question about a landmark given its known history.
	Answer(ctx context.Context, landmarkName, knownHistory, question, audienceLevel string) (string, error)

	// Illustrate restyles the original photo and returns the image bytes.
	Illustrate(ctx context.Context, image []byte, mime, stylePrompt string) ([]byte, error)

	// FunFact returns a single surprising fact about a landmark.
	FunFact(ctx context.Context, landmarkName, audienceLevel string) (string, error)

	// EmojiTag returns a single decorative emoji for a landmark.
	EmojiTag(ctx context.Context, landmarkName string) (string, error)

	// Configured reports whether a credential is currently set.
	Configured() bool
}
