// Package prompt builds the instruction text sent to the generative backend.
package prompt

// Audience levels selectable in the UI.
const (
	AudienceKids       = "kids"
	AudienceCasual     = "casual"
	AudienceEnthusiast = "enthusiast"
	AudienceScholar    = "scholar"
)

// audiencePhrasing maps each audience level to the phrasing instruction sent
// with every text-generating request.
var audiencePhrasing = map[string]string{
	AudienceKids:       "Use simple, playful language a ten-year-old understands. Short sentences, no jargon, a sense of wonder.",
	AudienceCasual:     "Use friendly, conversational language for a curious traveler. Accessible but not childish.",
	AudienceEnthusiast: "Use rich, detailed language for a history enthusiast. Include dates, names and architectural context.",
	AudienceScholar:    "Use precise, academic language. Cite periods, movements and primary actors; avoid embellishment.",
}

// Levels returns the fixed list of selectable audience levels, in UI order.
func Levels() []string {
	return []string{AudienceKids, AudienceCasual, AudienceEnthusiast, AudienceScholar}
}

// AudiencePhrasing returns the phrasing instruction for a level. The lookup
// is total: unrecognized levels fall back to the neutral casual phrasing.
func AudiencePhrasing(level string) string {
	if p, ok := audiencePhrasing[level]; ok {
		return p
	}
	return audiencePhrasing[AudienceCasual]
}

// IsKnownLevel reports whether the level is one of the fixed enumeration.
func IsKnownLevel(level string) bool {
	_, ok := audiencePhrasing[level]
	return ok
}
