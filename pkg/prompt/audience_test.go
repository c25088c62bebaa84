package prompt

import (
	"strings"
	"testing"
)

func TestAudiencePhrasingTotal(t *testing.T) {
	// Known levels map to distinct phrasings
	seen := map[string]bool{}
	for _, level := range Levels() {
		p := AudiencePhrasing(level)
		if p == "" {
			t.Errorf("empty phrasing for %s", level)
		}
		if seen[p] {
			t.Errorf("duplicate phrasing for %s", level)
		}
		seen[p] = true
	}

	// Unknown levels never fail, they fall back to the neutral phrasing
	for _, level := range []string{"", "expert", "ELI5", "🤷"} {
		if AudiencePhrasing(level) != AudiencePhrasing(AudienceCasual) {
			t.Errorf("expected casual fallback for %q", level)
		}
		if IsKnownLevel(level) {
			t.Errorf("%q must not be a known level", level)
		}
	}
}

func TestStylePromptTotal(t *testing.T) {
	for _, style := range Styles() {
		if StylePrompt(style) == "" {
			t.Errorf("empty prompt for style %s", style)
		}
	}
	if StylePrompt("cubist") != StylePrompt(StyleWatercolor) {
		t.Error("expected watercolor fallback for unknown style")
	}
}

func TestPromptsMentionSubject(t *testing.T) {
	name := "Eiffel Tower"

	if !strings.Contains(Narrate(name, AudienceKids), name) {
		t.Error("narrate prompt must name the landmark")
	}
	if !strings.Contains(FunFact(name, AudienceScholar), name) {
		t.Error("funfact prompt must name the landmark")
	}
	if !strings.Contains(EmojiTag(name), name) {
		t.Error("emoji prompt must name the landmark")
	}

	ans := Answer(name, "It opened in 1889.", "How tall is it?", AudienceCasual)
	for _, want := range []string{name, "It opened in 1889.", "How tall is it?"} {
		if !strings.Contains(ans, want) {
			t.Errorf("answer prompt missing %q", want)
		}
	}

	// Empty history is omitted cleanly
	ans = Answer(name, "", "How tall?", AudienceCasual)
	if strings.Contains(ans, "already been told") {
		t.Error("answer prompt must omit history section when empty")
	}
}
