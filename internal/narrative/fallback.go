package narrative

import (
	"fmt"
	"strings"
)

// Deterministic fallbacks keep the simulation semantically complete when no
// language model is configured or a call fails.

var fallbackNameRoots = []string{
	"Ashen", "River", "Stone", "Ember", "Reed", "Salt", "Thorn", "Cloud",
}

var fallbackNameStems = []string{
	"kin", "folk", "band", "clan", "march", "hold", "water", "field",
}

// FallbackIdentity derives a stable identity from the request id so retries
// produce the same answer.
func FallbackIdentity(req Request) *IdentityResponse {
	h := hashString(req.ID)
	root := fallbackNameRoots[h%uint32(len(fallbackNameRoots))]
	stem := fallbackNameStems[(h/7)%uint32(len(fallbackNameStems))]
	return &IdentityResponse{
		Name:     root + " " + strings.Title(stem),
		Motto:    "endure the seasons",
		Religion: "the old observance",
		CoreLaws: []string{"share the harvest", "guard the hearth"},
	}
}

// FallbackDialogue glosses the exchange from its action context.
func FallbackDialogue(req Request) *DialogueResponse {
	action, _ := req.Payload["actionContext"].(string)
	if action == "" {
		action = "the day's work"
	}
	return &DialogueResponse{
		Gloss: fmt.Sprintf("They speak briefly of %s.", action),
		Tone:  "plain",
	}
}

// FallbackChronicle compresses the recent logs into one line.
func FallbackChronicle(req Request) string {
	logs, _ := req.Payload["recentLogs"].([]string)
	if len(logs) == 0 {
		return "The seasons passed without record."
	}
	text := "In this span: " + strings.Join(logs, "; ")
	if len(text) > chronicleMaxChars {
		text = text[:chronicleMaxChars]
	}
	return text
}

// hashString is a small FNV-style mix for stable fallback selection.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
