package shared

import (
	"time"
)

// TokenUsage is the token accounting reported by a text backend for one call.
type TokenUsage struct {
	Backend          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AgentMeta describes one generation step of the itinerary pipeline
// ("Itinerary", "Tips", "Reviser").
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
	Failed    bool
}

// Reported reports whether the backend returned any token accounting.
func (m AgentMeta) Reported() bool {
	return m.Usage.PromptTokens > 0 || m.Usage.CompletionTokens > 0
}
