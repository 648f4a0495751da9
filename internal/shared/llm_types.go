package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// IsZero reports whether no tokens were recorded.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// AgentMeta holds operational metadata for one model call.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// NewAgentMeta builds the metadata for a call that started at start.
func NewAgentMeta(agent string, usage TokenUsage, start time.Time) AgentMeta {
	return AgentMeta{
		AgentName: agent,
		Usage:     usage,
		Latency:   time.Since(start),
	}
}

// Agent names recorded in the execution metrics.
const (
	AgentPlanner     = "Planner"
	AgentSwapper     = "MealSwapper"
	AgentCategorizer = "GroceryCategorizer"
	AgentChef        = "Chef"
	AgentWebSearch   = "WebSearch"
	AgentRecipeCard  = "RecipeCard"
	AgentImage       = "ImageGenerator"
	AgentClipper     = "Clipper"
)
