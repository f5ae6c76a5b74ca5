package core

import "context"

// Intent is the closed set of user intentions the orchestrator routes on.
// Classification is an opaque collaborator capability; all downstream
// routing is ordinary deterministic branching on this enum.
type Intent string

const (
	IntentQualify             Intent = "QUALIFY"
	IntentCheckServiceability Intent = "CHECK_SERVICEABILITY"
	IntentPrice               Intent = "PRICE"
	IntentOrder               Intent = "ORDER"
	IntentStatus              Intent = "STATUS"
	IntentOther               Intent = "OTHER"
)

// IntentClassifier maps raw user text to an Intent. The orchestrator fails
// open to IntentOther when the classifier errors or returns an unknown value.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, text string, history []TurnRecord) (Intent, error)
}

// AgentAnswer is one sub-agent's contribution to a reply, successful or not.
type AgentAnswer struct {
	AgentID string
	Text    string
	Err     error
}

// ReplyContext is everything a ReplyGenerator may draw on for one turn.
type ReplyContext struct {
	UserMessage string
	Intent      Intent
	Stage       Stage
	Answers     []AgentAnswer
}

// ReplyGenerator turns aggregated sub-agent output into natural language.
// The orchestrator falls back to a templated reply when it is unavailable.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, rc ReplyContext) (string, error)
}

// Passage is one ranked retrieval result.
type Passage struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source,omitempty"`
}

// Retriever is the knowledge-lookup collaborator used by policy agents.
// Results are ordered by descending score.
type Retriever interface {
	Query(ctx context.Context, question string, topK int) ([]Passage, error)
}
