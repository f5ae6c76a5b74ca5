package core

import "context"

// Agent is the uniform capability contract every sub-agent satisfies,
// regardless of which reasoning engine or external tool backs it.
//
// Handle receives a REQUEST envelope and returns the RESPONSE or ERROR
// envelope for it, or an error when the agent cannot even form an envelope.
// Agents must not mutate state belonging to another agent directly; all
// cross-agent effects happen via further envelopes.
//
// Implementations must respect context cancellation: work already past its
// point of no return may complete, but no new dispatches should start once
// the context is cancelled.
type Agent interface {
	Name() string
	Description() string
	Capabilities() []string
	Handle(ctx context.Context, env Envelope) (Envelope, error)
}

// AgentStatus tracks the health of a registered agent as observed by the
// orchestrator after dispatch outcomes.
type AgentStatus string

const (
	// StatusAvailable means the agent answered its most recent dispatch.
	StatusAvailable AgentStatus = "AVAILABLE"
	// StatusBusy means a dispatch to the agent timed out once.
	StatusBusy AgentStatus = "BUSY"
	// StatusUnreachable means the agent exhausted its retry budget.
	StatusUnreachable AgentStatus = "UNREACHABLE"
)
