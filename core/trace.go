package core

import (
	"context"
	"slices"
	"sync"
)

// Tool and communication-method labels recorded in activity traces.
const (
	ToolRetrieval     = "retrieval"
	ToolLanguageModel = "language-model"

	MethodDirectCall      = "direct-call"
	MethodProtocolMessage = "protocol-message"
	MethodExternalAPI     = "external-api"
)

// ActivityTrace is the observability record returned to the caller with
// every reply. The field names are part of the contract consumed by any UI.
//
// SubAgentsInvoked lists one entry per dispatch attempt, so a retried agent
// appears twice. ToolsUsed and CommunicationMethods are deduplicated.
type ActivityTrace struct {
	SubAgentsInvoked     []string `json:"sub_agents_invoked"`
	ToolsUsed            []string `json:"tools_used"`
	CommunicationMethods []string `json:"communication_methods"`
	Errors               []string `json:"errors,omitempty"`
}

// TraceRecorder accumulates an ActivityTrace across the concurrent dispatches
// of a single turn. Safe for concurrent use.
type TraceRecorder struct {
	mu      sync.Mutex
	agents  []string
	tools   []string
	methods []string
	errs    []string
}

// NewTraceRecorder returns an empty recorder.
func NewTraceRecorder() *TraceRecorder { return &TraceRecorder{} }

// Agent records a dispatch attempt to the named agent.
func (r *TraceRecorder) Agent(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents = append(r.agents, agentID)
}

// Tool records use of an external capability such as retrieval.
func (r *TraceRecorder) Tool(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.tools, name) {
		r.tools = append(r.tools, name)
	}
}

// Method records the communication mechanism used for a dispatch.
func (r *TraceRecorder) Method(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.methods, name) {
		r.methods = append(r.methods, name)
	}
}

// Error preserves a structured failure for observability. The user-facing
// reply never contains raw errors; they live here instead.
func (r *TraceRecorder) Error(agentID string, err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, agentID+": ["+ErrorCode(err)+"] "+err.Error())
}

// Snapshot returns the accumulated trace. Slices are copied so the recorder
// can keep accumulating safely.
func (r *TraceRecorder) Snapshot() ActivityTrace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ActivityTrace{
		SubAgentsInvoked:     slices.Clone(r.agents),
		ToolsUsed:            slices.Clone(r.tools),
		CommunicationMethods: slices.Clone(r.methods),
		Errors:               slices.Clone(r.errs),
	}
}

type traceKey struct{}

// WithTrace attaches a recorder to the context so nested dispatch layers can
// contribute to the turn's trace.
func WithTrace(ctx context.Context, r *TraceRecorder) context.Context {
	return context.WithValue(ctx, traceKey{}, r)
}

// TraceFrom returns the recorder attached to ctx, or a throwaway recorder so
// callers never need a nil check.
func TraceFrom(ctx context.Context) *TraceRecorder {
	if r, ok := ctx.Value(traceKey{}).(*TraceRecorder); ok {
		return r
	}
	return NewTraceRecorder()
}
