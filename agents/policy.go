package agents

import (
	"context"
	"fmt"

	"github.com/hupe1980/salesmesh/core"
)

// minPolicyScore is the relevance floor below which a passage is treated as
// noise rather than an answer.
const minPolicyScore = 0.2

// PolicyAgent answers policy questions from a document corpus. One instance
// covers one policy area (product, order, service or fulfillment policy);
// the area only differs in the agent's name and corpus. A question the
// corpus cannot answer yields a structured not-found response, never a
// fabricated one.
type PolicyAgent struct {
	BaseAgent
	retriever core.Retriever
	topK      int
}

// PolicyOptions configures a PolicyAgent.
type PolicyOptions struct {
	BaseOptions
	// TopK bounds how many passages one answer draws on. Defaults to 3.
	TopK int
}

// NewPolicyAgent creates a policy agent over a retriever. The name should
// follow the "<area>_policy_agent" convention.
func NewPolicyAgent(name string, retriever core.Retriever, optFns ...func(o *PolicyOptions)) *PolicyAgent {
	opts := PolicyOptions{TopK: 3}
	for _, fn := range optFns {
		fn(&opts)
	}
	base := NewBaseAgent(
		name,
		fmt.Sprintf("Answers %s questions from the policy corpus", name),
		[]string{"policy"},
		func(o *BaseOptions) {
			if opts.Logger != nil {
				o.Logger = opts.Logger
			}
		},
	)
	return &PolicyAgent{BaseAgent: base, retriever: retriever, topK: opts.TopK}
}

// Handle implements core.Agent.
func (a *PolicyAgent) Handle(ctx context.Context, env core.Envelope) (core.Envelope, error) {
	question := env.Payload.String("question")
	if question == "" {
		question = env.Payload.String("message")
	}

	trace := core.TraceFrom(ctx)
	trace.Tool(core.ToolRetrieval)

	passages, err := a.retriever.Query(ctx, question, a.topK)
	if err != nil {
		return core.Envelope{}, fmt.Errorf("policy lookup failed: %w", err)
	}

	var hits []core.Payload
	for _, p := range passages {
		if p.Score < minPolicyScore {
			continue
		}
		hits = append(hits, core.Payload{
			"text":   p.Text,
			"score":  p.Score,
			"source": p.Source,
		})
	}

	if len(hits) == 0 {
		a.Logger().Debug("no policy passage for question: %s", question)
		return env.Respond(core.Payload{
			"found":    false,
			"question": question,
			"answer":   "The policy corpus has no entry covering this question.",
		}), nil
	}

	return env.Respond(core.Payload{
		"found":    true,
		"question": question,
		"answer":   hits[0].String("text"),
		"passages": hits,
	}), nil
}
