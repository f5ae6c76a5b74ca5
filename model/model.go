// Package model contains the prompt plumbing shared by the reasoning-backend
// adapters. The collaborator interfaces (IntentClassifier, ReplyGenerator)
// live in the core package; providers (OpenAI, Anthropic, the static
// rule-based fallback) implement them in subpackages so higher layers remain
// decoupled from vendor SDKs.
package model

import (
	"fmt"
	"strings"

	"github.com/hupe1980/salesmesh/core"
)

// Intents lists the classifier's closed output set in prompt order.
var Intents = []core.Intent{
	core.IntentQualify,
	core.IntentCheckServiceability,
	core.IntentPrice,
	core.IntentOrder,
	core.IntentStatus,
	core.IntentOther,
}

// ClassifySystemPrompt instructs a model to emit exactly one intent label.
const ClassifySystemPrompt = `You classify messages from business customers of a telecom provider.
Answer with exactly one of these labels and nothing else:
QUALIFY - the customer introduces their company or asks whether the service fits them
CHECK_SERVICEABILITY - the customer asks whether an address can be served
PRICE - the customer asks about tariffs, prices or offers
ORDER - the customer wants to place or confirm an order
STATUS - the customer asks about the progress of an existing order
OTHER - anything else`

// ReplySystemPrompt instructs a model to write the assistant turn.
const ReplySystemPrompt = `You are the assistant of a telecom provider talking to a business customer.
Write a short, helpful reply based only on the findings below. Do not invent
prices, availability or order states that the findings do not contain. If a
finding reports an error, acknowledge the limitation without technical detail.`

// BuildClassifyInput renders the user turn for intent classification,
// including recent history so follow-ups like "yes, order it" resolve.
func BuildClassifyInput(text string, history []core.TurnRecord) string {
	var b strings.Builder
	n := len(history)
	if n > 3 {
		history = history[n-3:]
	}
	for _, turn := range history {
		fmt.Fprintf(&b, "customer: %s\nassistant: %s\n", turn.UserMessage, turn.AssistantReply)
	}
	fmt.Fprintf(&b, "customer: %s", text)
	return b.String()
}

// BuildReplyInput renders the aggregated sub-agent findings for the reply
// generator.
func BuildReplyInput(rc core.ReplyContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer message: %s\n", rc.UserMessage)
	fmt.Fprintf(&b, "Conversation stage: %s\n", rc.Stage)
	b.WriteString("Findings:\n")
	if len(rc.Answers) == 0 {
		b.WriteString("- none\n")
	}
	for _, a := range rc.Answers {
		if a.Err != nil {
			fmt.Fprintf(&b, "- %s: unavailable (%s)\n", a.AgentID, core.ErrorCode(a.Err))
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", a.AgentID, a.Text)
	}
	return b.String()
}

// ParseIntent maps raw model output to an Intent. Unknown labels fail so the
// caller can apply its fail-open policy explicitly.
func ParseIntent(raw string) (core.Intent, error) {
	label := core.Intent(strings.ToUpper(strings.TrimSpace(raw)))
	for _, intent := range Intents {
		if label == intent {
			return intent, nil
		}
	}
	return core.IntentOther, fmt.Errorf("unknown intent label %q", raw)
}
