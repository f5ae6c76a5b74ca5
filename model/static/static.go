// Package static implements the collaborator interfaces without any model
// provider: a keyword rule classifier and a templated reply generator. It is
// the default backend when no API key is configured and the deterministic
// backend the test suite runs against.
package static

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/salesmesh/core"
)

// Collaborator implements core.IntentClassifier and core.ReplyGenerator with
// deterministic rules. Stateless and safe for concurrent use.
type Collaborator struct{}

// New creates the rule-based collaborator.
func New() *Collaborator { return &Collaborator{} }

// intentRules maps keyword sets to intents, checked in order. The first rule
// with a hit wins, so more specific intents come first.
var intentRules = []struct {
	intent   core.Intent
	keywords []string
}{
	{core.IntentStatus, []string{"status", "progress", "when will", "how long until", "track"}},
	{core.IntentOrder, []string{"order", "buy", "purchase", "sign up", "contract", "book"}},
	{core.IntentCheckServiceability, []string{"address", "available at", "serviceable", "coverage", "connect my office", "reach us"}},
	{core.IntentPrice, []string{"price", "pricing", "cost", "how much", "tariff", "offer", "quote"}},
	{core.IntentQualify, []string{"company", "employees", "we are", "our business", "interested in", "looking for"}},
}

// ClassifyIntent implements core.IntentClassifier by keyword matching over
// the lowercased message. Unmatched messages are OTHER, never an error.
func (c *Collaborator) ClassifyIntent(_ context.Context, text string, _ []core.TurnRecord) (core.Intent, error) {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent, nil
			}
		}
	}
	return core.IntentOther, nil
}

// GenerateReply implements core.ReplyGenerator with a plain template: one
// line per successful finding, one closing line for failures.
func (c *Collaborator) GenerateReply(_ context.Context, rc core.ReplyContext) (string, error) {
	var lines []string
	failed := 0
	for _, a := range rc.Answers {
		if a.Err != nil {
			failed++
			continue
		}
		if a.Text != "" {
			lines = append(lines, a.Text)
		}
	}

	if len(lines) == 0 {
		if failed > 0 {
			return "I could not look that up right now. Please try again in a moment.", nil
		}
		return "Could you tell me a bit more about your company and what you are looking for?", nil
	}

	reply := strings.Join(lines, " ")
	if failed > 0 {
		reply += fmt.Sprintf(" (Note: %d lookup(s) were unavailable.)", failed)
	}
	return reply, nil
}
