package core

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the message types an Envelope can carry.
type Kind string

const (
	// KindRequest asks the recipient to perform its capability.
	KindRequest Kind = "REQUEST"
	// KindResponse is the authoritative answer to a request.
	KindResponse Kind = "RESPONSE"
	// KindError signals the recipient could not complete the request.
	KindError Kind = "ERROR"
	// KindEvent is a one-way notification that expects no response.
	KindEvent Kind = "EVENT"
)

// Payload is the schema-typed body of an envelope. Values are restricted to
// JSON-representable types so envelopes survive transport codecs unchanged.
type Payload map[string]any

// String returns the string value for key, or "" if absent or not a string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns the integer value for key, tolerating float64 as produced by
// JSON decoding. Returns 0 if absent.
func (p Payload) Int(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the boolean value for key, or false if absent.
func (p Payload) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Strings returns the string-slice value for key, tolerating []any as
// produced by JSON decoding. Returns nil if absent.
func (p Payload) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Envelope is the typed unit of communication between any two agents. It
// carries correlation, routing and payload. After creation an envelope should
// be treated as immutable; derive follow-ups via Respond, Fail or Child.
type Envelope struct {
	CorrelationID  string        `json:"correlation_id"`
	ConversationID string        `json:"conversation_id"`
	Sender         string        `json:"sender"`
	Recipient      string        `json:"recipient"`
	Kind           Kind          `json:"kind"`
	Payload        Payload       `json:"payload,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
	Timeout        time.Duration `json:"timeout,omitempty"`

	// CallChain lists the agent ids on the dispatch path that produced this
	// envelope, oldest first. Used to refuse dispatches back to an ancestor.
	CallChain []string `json:"call_chain,omitempty"`
}

// NewID generates a unique identifier for envelopes and conversations.
func NewID() string { return uuid.NewString() }

// NewRequest creates a REQUEST envelope with a fresh correlation id. The
// sender is appended to the call chain so recipients can detect cycles.
func NewRequest(sender, recipient, conversationID string, payload Payload) Envelope {
	return Envelope{
		CorrelationID:  NewID(),
		ConversationID: conversationID,
		Sender:         sender,
		Recipient:      recipient,
		Kind:           KindRequest,
		Payload:        payload,
		Timestamp:      time.Now().UTC(),
		CallChain:      []string{sender},
	}
}

// WithTimeout returns a copy of the envelope carrying the given timeout.
func (e Envelope) WithTimeout(d time.Duration) Envelope {
	e.Timeout = d
	return e
}

// Respond builds the RESPONSE envelope for a request, swapping sender and
// recipient and preserving the correlation id.
func (e Envelope) Respond(payload Payload) Envelope {
	return Envelope{
		CorrelationID:  e.CorrelationID,
		ConversationID: e.ConversationID,
		Sender:         e.Recipient,
		Recipient:      e.Sender,
		Kind:           KindResponse,
		Payload:        payload,
		Timestamp:      time.Now().UTC(),
		CallChain:      e.CallChain,
	}
}

// Fail builds the ERROR envelope for a request. The error's taxonomy code and
// message are preserved in the payload so callers can reconstruct it.
func (e Envelope) Fail(err error) Envelope {
	env := e.Respond(Payload{
		"error_code":    ErrorCode(err),
		"error_message": err.Error(),
	})
	env.Kind = KindError
	return env
}

// Child derives a nested REQUEST from this envelope, extending the call
// chain with the current recipient. Used by operational agents that
// sub-orchestrate their own dispatch chains.
func (e Envelope) Child(recipient string, payload Payload) Envelope {
	child := NewRequest(e.Recipient, recipient, e.ConversationID, payload)
	child.CallChain = append(slices.Clone(e.CallChain), e.Recipient)
	child.Timeout = e.Timeout
	return child
}

// HasAncestor reports whether agentID already appears on the call chain.
func (e Envelope) HasAncestor(agentID string) bool {
	return slices.Contains(e.CallChain, agentID)
}

// IsTerminal reports whether the envelope closes out a request exchange.
func (e Envelope) IsTerminal() bool {
	return e.Kind == KindResponse || e.Kind == KindError
}
