package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error codes mirrored into activity traces and ERROR envelope payloads.
const (
	CodeDuplicateAgent = "DUPLICATE_AGENT"
	CodeNotFound       = "NOT_FOUND"
	CodeTimeout        = "TIMEOUT"
	CodeRemoteAgent    = "REMOTE_AGENT"
	CodeCycleDetected  = "CYCLE_DETECTED"
	CodeInternal       = "INTERNAL"
)

// DuplicateAgentError reports a registration collision: the agent id is
// already taken for the lifetime of the process.
type DuplicateAgentError struct {
	AgentID string
}

func (e *DuplicateAgentError) Error() string {
	return fmt.Sprintf("agent %q is already registered", e.AgentID)
}

// NotFoundError reports a lookup of an unknown agent or conversation.
type NotFoundError struct {
	Kind string // "agent" or "conversation"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// TimeoutError reports that a dispatched request was not answered within its
// allotted timeout. It triggers the caller's retry-then-fallback policy.
type TimeoutError struct {
	AgentID string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no response from %q within %s", e.AgentID, e.Timeout)
}

// RemoteAgentError carries a failure explicitly signalled by a sub-agent via
// an ERROR envelope. It aborts dependent chain steps but not parallel ones.
type RemoteAgentError struct {
	AgentID string
	Code    string
	Message string
}

func (e *RemoteAgentError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("agent %q failed: [%s] %s", e.AgentID, e.Code, e.Message)
	}
	return fmt.Sprintf("agent %q failed: %s", e.AgentID, e.Message)
}

// CycleDetectedError reports an attempted dispatch to an ancestor in the
// sender's own call chain. Never retried.
type CycleDetectedError struct {
	AgentID string
	Chain   []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("dispatch to %q would cycle through chain [%s]",
		e.AgentID, strings.Join(e.Chain, " -> "))
}

// ErrorCode maps an error to its taxonomy code for traces and envelopes.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.As(err, new(*DuplicateAgentError)):
		return CodeDuplicateAgent
	case errors.As(err, new(*NotFoundError)):
		return CodeNotFound
	case errors.As(err, new(*TimeoutError)):
		return CodeTimeout
	case errors.As(err, new(*RemoteAgentError)):
		return CodeRemoteAgent
	case errors.As(err, new(*CycleDetectedError)):
		return CodeCycleDetected
	default:
		return CodeInternal
	}
}

// RemoteError reconstructs the RemoteAgentError carried by an ERROR envelope.
func RemoteError(env Envelope) *RemoteAgentError {
	return &RemoteAgentError{
		AgentID: env.Sender,
		Code:    env.Payload.String("error_code"),
		Message: env.Payload.String("error_message"),
	}
}
