package channel

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/salesmesh/core"
)

// Future is the single-shot result of one dispatched envelope. It resolves
// exactly once; later resolutions for the same correlation id are discarded,
// which makes duplicate or late responses safe by construction: a response
// arriving after the waiter gave up lands in the buffered slot and is
// garbage-collected, never delivered to a stale waiter.
type Future struct {
	recipient     string
	correlationID string
	ch            chan core.Envelope
	once          sync.Once
}

// NewFuture creates the future for a request envelope. Channel
// implementations resolve it via Complete or Fail.
func NewFuture(env core.Envelope) *Future {
	return &Future{
		recipient:     env.Recipient,
		correlationID: env.CorrelationID,
		ch:            make(chan core.Envelope, 1),
	}
}

// Complete resolves the future. Returns false when the future was already
// resolved or when the envelope carries a foreign correlation id; such
// envelopes are dropped, not delivered.
func (f *Future) Complete(env core.Envelope) bool {
	if env.CorrelationID != f.correlationID {
		return false
	}
	resolved := false
	f.once.Do(func() {
		f.ch <- env
		resolved = true
	})
	return resolved
}

// Fail resolves the future with an ERROR envelope built from err.
func (f *Future) Fail(req core.Envelope, err error) {
	f.Complete(req.Fail(err))
}

// Await blocks until the future resolves, the timeout elapses, or ctx is
// cancelled. On timeout it returns *core.TimeoutError; the recipient agent is
// unaffected and any late response is silently discarded.
func (f *Future) Await(ctx context.Context, timeout time.Duration) (core.Envelope, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case env := <-f.ch:
		return env, nil
	case <-timer.C:
		return core.Envelope{}, &core.TimeoutError{AgentID: f.recipient, Timeout: timeout}
	case <-ctx.Done():
		// A response that already arrived wins over a concurrent cancellation.
		select {
		case env := <-f.ch:
			return env, nil
		default:
			return core.Envelope{}, ctx.Err()
		}
	}
}

// Channel is the transport each registered agent listens on.
type Channel interface {
	// Send dispatches the envelope with at-most-once delivery and returns
	// the future for its single authoritative response.
	Send(ctx context.Context, env core.Envelope) *Future

	// Method names the communication mechanism for activity traces.
	Method() string
}
