package channel

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
	"github.com/hupe1980/salesmesh/registry"
)

// Caller wraps a raw Channel with the dispatch policy shared by the
// orchestrator and sub-orchestrating agents:
//
//   - cycle prevention against the envelope's call chain
//   - per-request timeout with a bounded retry budget; a retry only fires
//     while the target's registry status is AVAILABLE
//   - status marking after outcomes (AVAILABLE on success, UNREACHABLE once
//     the retry budget is exhausted)
//   - trace recording of every attempt via the context recorder
//
// Each retry sends a fresh envelope (new correlation id): the channel itself
// stays at-most-once per envelope.
type Caller struct {
	channel  Channel
	registry *registry.Registry
	timeout  time.Duration
	retries  int
	logger   logging.Logger
}

// CallerOptions configures a Caller.
type CallerOptions struct {
	// DefaultTimeout applies to envelopes that carry no timeout of their own.
	DefaultTimeout time.Duration
	// MaxRetries bounds additional attempts after the first timeout.
	MaxRetries int
	Logger     logging.Logger
}

// NewCaller creates a Caller over the given channel and registry.
func NewCaller(ch Channel, reg *registry.Registry, optFns ...func(o *CallerOptions)) *Caller {
	opts := CallerOptions{
		DefaultTimeout: 5 * time.Second,
		MaxRetries:     1,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Caller{
		channel:  ch,
		registry: reg,
		timeout:  opts.DefaultTimeout,
		retries:  opts.MaxRetries,
		logger:   opts.Logger,
	}
}

// Call dispatches the request and blocks for its response, applying the
// timeout/retry policy. Returned errors follow the taxonomy: cycle and
// not-found errors are never retried, remote agent failures are final, and
// exhausted timeouts mark the target UNREACHABLE.
func (c *Caller) Call(ctx context.Context, env core.Envelope) (core.Envelope, error) {
	trace := core.TraceFrom(ctx)

	if env.HasAncestor(env.Recipient) {
		err := &core.CycleDetectedError{AgentID: env.Recipient, Chain: slices.Clone(env.CallChain)}
		c.logger.Error("refusing dispatch: %v", err)
		trace.Error(env.Recipient, err)
		return core.Envelope{}, err
	}

	if _, err := c.registry.LookupByID(env.Recipient); err != nil {
		trace.Error(env.Recipient, err)
		return core.Envelope{}, err
	}

	timeout := env.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	for attempt := 0; ; attempt++ {
		trace.Agent(env.Recipient)
		trace.Method(c.channel.Method())

		fut := c.channel.Send(ctx, env)
		resp, err := fut.Await(ctx, timeout)
		if err == nil {
			c.registry.MarkStatus(env.Recipient, core.StatusAvailable)
			if resp.Kind == core.KindError {
				remote := core.RemoteError(resp)
				trace.Error(env.Recipient, remote)
				return resp, remote
			}
			return resp, nil
		}

		trace.Error(env.Recipient, err)

		var timeoutErr *core.TimeoutError
		if !errors.As(err, &timeoutErr) {
			// Context cancellation: the conversation is being torn down.
			return core.Envelope{}, err
		}

		// The status must be read fresh for each retry decision: the mark
		// below, or a concurrent caller, may have changed it since the
		// previous attempt.
		if attempt < c.retries {
			if current, lookupErr := c.registry.LookupByID(env.Recipient); lookupErr == nil && current.Status == core.StatusAvailable {
				c.registry.MarkStatus(env.Recipient, core.StatusBusy)
				c.logger.Warn("timeout from %s, retrying (%d/%d)", env.Recipient, attempt+1, c.retries)
				env.CorrelationID = core.NewID()
				env.Timestamp = time.Now().UTC()
				continue
			}
		}

		c.registry.MarkStatus(env.Recipient, core.StatusUnreachable)
		c.logger.Error("agent %s unreachable after %d attempts", env.Recipient, attempt+1)
		return core.Envelope{}, err
	}
}
