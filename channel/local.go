package channel

import (
	"context"
	"fmt"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
	"github.com/hupe1980/salesmesh/registry"
)

// Local delivers envelopes in-process. The registry endpoint for each
// recipient must be the core.Agent itself; the handler runs on its own
// goroutine so the sender can await the future or abandon it freely.
type Local struct {
	registry *registry.Registry
	logger   logging.Logger
}

// LocalOptions configures the Local channel.
type LocalOptions struct {
	Logger logging.Logger
}

// NewLocal creates an in-process dispatch channel backed by the registry.
func NewLocal(reg *registry.Registry, optFns ...func(o *LocalOptions)) *Local {
	opts := LocalOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Local{registry: reg, logger: opts.Logger}
}

// Method implements Channel.
func (l *Local) Method() string { return core.MethodDirectCall }

// Send implements Channel. Unknown recipients and foreign endpoint types
// resolve the future immediately with an ERROR envelope; handler panics are
// confined to the handler goroutine's envelope, never the sender.
func (l *Local) Send(ctx context.Context, env core.Envelope) *Future {
	fut := NewFuture(env)

	reg, err := l.registry.LookupByID(env.Recipient)
	if err != nil {
		fut.Fail(env, err)
		return fut
	}
	agent, ok := reg.Endpoint.(core.Agent)
	if !ok {
		fut.Fail(env, fmt.Errorf("endpoint for %q is not a local agent", env.Recipient))
		return fut
	}

	go func() {
		resp, err := agent.Handle(ctx, env)
		if err != nil {
			l.logger.Debug("agent %s failed handling %s: %v", env.Recipient, env.CorrelationID, err)
			fut.Fail(env, err)
			return
		}
		if !fut.Complete(resp) {
			l.logger.Debug("discarded late or duplicate response from %s for %s", env.Recipient, env.CorrelationID)
		}
	}()

	return fut
}
