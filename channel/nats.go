package channel

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
)

const defaultSubjectPrefix = "salesmesh.agent."

// NATS delivers envelopes over a NATS connection using request/reply.
// Each agent listens on "salesmesh.agent.<agent_id>"; Serve attaches an
// agent to its subject. The broker gives at-most-once delivery for core
// requests; the Caller layers retries on top, never the channel.
type NATS struct {
	conn    *nats.Conn
	prefix  string
	timeout time.Duration
	logger  logging.Logger
}

// NATSOptions configures the NATS channel.
type NATSOptions struct {
	// SubjectPrefix prepends every agent subject. Defaults to "salesmesh.agent.".
	SubjectPrefix string
	// RequestTimeout bounds the broker round trip for envelopes that carry
	// no timeout of their own.
	RequestTimeout time.Duration
	Logger         logging.Logger
}

// NewNATS creates a NATS-backed dispatch channel over an existing connection.
func NewNATS(conn *nats.Conn, optFns ...func(o *NATSOptions)) *NATS {
	opts := NATSOptions{
		SubjectPrefix:  defaultSubjectPrefix,
		RequestTimeout: 5 * time.Second,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &NATS{
		conn:    conn,
		prefix:  opts.SubjectPrefix,
		timeout: opts.RequestTimeout,
		logger:  opts.Logger,
	}
}

// Method implements Channel.
func (n *NATS) Method() string { return core.MethodProtocolMessage }

// Subject returns the delivery subject for an agent id.
func (n *NATS) Subject(agentID string) string { return n.prefix + agentID }

// Send implements Channel. The request goroutine owns the broker round trip;
// if the waiter abandons the future first, the eventual reply is discarded.
func (n *NATS) Send(ctx context.Context, env core.Envelope) *Future {
	fut := NewFuture(env)

	data, err := json.Marshal(env)
	if err != nil {
		fut.Fail(env, err)
		return fut
	}

	timeout := env.Timeout
	if timeout <= 0 {
		timeout = n.timeout
	}

	go func() {
		msg, err := n.conn.Request(n.Subject(env.Recipient), data, timeout)
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, nats.ErrNoResponders) {
				// The awaiting side produces the taxonomy timeout; nothing to
				// deliver here.
				n.logger.Debug("no reply from %s for %s", env.Recipient, env.CorrelationID)
				return
			}
			fut.Fail(env, err)
			return
		}

		var resp core.Envelope
		if err := json.Unmarshal(msg.Data, &resp); err != nil {
			fut.Fail(env, err)
			return
		}
		if !fut.Complete(resp) {
			n.logger.Debug("discarded late or duplicate response from %s for %s", env.Recipient, env.CorrelationID)
		}
	}()

	return fut
}

// Serve subscribes the agent to its subject and replies to each request
// envelope with the agent's response. The returned subscription should be
// drained or unsubscribed at shutdown.
func (n *NATS) Serve(ctx context.Context, agent core.Agent) (*nats.Subscription, error) {
	return n.conn.Subscribe(n.Subject(agent.Name()), func(msg *nats.Msg) {
		var env core.Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			n.logger.Error("undecodable envelope on %s: %v", msg.Subject, err)
			return
		}

		go func() {
			resp, err := agent.Handle(ctx, env)
			if err != nil {
				resp = env.Fail(err)
			}
			data, err := json.Marshal(resp)
			if err != nil {
				n.logger.Error("unencodable response from %s: %v", agent.Name(), err)
				return
			}
			if err := msg.Respond(data); err != nil {
				n.logger.Warn("reply to %s failed: %v", env.Sender, err)
			}
		}()
	})
}
