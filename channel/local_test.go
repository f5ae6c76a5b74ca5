package channel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/registry"
)

// stubAgent answers with a fixed payload after an optional delay, counting
// how often it was invoked.
type stubAgent struct {
	name    string
	delay   time.Duration
	failErr error
	calls   atomic.Int32
	payload core.Payload
}

func (s *stubAgent) Name() string           { return s.name }
func (s *stubAgent) Description() string    { return "stub" }
func (s *stubAgent) Capabilities() []string { return []string{"stub"} }

func (s *stubAgent) Handle(ctx context.Context, env core.Envelope) (core.Envelope, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return core.Envelope{}, ctx.Err()
		}
	}
	if s.failErr != nil {
		return core.Envelope{}, s.failErr
	}
	return env.Respond(s.payload), nil
}

func TestLocal_RoundTrip(t *testing.T) {
	reg := registry.New()
	agent := &stubAgent{name: "prospect_agent", payload: core.Payload{"status": "ok"}}
	require.NoError(t, reg.RegisterAgent(agent))

	ch := NewLocal(reg)
	assert.Equal(t, core.MethodDirectCall, ch.Method())

	req := core.NewRequest("orchestrator", "prospect_agent", "conv-1", core.Payload{"q": "hello"})
	resp, err := ch.Send(context.Background(), req).Await(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, core.KindResponse, resp.Kind)
	assert.Equal(t, req.CorrelationID, resp.CorrelationID)
	assert.Equal(t, "prospect_agent", resp.Sender)
	assert.Equal(t, "orchestrator", resp.Recipient)
	assert.Equal(t, "ok", resp.Payload.String("status"))
}

func TestLocal_UnknownRecipient(t *testing.T) {
	ch := NewLocal(registry.New())

	req := core.NewRequest("orchestrator", "ghost_agent", "conv-1", nil)
	resp, err := ch.Send(context.Background(), req).Await(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, core.KindError, resp.Kind)
	assert.Equal(t, core.CodeNotFound, resp.Payload.String("error_code"))
}

func TestLocal_HandlerError(t *testing.T) {
	reg := registry.New()
	agent := &stubAgent{name: "offer_agent", failErr: assert.AnError}
	require.NoError(t, reg.RegisterAgent(agent))

	req := core.NewRequest("orchestrator", "offer_agent", "conv-1", nil)
	resp, err := NewLocal(reg).Send(context.Background(), req).Await(context.Background(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, core.KindError, resp.Kind)
	assert.Contains(t, resp.Payload.String("error_message"), assert.AnError.Error())
}

func TestLocal_SlowAgentDoesNotBlockSender(t *testing.T) {
	reg := registry.New()
	agent := &stubAgent{name: "slow_agent", delay: 200 * time.Millisecond}
	require.NoError(t, reg.RegisterAgent(agent))

	req := core.NewRequest("orchestrator", "slow_agent", "conv-1", nil)

	start := time.Now()
	fut := NewLocal(reg).Send(context.Background(), req)
	assert.Less(t, time.Since(start), 50*time.Millisecond, "Send must not block on the handler")

	_, err := fut.Await(context.Background(), 20*time.Millisecond)
	var timeoutErr *core.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}
