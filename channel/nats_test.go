package channel

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salesmesh/core"
)

// startTestServer starts an in-process NATS server for testing.
func startTestServer(t *testing.T, port int) (*nats.Conn, func()) {
	t.Helper()

	ns, err := natsserver.NewServer(&natsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("embedded server failed to start")
	}

	nc, err := nats.Connect(ns.ClientURL(), nats.Timeout(5*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("connect: %v", err)
	}

	return nc, func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	}
}

func TestNATS_RoundTrip(t *testing.T) {
	nc, cleanup := startTestServer(t, 14310)
	defer cleanup()

	ch := NewNATS(nc)
	assert.Equal(t, core.MethodProtocolMessage, ch.Method())

	agent := &stubAgent{name: "serviceability_agent", payload: core.Payload{"serviceable": true}}
	sub, err := ch.Serve(context.Background(), agent)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	req := core.NewRequest("orchestrator", "serviceability_agent", "conv-1", core.Payload{"address": "Main St 1"})
	resp, err := ch.Send(context.Background(), req).Await(context.Background(), 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, core.KindResponse, resp.Kind)
	assert.Equal(t, req.CorrelationID, resp.CorrelationID)
	assert.True(t, resp.Payload.Bool("serviceable"))
}

func TestNATS_HandlerErrorBecomesErrorEnvelope(t *testing.T) {
	nc, cleanup := startTestServer(t, 14311)
	defer cleanup()

	ch := NewNATS(nc)
	agent := &stubAgent{name: "order_agent", failErr: assert.AnError}
	sub, err := ch.Serve(context.Background(), agent)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	req := core.NewRequest("orchestrator", "order_agent", "conv-1", nil)
	resp, err := ch.Send(context.Background(), req).Await(context.Background(), 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, core.KindError, resp.Kind)
	assert.Equal(t, core.CodeInternal, resp.Payload.String("error_code"))
}

func TestNATS_NoResponderTimesOut(t *testing.T) {
	nc, cleanup := startTestServer(t, 14312)
	defer cleanup()

	ch := NewNATS(nc, func(o *NATSOptions) {
		o.RequestTimeout = 50 * time.Millisecond
	})

	req := core.NewRequest("orchestrator", "absent_agent", "conv-1", nil)
	_, err := ch.Send(context.Background(), req).Await(context.Background(), 100*time.Millisecond)

	var timeoutErr *core.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "absent_agent", timeoutErr.AgentID)
}
