package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salesmesh/core"
)

type stubAgent struct{ name string }

func (a *stubAgent) Name() string            { return a.name }
func (a *stubAgent) Description() string     { return "stub" }
func (a *stubAgent) Capabilities() []string  { return []string{"stub"} }
func (a *stubAgent) Handle(_ context.Context, env core.Envelope) (core.Envelope, error) {
	return env.Respond(nil), nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("prospect_agent", []string{"qualification"}, "endpoint"))

	reg, err := r.LookupByID("prospect_agent")
	require.NoError(t, err)
	assert.Equal(t, "prospect_agent", reg.AgentID)
	assert.Equal(t, core.StatusAvailable, reg.Status)
	assert.Equal(t, "endpoint", reg.Endpoint)
}

func TestRegistry_DuplicateRegistrationRejected(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("order_agent", []string{"ordering"}, "a"))

	err := r.Register("order_agent", []string{"ordering"}, "b")
	var dup *core.DuplicateAgentError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "order_agent", dup.AgentID)

	// The original entry survives the rejected attempt.
	reg, err := r.LookupByID("order_agent")
	require.NoError(t, err)
	assert.Equal(t, "a", reg.Endpoint)
}

func TestRegistry_LookupUnknownAgent(t *testing.T) {
	r := New()
	_, err := r.LookupByID("ghost_agent")
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "agent", nf.Kind)
}

func TestRegistry_LookupByCapabilityPreservesRegistrationOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("product_policy_agent", []string{"policy", "pricing"}, nil))
	require.NoError(t, r.Register("order_agent", []string{"ordering"}, nil))
	require.NoError(t, r.Register("service_policy_agent", []string{"policy", "sla"}, nil))

	regs := r.LookupByCapability("policy")
	require.Len(t, regs, 2)
	assert.Equal(t, "product_policy_agent", regs[0].AgentID)
	assert.Equal(t, "service_policy_agent", regs[1].AgentID)

	assert.Empty(t, r.LookupByCapability("unknown"))
}

func TestRegistry_MarkStatus(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("serviceability_agent", nil, nil))

	r.MarkStatus("serviceability_agent", core.StatusUnreachable)
	reg, err := r.LookupByID("serviceability_agent")
	require.NoError(t, err)
	assert.Equal(t, core.StatusUnreachable, reg.Status)

	// Unknown ids are ignored rather than created.
	r.MarkStatus("ghost_agent", core.StatusBusy)
	_, err = r.LookupByID("ghost_agent")
	assert.Error(t, err)
}

func TestRegistry_RegisterAgentUsesAgentAsEndpoint(t *testing.T) {
	r := New()
	a := &stubAgent{name: "stub_agent"}
	require.NoError(t, r.RegisterAgent(a))

	reg, err := r.LookupByID("stub_agent")
	require.NoError(t, err)
	assert.Same(t, a, reg.Endpoint)
	assert.Equal(t, []string{"stub_agent"}, r.Agents())
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("prospect_agent", []string{"qualification"}, nil))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.LookupByID("prospect_agent")
			_ = r.LookupByCapability("qualification")
			r.MarkStatus("prospect_agent", core.StatusAvailable)
		}()
	}
	wg.Wait()
}
