// Package registry provides the process-wide directory of agents. It maps
// agent identifiers to the endpoint a dispatch channel uses for delivery and
// tracks each agent's liveness status.
//
// The registry is explicitly constructed and passed by reference; it is built
// once at process start, populated during startup before any user traffic is
// accepted, and torn down at shutdown. Reads vastly outnumber writes, so it
// is guarded by a read-write lock.
package registry

import (
	"slices"
	"sync"

	"github.com/hupe1980/salesmesh/core"
)

// Registration is one agent's directory entry. Endpoint is an opaque handle
// interpreted by the dispatch channel that delivers to the agent: the local
// channel stores the core.Agent itself, the NATS channel a subject string.
type Registration struct {
	AgentID      string
	Capabilities []string
	Status       core.AgentStatus
	Endpoint     any
}

// Registry is the directory of registered agents. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Registration
	order   []string // preserves registration order for capability lookups
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Registration)}
}

// Register adds an agent under a unique id. Registering an id that already
// exists fails with *core.DuplicateAgentError and leaves the existing entry
// untouched. New agents start AVAILABLE.
func (r *Registry) Register(agentID string, capabilities []string, endpoint any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[agentID]; exists {
		return &core.DuplicateAgentError{AgentID: agentID}
	}
	r.entries[agentID] = &Registration{
		AgentID:      agentID,
		Capabilities: slices.Clone(capabilities),
		Status:       core.StatusAvailable,
		Endpoint:     endpoint,
	}
	r.order = append(r.order, agentID)
	return nil
}

// RegisterAgent registers a core.Agent as its own local endpoint.
func (r *Registry) RegisterAgent(a core.Agent) error {
	return r.Register(a.Name(), a.Capabilities(), a)
}

// LookupByID returns the registration for agentID or *core.NotFoundError.
func (r *Registry) LookupByID(agentID string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[agentID]
	if !ok {
		return Registration{}, &core.NotFoundError{Kind: "agent", ID: agentID}
	}
	return *reg, nil
}

// LookupByCapability returns all registrations declaring the tag, in
// registration order. An empty slice means no agent matches.
func (r *Registry) LookupByCapability(tag string) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Registration
	for _, id := range r.order {
		reg := r.entries[id]
		if slices.Contains(reg.Capabilities, tag) {
			out = append(out, *reg)
		}
	}
	return out
}

// MarkStatus updates an agent's liveness status. Unknown ids are ignored;
// status is advisory and dispatch outcomes drive it, not the other way round.
func (r *Registry) MarkStatus(agentID string, status core.AgentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.entries[agentID]; ok {
		reg.Status = status
	}
}

// Agents returns all registered ids in registration order.
func (r *Registry) Agents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}
