// Package salesmesh provides a high-level façade over the orchestrator,
// registry, dispatch channel and stores, enabling rapid construction of the
// conversational B2B sales system. Most applications interact with this
// package by:
//  1. Creating a SalesMesh via New() (optionally overriding default services)
//  2. Registering the sub-agents (the full roster or a custom subset)
//  3. Dispatching user messages and reading the reply with its activity trace
//
// The façade delegates turn handling to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply a
// Redis-backed store, a model-backed classifier and a structured logger.
package salesmesh

import (
	"context"
	"time"

	"github.com/hupe1980/salesmesh/channel"
	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
	"github.com/hupe1980/salesmesh/model/static"
	"github.com/hupe1980/salesmesh/orchestrator"
	"github.com/hupe1980/salesmesh/registry"
	"github.com/hupe1980/salesmesh/store"
)

// Options configures the SalesMesh instance.
type Options struct {
	// Channel delivers envelopes to agents. Defaults to the in-process
	// channel over the mesh's registry.
	Channel channel.Channel

	// DefaultTimeout bounds each dispatch; MaxRetries bounds additional
	// attempts after a timeout.
	DefaultTimeout time.Duration
	MaxRetries     int

	// Store persists conversations (defaults to in-memory).
	Store core.ConversationStore

	// Classifier and Generator are the reasoning collaborators (default to
	// the deterministic rule-based implementations).
	Classifier core.IntentClassifier
	Generator  core.ReplyGenerator

	// Routes overrides the intent routing table.
	Routes map[core.Intent][]string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// SalesMesh is the high-level façade aggregating the registry, dispatch
// channel and orchestrator.
type SalesMesh struct {
	registry     *registry.Registry
	caller       *channel.Caller
	orchestrator *orchestrator.Orchestrator
}

// New creates a new SalesMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *SalesMesh {
	opts := Options{
		DefaultTimeout: 5 * time.Second,
		MaxRetries:     1,
		Store:          store.NewInMemoryStore(),
		Classifier:     static.New(),
		Generator:      static.New(),
		Routes:         orchestrator.DefaultRoutes(),
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	reg := registry.New()

	ch := opts.Channel
	if ch == nil {
		ch = channel.NewLocal(reg, func(o *channel.LocalOptions) {
			o.Logger = opts.Logger
		})
	}

	caller := channel.NewCaller(ch, reg, func(o *channel.CallerOptions) {
		o.DefaultTimeout = opts.DefaultTimeout
		o.MaxRetries = opts.MaxRetries
		o.Logger = opts.Logger
	})

	orch := orchestrator.New(caller, func(o *orchestrator.Options) {
		o.Store = opts.Store
		o.Classifier = opts.Classifier
		o.Generator = opts.Generator
		o.Routes = opts.Routes
		o.Logger = opts.Logger
	})

	return &SalesMesh{registry: reg, caller: caller, orchestrator: orch}
}

// RegisterAgent adds an agent to the mesh's registry.
func (m *SalesMesh) RegisterAgent(a core.Agent) error {
	return m.registry.RegisterAgent(a)
}

// Registry exposes the agent directory, e.g. for capability lookups.
func (m *SalesMesh) Registry() *registry.Registry { return m.registry }

// Caller exposes the dispatch policy layer for agents that sub-orchestrate.
func (m *SalesMesh) Caller() *channel.Caller { return m.caller }

// Dispatch processes one user message. An empty conversation id starts a
// new conversation.
func (m *SalesMesh) Dispatch(ctx context.Context, conversationID, message string) (*orchestrator.Reply, error) {
	return m.orchestrator.Dispatch(ctx, conversationID, message)
}

// Cancel aborts a conversation's running turn and closes the conversation.
func (m *SalesMesh) Cancel(ctx context.Context, conversationID string) error {
	return m.orchestrator.Cancel(ctx, conversationID)
}

// Conversation returns the stored state of a conversation.
func (m *SalesMesh) Conversation(ctx context.Context, conversationID string) (*core.Conversation, error) {
	return m.orchestrator.Conversation(ctx, conversationID)
}
