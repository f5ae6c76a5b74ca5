package agents

import (
	"slices"

	"github.com/hupe1980/salesmesh/logging"
)

// BaseAgent bundles the identity and logging plumbing shared by all concrete
// agents. Embed it and supply a Handle method to satisfy core.Agent.
type BaseAgent struct {
	name         string
	description  string
	capabilities []string
	logger       logging.Logger
}

// BaseOptions configures an embedded BaseAgent.
type BaseOptions struct {
	Logger logging.Logger
}

// NewBaseAgent constructs the embeddable identity part of an agent.
func NewBaseAgent(name, description string, capabilities []string, optFns ...func(o *BaseOptions)) BaseAgent {
	opts := BaseOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return BaseAgent{
		name:         name,
		description:  description,
		capabilities: slices.Clone(capabilities),
		logger:       opts.Logger,
	}
}

// Name returns the agent's unique identifier.
func (b *BaseAgent) Name() string { return b.name }

// Description returns what the agent does, for directories and prompts.
func (b *BaseAgent) Description() string { return b.description }

// Capabilities returns the agent's capability tags.
func (b *BaseAgent) Capabilities() []string { return slices.Clone(b.capabilities) }

// Logger returns the agent's logger.
func (b *BaseAgent) Logger() logging.Logger { return b.logger }
