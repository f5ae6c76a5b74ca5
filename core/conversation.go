package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Stage enumerates the workflow stages of a sales conversation.
type Stage string

const (
	StageQualification  Stage = "QUALIFICATION"
	StageServiceability Stage = "SERVICEABILITY"
	StageOffer          Stage = "OFFER"
	StageOrder          Stage = "ORDER"
	StageFulfillment    Stage = "FULFILLMENT"
	StageActivation     Stage = "ACTIVATION"
	StageDone           Stage = "DONE"
	StageCancelled      Stage = "CANCELLED"
)

// stageOrder defines the forward progression of non-terminal stages.
var stageOrder = []Stage{
	StageQualification,
	StageServiceability,
	StageOffer,
	StageOrder,
	StageFulfillment,
	StageActivation,
	StageDone,
}

// Terminal reports whether no further auto-triggers or dispatches may start.
func (s Stage) Terminal() bool { return s == StageDone || s == StageCancelled }

func (s Stage) rank() int { return slices.Index(stageOrder, s) }

// TurnRecord captures one completed exchange: the user message, the
// assistant reply and the agents invoked to produce it.
type TurnRecord struct {
	UserMessage    string    `json:"user_message"`
	AssistantReply string    `json:"assistant_reply"`
	AgentsInvoked  []string  `json:"agents_invoked,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ProspectContext holds the business facts extracted from the conversation
// so far. The auto-trigger conditions are evaluated against it.
type ProspectContext struct {
	CompanyName     string `json:"company_name,omitempty"`
	ContactName     string `json:"contact_name,omitempty"`
	EmployeeCount   int    `json:"employee_count,omitempty"`
	Address         string `json:"address,omitempty"`
	ServiceInterest bool   `json:"service_interest,omitempty"`
}

// Conversation is the per-session state owned by the orchestrator. A single
// logical worker processes a conversation at a time; the internal mutex only
// guards against incidental cross-goroutine reads (e.g. status endpoints).
type Conversation struct {
	ID      string          `json:"id"`
	Stage   Stage           `json:"stage"`
	Turns   []TurnRecord    `json:"turns"`
	Context ProspectContext `json:"context"`

	// Idempotency flags for auto-triggers. Once set they never re-fire.
	ProspectCreated bool `json:"prospect_created"`
	LeadGenerated   bool `json:"lead_generated"`

	ProspectID string `json:"prospect_id,omitempty"`
	LeadID     string `json:"lead_id,omitempty"`
	OrderID    string `json:"order_id,omitempty"`

	// Ordered products and the scheduled installation date, captured from a
	// confirmed order. Status checks and the activation step read them.
	Products         []string `json:"products,omitempty"`
	InstallationDate string   `json:"installation_date,omitempty"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	mu sync.RWMutex
}

// NewConversation creates a conversation in the QUALIFICATION stage.
func NewConversation(id string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{ID: id, Stage: StageQualification, Created: now, Updated: now}
}

// Advance moves the stage forward. Backward moves are rejected and terminal
// stages admit no further transitions; advancing to the current stage is a
// no-op so stage rules can be re-evaluated each turn safely.
func (c *Conversation) Advance(target Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Stage.Terminal() {
		return fmt.Errorf("conversation %s is %s: no further transitions", c.ID, c.Stage)
	}
	if target == StageCancelled {
		c.Stage = StageCancelled
		c.Updated = time.Now().UTC()
		return nil
	}
	cur, next := c.Stage.rank(), target.rank()
	if next < 0 {
		return fmt.Errorf("unknown stage %q", target)
	}
	if next < cur {
		return fmt.Errorf("stage may not move backward from %s to %s", c.Stage, target)
	}
	c.Stage = target
	c.Updated = time.Now().UTC()
	return nil
}

// Cancel moves the conversation to the terminal CANCELLED stage. Cancelling
// an already-terminal conversation is a no-op.
func (c *Conversation) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Stage.Terminal() {
		return
	}
	c.Stage = StageCancelled
	c.Updated = time.Now().UTC()
}

// CurrentStage returns the stage under the read lock.
func (c *Conversation) CurrentStage() Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Stage
}

// AppendTurn records a completed exchange.
func (c *Conversation) AppendTurn(t TurnRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Turns = append(c.Turns, t)
	c.Updated = time.Now().UTC()
}

// History returns a defensive copy of the recorded turns.
func (c *Conversation) History() []TurnRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.Turns)
}

// MergeContext folds newly extracted facts into the prospect context.
// Present values are never overwritten by empty ones.
func (c *Conversation) MergeContext(pc ProspectContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pc.CompanyName != "" {
		c.Context.CompanyName = pc.CompanyName
	}
	if pc.ContactName != "" {
		c.Context.ContactName = pc.ContactName
	}
	if pc.EmployeeCount > 0 {
		c.Context.EmployeeCount = pc.EmployeeCount
	}
	if pc.Address != "" {
		c.Context.Address = pc.Address
	}
	if pc.ServiceInterest {
		c.Context.ServiceInterest = true
	}
	c.Updated = time.Now().UTC()
}

// Clone returns a deep copy safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := &Conversation{
		ID:               c.ID,
		Stage:            c.Stage,
		Turns:            slices.Clone(c.Turns),
		Context:          c.Context,
		ProspectCreated:  c.ProspectCreated,
		LeadGenerated:    c.LeadGenerated,
		ProspectID:       c.ProspectID,
		LeadID:           c.LeadID,
		OrderID:          c.OrderID,
		Products:         slices.Clone(c.Products),
		InstallationDate: c.InstallationDate,
		Created:          c.Created,
		Updated:          c.Updated,
	}
	return clone
}

// ConversationStore persists conversations for durability. Implementations
// must return *NotFoundError (kind "conversation") from Load for unknown ids.
type ConversationStore interface {
	Load(ctx context.Context, id string) (*Conversation, error)
	Save(ctx context.Context, conv *Conversation) error
	AppendTurn(ctx context.Context, id string, turn TurnRecord) error
}
