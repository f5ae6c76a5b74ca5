// Package orchestrator contains the conversation orchestrator: the single
// component that receives user messages, classifies them, fans dispatches
// out to the sales sub-agents and assembles the reply with its activity
// trace.
//
// One conversation is processed by one turn at a time; concurrent turns for
// the same conversation queue on a per-conversation lock while different
// conversations proceed in parallel.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/salesmesh/channel"
	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
	"github.com/hupe1980/salesmesh/model/static"
	"github.com/hupe1980/salesmesh/store"
)

// productCatalog lists the orderable product names recognized in messages.
var productCatalog = []string{
	"Internet 100", "Internet 500", "Internet 1 Gig",
	"Business Voice Basic", "Business Voice Pro",
	"Managed WiFi", "Managed Security",
}

// Reply is the outcome of one conversation turn.
type Reply struct {
	ConversationID string             `json:"conversation_id"`
	Text           string             `json:"text"`
	Trace          core.ActivityTrace `json:"activity_trace"`
}

// Options configures an Orchestrator.
type Options struct {
	// Store persists conversations. Defaults to the in-memory store.
	Store core.ConversationStore
	// Classifier maps user text to an intent. Defaults to the rule-based one.
	Classifier core.IntentClassifier
	// Generator produces the reply text. Defaults to the templated one.
	Generator core.ReplyGenerator
	// Routes overrides the intent-to-agents routing table.
	Routes map[core.Intent][]string
	Logger logging.Logger
}

// DefaultRoutes returns the standard routing table. PRICE fans out to the
// offer and product-policy agents in parallel; the other intents route to a
// single agent.
func DefaultRoutes() map[core.Intent][]string {
	return map[core.Intent][]string{
		core.IntentQualify:             {"prospect_agent"},
		core.IntentCheckServiceability: {"serviceability_agent"},
		core.IntentPrice:               {"offer_agent", "product_policy_agent"},
		core.IntentOrder:               {"order_agent"},
		core.IntentStatus:              {"fulfillment_agent"},
		core.IntentOther:               {},
	}
}

// Orchestrator drives conversations. Safe for concurrent use.
type Orchestrator struct {
	caller     *channel.Caller
	store      core.ConversationStore
	classifier core.IntentClassifier
	generator  core.ReplyGenerator
	routes     map[core.Intent][]string
	logger     logging.Logger

	// Per-conversation locks - one turn at a time per conversation.
	convMu    sync.Mutex
	convLocks map[string]*sync.Mutex

	// Active turn tracking - protected by separate mutex.
	activeMu sync.Mutex
	active   map[string]context.CancelFunc
}

// New creates an orchestrator over the caller its dispatches go through.
func New(caller *channel.Caller, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Store:      store.NewInMemoryStore(),
		Classifier: static.New(),
		Generator:  static.New(),
		Routes:     DefaultRoutes(),
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		caller:     caller,
		store:      opts.Store,
		classifier: opts.Classifier,
		generator:  opts.Generator,
		routes:     opts.Routes,
		logger:     opts.Logger,
		convLocks:  make(map[string]*sync.Mutex),
		active:     make(map[string]context.CancelFunc),
	}
}

// Dispatch processes one user message. An empty conversation id starts a new
// conversation; the returned reply carries the id for follow-up turns.
func (o *Orchestrator) Dispatch(ctx context.Context, conversationID, message string) (*Reply, error) {
	if conversationID == "" {
		conversationID = core.NewID()
	}

	lock := o.convLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := o.store.Load(ctx, conversationID)
	if err != nil {
		var notFound *core.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		conv = core.NewConversation(conversationID)
	}

	if conv.CurrentStage().Terminal() {
		return &Reply{
			ConversationID: conversationID,
			Text:           "This conversation is closed. Start a new one to continue.",
		}, nil
	}

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.activeMu.Lock()
	o.active[conversationID] = cancel
	o.activeMu.Unlock()
	defer func() {
		o.activeMu.Lock()
		delete(o.active, conversationID)
		o.activeMu.Unlock()
	}()

	rec := core.NewTraceRecorder()
	turnCtx = core.WithTrace(turnCtx, rec)

	conv.MergeContext(extractFacts(message))

	intent, err := o.classifier.ClassifyIntent(turnCtx, message, conv.History())
	if err != nil {
		// Fail open: an unclassifiable message still gets a reply.
		o.logger.Warn("intent classification failed, treating as OTHER: %v", err)
		intent = core.IntentOther
	}
	o.logger.Debug("conversation %s intent=%s stage=%s", conversationID, intent, conv.CurrentStage())

	o.runAutoTriggers(turnCtx, conv)

	answers, payloads := o.route(turnCtx, conv, intent, message)
	o.applyOutcome(conv, intent, answers, payloads)

	text, err := o.generator.GenerateReply(turnCtx, core.ReplyContext{
		UserMessage: message,
		Intent:      intent,
		Stage:       conv.CurrentStage(),
		Answers:     answers,
	})
	if err != nil {
		o.logger.Warn("reply generation failed, using fallback: %v", err)
		text = fallbackReply(answers)
	}

	trace := rec.Snapshot()
	conv.AppendTurn(core.TurnRecord{
		UserMessage:    message,
		AssistantReply: text,
		AgentsInvoked:  trace.SubAgentsInvoked,
		Timestamp:      time.Now().UTC(),
	})
	if err := o.store.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("persist conversation %s: %w", conversationID, err)
	}

	return &Reply{ConversationID: conversationID, Text: text, Trace: trace}, nil
}

// Cancel aborts the conversation's running turn, if any, and moves the
// conversation to its terminal CANCELLED stage. Work already past its point
// of no return completes; no new dispatches start.
func (o *Orchestrator) Cancel(ctx context.Context, conversationID string) error {
	o.activeMu.Lock()
	if cancel, ok := o.active[conversationID]; ok {
		cancel()
	}
	o.activeMu.Unlock()

	// Take the conversation lock so the terminal stage is written after the
	// aborted turn's final save, never before it.
	lock := o.convLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := o.store.Load(ctx, conversationID)
	if err != nil {
		return err
	}
	conv.Cancel()
	return o.store.Save(ctx, conv)
}

// Conversation returns the stored state of a conversation.
func (o *Orchestrator) Conversation(ctx context.Context, conversationID string) (*core.Conversation, error) {
	return o.store.Load(ctx, conversationID)
}

func (o *Orchestrator) convLock(conversationID string) *sync.Mutex {
	o.convMu.Lock()
	defer o.convMu.Unlock()
	lock, ok := o.convLocks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		o.convLocks[conversationID] = lock
	}
	return lock
}

// runAutoTriggers fires the backend record creations the conversation state
// calls for. Each trigger fires at most once per conversation; the flag is
// only set after the dispatch succeeded, so a failed trigger is retried on
// the next turn.
func (o *Orchestrator) runAutoTriggers(ctx context.Context, conv *core.Conversation) {
	if !conv.ProspectCreated && conv.Context.CompanyName != "" && conv.Context.ContactName != "" {
		resp, err := o.caller.Call(ctx, core.NewRequest("orchestrator", "prospect_agent", conv.ID, core.Payload{
			"company_name":   conv.Context.CompanyName,
			"contact_name":   conv.Context.ContactName,
			"employee_count": conv.Context.EmployeeCount,
		}))
		if err != nil {
			o.logger.Warn("prospect auto-trigger failed: %v", err)
		} else {
			conv.ProspectCreated = true
			conv.ProspectID = resp.Payload.String("prospect_id")
			o.logger.Info("prospect auto-created: %s", conv.ProspectID)
		}
	}

	if !conv.LeadGenerated && conv.ProspectID != "" && conv.Context.ServiceInterest && conv.Context.EmployeeCount > 0 {
		resp, err := o.caller.Call(ctx, core.NewRequest("orchestrator", "lead_generation_agent", conv.ID, core.Payload{
			"prospect_id":      conv.ProspectID,
			"employee_count":   conv.Context.EmployeeCount,
			"service_interest": true,
		}))
		if err != nil {
			o.logger.Warn("lead auto-trigger failed: %v", err)
		} else {
			conv.LeadGenerated = true
			conv.LeadID = resp.Payload.String("lead_id")
			o.logger.Info("lead auto-generated: %s", conv.LeadID)
		}
	}
}

// route dispatches the intent's agents in parallel and collects one answer
// per agent. A failed dispatch is contained in its answer; the turn as a
// whole proceeds as long as the routing table named any agent at all.
func (o *Orchestrator) route(ctx context.Context, conv *core.Conversation, intent core.Intent, message string) ([]core.AgentAnswer, map[string]core.Payload) {
	agentIDs := o.routes[intent]
	if intent == core.IntentStatus && conv.OrderID == "" {
		return []core.AgentAnswer{{
			AgentID: "orchestrator",
			Text:    "There is no active order in this conversation yet.",
		}}, nil
	}
	if len(agentIDs) == 0 {
		return nil, nil
	}

	payload := o.buildPayload(conv, intent, message)
	answers := make([]core.AgentAnswer, len(agentIDs))
	results := make([]core.Payload, len(agentIDs))

	var wg sync.WaitGroup
	for i, agentID := range agentIDs {
		wg.Add(1)
		go func(i int, agentID string) {
			defer wg.Done()
			resp, err := o.caller.Call(ctx, core.NewRequest("orchestrator", agentID, conv.ID, payload))
			if err != nil {
				answers[i] = core.AgentAnswer{AgentID: agentID, Err: err}
				return
			}
			answers[i] = core.AgentAnswer{AgentID: agentID, Text: answerText(resp.Payload)}
			results[i] = resp.Payload
		}(i, agentID)
	}
	wg.Wait()

	payloads := make(map[string]core.Payload, len(agentIDs))
	for i, agentID := range agentIDs {
		if results[i] != nil {
			payloads[agentID] = results[i]
		}
	}

	// A status check that finds the installation completed moves on to
	// service activation as a dependent second step.
	if intent == core.IntentStatus {
		if ful := payloads["fulfillment_agent"]; ful != nil && ful.String("status") == "INSTALLED" {
			resp, err := o.caller.Call(ctx, core.NewRequest("orchestrator", "service_activation_agent", conv.ID, core.Payload{
				"order_id": conv.OrderID,
				"products": conv.Products,
			}))
			if err != nil {
				answers = append(answers, core.AgentAnswer{AgentID: "service_activation_agent", Err: err})
			} else {
				answers = append(answers, core.AgentAnswer{AgentID: "service_activation_agent", Text: answerText(resp.Payload)})
				payloads["service_activation_agent"] = resp.Payload
			}
		}
	}
	return answers, payloads
}

// buildPayload assembles the request payload for an intent from the message
// and the facts the conversation has collected.
func (o *Orchestrator) buildPayload(conv *core.Conversation, intent core.Intent, message string) core.Payload {
	payload := core.Payload{"message": message}

	switch intent {
	case core.IntentQualify:
		payload["company_name"] = conv.Context.CompanyName
		payload["contact_name"] = conv.Context.ContactName
		payload["employee_count"] = conv.Context.EmployeeCount
		if conv.ProspectID != "" {
			payload["prospect_id"] = conv.ProspectID
		}
	case core.IntentCheckServiceability:
		payload["address"] = conv.Context.Address
	case core.IntentPrice:
		payload["question"] = message
		if products := extractProducts(message, productCatalog); len(products) > 0 {
			payload["products"] = products
		}
		if conv.LeadID != "" {
			payload["lead_id"] = conv.LeadID
		}
	case core.IntentOrder:
		payload["prospect_id"] = conv.ProspectID
		payload["address"] = conv.Context.Address
		products := extractProducts(message, productCatalog)
		if len(products) == 0 {
			products = []string{"Internet 500"}
		}
		payload["products"] = products
	case core.IntentStatus:
		payload["order_id"] = conv.OrderID
		payload["products"] = conv.Products
		if conv.InstallationDate != "" {
			payload["installation_date"] = conv.InstallationDate
		}
	}
	return payload
}

// applyOutcome folds dispatch results back into the conversation: captured
// ids and forward stage movement. Stage rules never move backward and a
// rejected order leaves the stage untouched.
func (o *Orchestrator) applyOutcome(conv *core.Conversation, intent core.Intent, answers []core.AgentAnswer, payloads map[string]core.Payload) {
	succeeded := false
	for _, a := range answers {
		if a.Err == nil {
			succeeded = true
			break
		}
	}
	if !succeeded {
		return
	}

	var target core.Stage
	switch intent {
	case core.IntentCheckServiceability:
		target = core.StageServiceability
	case core.IntentPrice:
		target = core.StageOffer
	case core.IntentOrder:
		order := payloads["order_agent"]
		if order == nil {
			break
		}
		if id := order.String("order_id"); id != "" {
			conv.OrderID = id
		}
		switch order.String("status") {
		case "CONFIRMED":
			conv.Products = order.Strings("products")
			conv.InstallationDate = order.String("installation_date")
			target = core.StageFulfillment
		case "CONFIRMED_PENDING_FULFILLMENT":
			target = core.StageOrder
		}
	case core.IntentStatus:
		if ful := payloads["fulfillment_agent"]; ful != nil && ful.String("status") == "INSTALLED" {
			target = core.StageActivation
		}
		if act := payloads["service_activation_agent"]; act != nil && act.String("status") == "ACTIVE" {
			target = core.StageDone
		}
	}
	if target != "" {
		if err := conv.Advance(target); err != nil {
			o.logger.Debug("stage not advanced: %v", err)
		}
	}
}

// answerText reduces a response payload to one readable line for the reply
// generator.
func answerText(p core.Payload) string {
	if s := p.String("summary"); s != "" {
		return s
	}
	if s := p.String("answer"); s != "" {
		return s
	}
	if s := p.String("status"); s != "" {
		if id := p.String("order_id"); id != "" {
			return fmt.Sprintf("Order %s is %s.", id, s)
		}
		return fmt.Sprintf("Status: %s.", s)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// fallbackReply covers generator outages with a template.
func fallbackReply(answers []core.AgentAnswer) string {
	for _, a := range answers {
		if a.Err == nil && a.Text != "" {
			return a.Text
		}
	}
	return "I could not process that right now. Please try again in a moment."
}
