package agents

import (
	"context"
	"fmt"

	"github.com/hupe1980/salesmesh/channel"
	"github.com/hupe1980/salesmesh/core"
)

// Order status values.
const (
	OrderConfirmed          = "CONFIRMED"
	OrderRejected           = "REJECTED_NOT_SERVICEABLE"
	OrderPendingFulfillment = "CONFIRMED_PENDING_FULFILLMENT"
)

// OrderAgent processes orders by sub-orchestrating two further dispatches:
// serviceability first, fulfillment second. A NOT_SERVICEABLE verdict aborts
// the chain before any order record is written. Once the order record
// exists it is never rolled back; a cancellation arriving before the
// fulfillment dispatch leaves the order pending instead.
type OrderAgent struct {
	BaseAgent
	caller *channel.Caller
}

// NewOrderAgent creates the order agent over the caller it dispatches
// sub-requests through.
func NewOrderAgent(caller *channel.Caller, optFns ...func(o *BaseOptions)) *OrderAgent {
	return &OrderAgent{
		BaseAgent: NewBaseAgent(
			"order_agent",
			"Processes orders, verifying serviceability and scheduling fulfillment",
			[]string{"order"},
			optFns...,
		),
		caller: caller,
	}
}

// Handle implements core.Agent.
func (a *OrderAgent) Handle(ctx context.Context, env core.Envelope) (core.Envelope, error) {
	prospectID := env.Payload.String("prospect_id")
	products := env.Payload.Strings("products")
	address := env.Payload.String("address")

	if prospectID == "" {
		return core.Envelope{}, fmt.Errorf("order requires a prospect id")
	}
	if len(products) == 0 {
		return core.Envelope{}, fmt.Errorf("order requires at least one product")
	}

	// Step 1: serviceability. The child envelope extends the call chain so a
	// misrouted dispatch back into this agent is refused.
	svcReq := env.Child("serviceability_agent", core.Payload{
		"address":            address,
		"requested_products": products,
	})
	svcResp, err := a.caller.Call(ctx, svcReq)
	if err != nil {
		return core.Envelope{}, fmt.Errorf("serviceability check failed: %w", err)
	}
	if !svcResp.Payload.Bool("serviceable") {
		a.Logger().Info("order rejected, address not serviceable: %s", address)
		return env.Respond(core.Payload{
			"status":  OrderRejected,
			"address": address,
			"reason":  "address is outside the network footprint",
		}), nil
	}

	// The order record exists from here on and is never rolled back.
	orderID := core.NewID()
	a.Logger().Info("order created: %s prospect=%s", orderID, prospectID)

	// A cancellation between order creation and fulfillment leaves the order
	// pending rather than starting a new dispatch on a dead context.
	if ctx.Err() != nil {
		return env.Respond(core.Payload{
			"order_id": orderID,
			"status":   OrderPendingFulfillment,
			"products": products,
		}), nil
	}

	// Step 2: fulfillment.
	fulReq := env.Child("fulfillment_agent", core.Payload{
		"order_id":    orderID,
		"prospect_id": prospectID,
		"products":    products,
		"address":     address,
	})
	fulResp, err := a.caller.Call(ctx, fulReq)
	if err != nil {
		a.Logger().Warn("fulfillment dispatch failed for order %s: %v", orderID, err)
		return env.Respond(core.Payload{
			"order_id": orderID,
			"status":   OrderPendingFulfillment,
			"products": products,
		}), nil
	}

	return env.Respond(core.Payload{
		"order_id":          orderID,
		"status":            OrderConfirmed,
		"products":          products,
		"installation_date": fulResp.Payload.String("installation_date"),
	}), nil
}
