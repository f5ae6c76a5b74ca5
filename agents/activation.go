package agents

import (
	"context"
	"time"

	"github.com/hupe1980/salesmesh/core"
)

// ServiceActivationAgent provisions and activates network services after the
// installation completed.
type ServiceActivationAgent struct {
	BaseAgent
	now func() time.Time
}

// NewServiceActivationAgent creates the service activation agent.
func NewServiceActivationAgent(optFns ...func(o *BaseOptions)) *ServiceActivationAgent {
	return &ServiceActivationAgent{
		BaseAgent: NewBaseAgent(
			"service_activation_agent",
			"Provisions and activates network services for installed orders",
			[]string{"activation"},
			optFns...,
		),
		now: time.Now,
	}
}

// Handle implements core.Agent.
func (a *ServiceActivationAgent) Handle(_ context.Context, env core.Envelope) (core.Envelope, error) {
	orderID := env.Payload.String("order_id")
	products := env.Payload.Strings("products")

	services := make([]core.Payload, 0, len(products))
	for _, p := range products {
		services = append(services, core.Payload{
			"product": p,
			"status":  "ACTIVE",
		})
	}

	activated := a.now().UTC().Format(time.RFC3339)
	a.Logger().Info("services activated for order %s", orderID)

	return env.Respond(core.Payload{
		"order_id":        orderID,
		"status":          "ACTIVE",
		"services":        services,
		"activation_date": activated,
	}), nil
}
