package agents

import (
	"context"
	"time"

	"github.com/hupe1980/salesmesh/core"
)

// installationLeadTime is how far out installations are scheduled.
const installationLeadTime = 10 * 24 * time.Hour

// Fulfillment status values.
const (
	FulfillmentScheduled = "SCHEDULED"
	FulfillmentInstalled = "INSTALLED"
)

// FulfillmentAgent schedules equipment delivery and installation for a
// confirmed order, and answers status checks against the scheduled date.
type FulfillmentAgent struct {
	BaseAgent
	now func() time.Time
}

// FulfillmentOptions configures a FulfillmentAgent.
type FulfillmentOptions struct {
	BaseOptions

	// Now supplies the clock for scheduling and status checks.
	Now func() time.Time
}

// NewFulfillmentAgent creates the fulfillment agent.
func NewFulfillmentAgent(optFns ...func(o *FulfillmentOptions)) *FulfillmentAgent {
	opts := FulfillmentOptions{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &FulfillmentAgent{
		BaseAgent: NewBaseAgent(
			"fulfillment_agent",
			"Schedules equipment delivery and installation appointments",
			[]string{"fulfillment"},
			func(o *BaseOptions) {
				if opts.Logger != nil {
					o.Logger = opts.Logger
				}
			},
		),
		now: opts.Now,
	}
}

// Handle implements core.Agent. A request that already carries an
// installation date is a status check: it reports INSTALLED once that date
// has been reached and never reschedules.
func (a *FulfillmentAgent) Handle(_ context.Context, env core.Envelope) (core.Envelope, error) {
	orderID := env.Payload.String("order_id")
	products := env.Payload.Strings("products")

	if date := env.Payload.String("installation_date"); date != "" {
		status := FulfillmentScheduled
		if d, err := time.Parse("2006-01-02", date); err == nil && !a.now().Before(d) {
			status = FulfillmentInstalled
		}
		return env.Respond(core.Payload{
			"order_id":          orderID,
			"status":            status,
			"installation_date": date,
		}), nil
	}

	equipment := make([]string, 0, len(products))
	for _, p := range products {
		switch p {
		case "Internet 100", "Internet 500", "Internet 1 Gig":
			equipment = append(equipment, "Fiber ONT", "Business Router")
		case "Managed WiFi":
			equipment = append(equipment, "WiFi Access Point")
		case "Business Voice Basic", "Business Voice Pro":
			equipment = append(equipment, "IP Desk Phone")
		}
	}

	installation := a.now().Add(installationLeadTime).Format("2006-01-02")
	a.Logger().Info("fulfillment scheduled for order %s on %s", orderID, installation)

	return env.Respond(core.Payload{
		"order_id":          orderID,
		"status":            FulfillmentScheduled,
		"equipment":         equipment,
		"installation_date": installation,
	}), nil
}
