package agents

import (
	"context"
	"regexp"

	"github.com/hupe1980/salesmesh/core"
)

// Serviceability status values.
const (
	StatusServiceable    = "SERVICEABLE"
	StatusNotServiceable = "NOT_SERVICEABLE"
)

// Checker decides whether an address is inside the network footprint.
type Checker func(ctx context.Context, address string) (bool, error)

// coverageZips is the footprint of the default checker.
var coverageZips = map[string]bool{
	"10001": true, "10002": true, "90001": true, "60601": true, "77001": true,
	"85001": true, "19101": true, "78201": true, "92101": true, "75201": true,
}

var zipPattern = regexp.MustCompile(`\b\d{5}\b`)

// ZipCodeChecker is the default Checker: an address is serviceable when it
// contains a zip code inside the coverage footprint.
func ZipCodeChecker(_ context.Context, address string) (bool, error) {
	for _, zip := range zipPattern.FindAllString(address, -1) {
		if coverageZips[zip] {
			return true, nil
		}
	}
	return false, nil
}

// ServiceabilityAgent answers whether an address can be served. The check
// itself is injectable so deployments can plug in a real coverage system.
type ServiceabilityAgent struct {
	BaseAgent
	check Checker
}

// ServiceabilityOptions configures the serviceability agent.
type ServiceabilityOptions struct {
	BaseOptions
	Checker Checker
}

// NewServiceabilityAgent creates the serviceability agent.
func NewServiceabilityAgent(optFns ...func(o *ServiceabilityOptions)) *ServiceabilityAgent {
	opts := ServiceabilityOptions{Checker: ZipCodeChecker}
	for _, fn := range optFns {
		fn(&opts)
	}
	base := NewBaseAgent(
		"serviceability_agent",
		"Checks whether a business address is inside the network footprint",
		[]string{"serviceability"},
		func(o *BaseOptions) {
			if opts.Logger != nil {
				o.Logger = opts.Logger
			}
		},
	)
	return &ServiceabilityAgent{BaseAgent: base, check: opts.Checker}
}

// Handle implements core.Agent.
func (a *ServiceabilityAgent) Handle(ctx context.Context, env core.Envelope) (core.Envelope, error) {
	address := env.Payload.String("address")

	serviceable, err := a.check(ctx, address)
	if err != nil {
		return core.Envelope{}, err
	}

	payload := core.Payload{
		"address":     address,
		"serviceable": serviceable,
		"status":      StatusNotServiceable,
	}
	if serviceable {
		payload["status"] = StatusServiceable
		payload["network_type"] = "fiber"
		payload["max_bandwidth_mbps"] = 1000
	}
	a.Logger().Info("serviceability check: %s -> %s", address, payload.String("status"))

	return env.Respond(payload), nil
}
