package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/salesmesh/core"
)

// basePrices is the monthly list price per product.
var basePrices = map[string]float64{
	"Internet 100":         79.99,
	"Internet 500":         149.99,
	"Internet 1 Gig":       249.99,
	"Business Voice Basic": 29.99,
	"Business Voice Pro":   49.99,
	"Managed WiFi":         99.99,
	"Managed Security":     149.99,
}

const (
	bundleDiscount   = 0.10 // two or more products
	contractDiscount = 0.05 // 24 months or longer
	installationFee  = 99.00
)

// OfferAgent turns a product selection into a priced offer with bundle and
// contract-term discounts applied.
type OfferAgent struct {
	BaseAgent
}

// NewOfferAgent creates the offer agent.
func NewOfferAgent(optFns ...func(o *BaseOptions)) *OfferAgent {
	return &OfferAgent{
		BaseAgent: NewBaseAgent(
			"offer_agent",
			"Generates personalized offers with bundle and contract discounts",
			[]string{"offer", "pricing"},
			optFns...,
		),
	}
}

// Handle implements core.Agent.
func (a *OfferAgent) Handle(_ context.Context, env core.Envelope) (core.Envelope, error) {
	products := env.Payload.Strings("products")
	if len(products) == 0 {
		products = []string{"Internet 500", "Business Voice Basic"}
	}
	contractTerm := env.Payload.Int("contract_term")
	if contractTerm == 0 {
		contractTerm = 24
	}

	var monthlyBase float64
	hasInternet := false
	for _, p := range products {
		monthlyBase += basePrices[p]
		if strings.HasPrefix(p, "Internet") {
			hasInternet = true
		}
	}

	discount := 0.0
	if len(products) >= 2 {
		discount += bundleDiscount
	}
	if contractTerm >= 24 {
		discount += contractDiscount
	}
	discountAmount := monthlyBase * discount
	monthlyTotal := monthlyBase - discountAmount

	fee := 0.0
	if hasInternet {
		fee = installationFee
	}

	offerID := core.NewID()
	a.Logger().Info("offer generated: %s monthly=%.2f", offerID, monthlyTotal)

	return env.Respond(core.Payload{
		"offer_id":         offerID,
		"lead_id":          env.Payload.String("lead_id"),
		"products":         products,
		"monthly_base":     monthlyBase,
		"discount_amount":  discountAmount,
		"monthly_total":    monthlyTotal,
		"installation_fee": fee,
		"contract_term":    contractTerm,
		"summary": fmt.Sprintf("%s for %.2f EUR per month on a %d month term",
			strings.Join(products, " + "), monthlyTotal, contractTerm),
	}), nil
}
