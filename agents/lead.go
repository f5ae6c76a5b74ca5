package agents

import (
	"context"

	"github.com/hupe1980/salesmesh/core"
)

// LeadGenerationAgent scores prospects and enriches them into leads. The
// score is deterministic over the facts the conversation has surfaced so the
// same prospect always grades the same.
type LeadGenerationAgent struct {
	BaseAgent
}

// NewLeadGenerationAgent creates the lead generation agent.
func NewLeadGenerationAgent(optFns ...func(o *BaseOptions)) *LeadGenerationAgent {
	return &LeadGenerationAgent{
		BaseAgent: NewBaseAgent(
			"lead_generation_agent",
			"Scores prospects and enriches them into graded leads",
			[]string{"lead", "scoring"},
			optFns...,
		),
	}
}

// Handle implements core.Agent.
func (a *LeadGenerationAgent) Handle(_ context.Context, env core.Envelope) (core.Envelope, error) {
	prospectID := env.Payload.String("prospect_id")
	employeeCount := env.Payload.Int("employee_count")
	industry := env.Payload.String("industry")
	serviceInterest := env.Payload.Bool("service_interest")

	score := scoreLead(employeeCount, industry, serviceInterest)
	leadID := core.NewID()
	a.Logger().Info("lead scored: %s score=%d grade=%s", leadID, score, gradeFor(score))

	return env.Respond(core.Payload{
		"lead_id":      leadID,
		"prospect_id":  prospectID,
		"lead_score":   score,
		"lead_grade":   gradeFor(score),
		"recommended_products": []string{"Internet 500", "Business Voice Pro"},
		"next_steps": []string{
			"Validate address serviceability",
			"Generate personalized offer",
		},
	}), nil
}

// scoreLead rates a lead from 0 to 100. Mid-size companies with expressed
// interest score best; regulated industries deduct for longer sales cycles.
func scoreLead(employeeCount int, industry string, serviceInterest bool) int {
	score := 30
	switch {
	case employeeCount >= 50 && employeeCount <= 250:
		score += 40
	case employeeCount >= 10:
		score += 30
	case employeeCount >= 5:
		score += 15
	}
	if serviceInterest {
		score += 25
	}
	if regulatedIndustries[industry] {
		score -= 10
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func gradeFor(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	}
	return "D"
}
