package agents

import (
	"context"

	"github.com/hupe1980/salesmesh/core"
)

// Qualification status values returned by the prospect agent.
const (
	QualificationQualified    = "qualified"
	QualificationNotQualified = "not_qualified"
	QualificationNeedsReview  = "needs_review"
)

// Employee-count bounds of the SMB segment.
const (
	minSMBEmployees = 5
	maxSMBEmployees = 250
)

// regulatedIndustries require compliance review regardless of size.
var regulatedIndustries = map[string]bool{
	"healthcare": true,
	"finance":    true,
}

// ProspectAgent creates prospect records and qualifies them for the SMB
// segment. Companies below the segment floor are rejected, companies above
// the ceiling are routed to enterprise review.
type ProspectAgent struct {
	BaseAgent
}

// NewProspectAgent creates the prospect agent.
func NewProspectAgent(optFns ...func(o *BaseOptions)) *ProspectAgent {
	return &ProspectAgent{
		BaseAgent: NewBaseAgent(
			"prospect_agent",
			"Creates prospect records and qualifies companies for the SMB segment",
			[]string{"prospect", "qualification"},
			optFns...,
		),
	}
}

// Handle implements core.Agent.
func (a *ProspectAgent) Handle(_ context.Context, env core.Envelope) (core.Envelope, error) {
	companyName := env.Payload.String("company_name")
	contactName := env.Payload.String("contact_name")
	employeeCount := env.Payload.Int("employee_count")
	industry := env.Payload.String("industry")

	prospectID := env.Payload.String("prospect_id")
	if prospectID == "" {
		prospectID = core.NewID()
		a.Logger().Info("prospect created: %s (%s)", prospectID, companyName)
	}

	status := QualificationQualified
	var notes []string
	switch {
	case employeeCount > 0 && employeeCount < minSMBEmployees:
		status = QualificationNotQualified
		notes = append(notes, "Company too small for SMB (< 5 employees)")
	case employeeCount > maxSMBEmployees:
		status = QualificationNeedsReview
		notes = append(notes, "Enterprise opportunity (> 250 employees)")
	}
	if regulatedIndustries[industry] {
		notes = append(notes, "Special compliance requirements for "+industry)
	}

	return env.Respond(core.Payload{
		"prospect_id":          prospectID,
		"company_name":         companyName,
		"contact_name":         contactName,
		"employee_count":       employeeCount,
		"industry":             industry,
		"qualification_status": status,
		"qualification_notes":  notes,
	}), nil
}
