package agents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/retrieval"
)

var (
	_ core.Agent = (*ProspectAgent)(nil)
	_ core.Agent = (*LeadGenerationAgent)(nil)
	_ core.Agent = (*ServiceabilityAgent)(nil)
	_ core.Agent = (*OfferAgent)(nil)
	_ core.Agent = (*OrderAgent)(nil)
	_ core.Agent = (*FulfillmentAgent)(nil)
	_ core.Agent = (*ServiceActivationAgent)(nil)
	_ core.Agent = (*PolicyAgent)(nil)
)

func request(recipient string, payload core.Payload) core.Envelope {
	return core.NewRequest("orchestrator", recipient, "conv-1", payload)
}

func TestProspectAgent_Qualification(t *testing.T) {
	agent := NewProspectAgent()
	ctx := context.Background()

	cases := []struct {
		name       string
		payload    core.Payload
		wantStatus string
		wantNote   string
	}{
		{
			name:       "qualified smb",
			payload:    core.Payload{"company_name": "Acme GmbH", "employee_count": 40},
			wantStatus: QualificationQualified,
		},
		{
			name:       "too small",
			payload:    core.Payload{"company_name": "Tiny Ltd", "employee_count": 3},
			wantStatus: QualificationNotQualified,
			wantNote:   "too small",
		},
		{
			name:       "enterprise review",
			payload:    core.Payload{"company_name": "Mega Corp", "employee_count": 400},
			wantStatus: QualificationNeedsReview,
			wantNote:   "Enterprise",
		},
		{
			name:       "regulated industry",
			payload:    core.Payload{"company_name": "MediCare", "employee_count": 60, "industry": "healthcare"},
			wantStatus: QualificationQualified,
			wantNote:   "compliance",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := agent.Handle(ctx, request("prospect_agent", tc.payload))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.Payload.String("qualification_status"))
			assert.NotEmpty(t, resp.Payload.String("prospect_id"))
			if tc.wantNote != "" {
				notes := resp.Payload.Strings("qualification_notes")
				require.NotEmpty(t, notes)
				found := false
				for _, n := range notes {
					if containsFold(n, tc.wantNote) {
						found = true
					}
				}
				assert.True(t, found, "notes %v should mention %q", notes, tc.wantNote)
			}
		})
	}
}

func TestProspectAgent_KeepsExistingID(t *testing.T) {
	agent := NewProspectAgent()

	resp, err := agent.Handle(context.Background(), request("prospect_agent", core.Payload{
		"prospect_id":    "prospect-1",
		"employee_count": 40,
	}))
	require.NoError(t, err)
	assert.Equal(t, "prospect-1", resp.Payload.String("prospect_id"))
}

func TestLeadGenerationAgent_Scoring(t *testing.T) {
	agent := NewLeadGenerationAgent()

	resp, err := agent.Handle(context.Background(), request("lead_generation_agent", core.Payload{
		"prospect_id":      "prospect-1",
		"employee_count":   120,
		"service_interest": true,
	}))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Payload.String("lead_id"))
	assert.Equal(t, "prospect-1", resp.Payload.String("prospect_id"))
	assert.GreaterOrEqual(t, resp.Payload.Int("lead_score"), 80)
	assert.Equal(t, "A", resp.Payload.String("lead_grade"))

	// Same facts, same score.
	again, err := agent.Handle(context.Background(), request("lead_generation_agent", core.Payload{
		"employee_count":   120,
		"service_interest": true,
	}))
	require.NoError(t, err)
	assert.Equal(t, resp.Payload.Int("lead_score"), again.Payload.Int("lead_score"))
}

func TestServiceabilityAgent(t *testing.T) {
	agent := NewServiceabilityAgent()
	ctx := context.Background()

	resp, err := agent.Handle(ctx, request("serviceability_agent", core.Payload{
		"address": "100 Main St, New York, NY 10001",
	}))
	require.NoError(t, err)
	assert.True(t, resp.Payload.Bool("serviceable"))
	assert.Equal(t, StatusServiceable, resp.Payload.String("status"))
	assert.Equal(t, "fiber", resp.Payload.String("network_type"))

	resp, err = agent.Handle(ctx, request("serviceability_agent", core.Payload{
		"address": "1 Remote Rd, Nowhere, MT 59000",
	}))
	require.NoError(t, err)
	assert.False(t, resp.Payload.Bool("serviceable"))
	assert.Equal(t, StatusNotServiceable, resp.Payload.String("status"))
}

func TestServiceabilityAgent_CustomChecker(t *testing.T) {
	agent := NewServiceabilityAgent(func(o *ServiceabilityOptions) {
		o.Checker = func(context.Context, string) (bool, error) { return true, nil }
	})

	resp, err := agent.Handle(context.Background(), request("serviceability_agent", core.Payload{
		"address": "anywhere",
	}))
	require.NoError(t, err)
	assert.True(t, resp.Payload.Bool("serviceable"))
}

func TestOfferAgent_Pricing(t *testing.T) {
	agent := NewOfferAgent()

	resp, err := agent.Handle(context.Background(), request("offer_agent", core.Payload{
		"products":      []string{"Internet 500", "Business Voice Pro"},
		"contract_term": 24,
	}))
	require.NoError(t, err)

	// 149.99 + 49.99 with 10% bundle and 5% contract discount.
	assert.InDelta(t, 199.98, resp.Payload["monthly_base"], 0.001)
	assert.InDelta(t, 169.983, resp.Payload["monthly_total"], 0.001)
	assert.InDelta(t, 99.0, resp.Payload["installation_fee"], 0.001)
	assert.NotEmpty(t, resp.Payload.String("offer_id"))
	assert.Contains(t, resp.Payload.String("summary"), "Internet 500")
}

func TestOfferAgent_NoDiscountSingleProduct(t *testing.T) {
	agent := NewOfferAgent()

	resp, err := agent.Handle(context.Background(), request("offer_agent", core.Payload{
		"products":      []string{"Business Voice Basic"},
		"contract_term": 12,
	}))
	require.NoError(t, err)
	assert.InDelta(t, 29.99, resp.Payload["monthly_total"], 0.001)
	assert.InDelta(t, 0.0, resp.Payload["installation_fee"], 0.001)
}

func TestFulfillmentAgent(t *testing.T) {
	agent := NewFulfillmentAgent()

	resp, err := agent.Handle(context.Background(), request("fulfillment_agent", core.Payload{
		"order_id": "order-1",
		"products": []string{"Internet 500", "Managed WiFi"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "SCHEDULED", resp.Payload.String("status"))
	assert.NotEmpty(t, resp.Payload.String("installation_date"))
	assert.Contains(t, resp.Payload.Strings("equipment"), "Fiber ONT")
	assert.Contains(t, resp.Payload.Strings("equipment"), "WiFi Access Point")
}

func TestFulfillmentAgent_StatusCheck(t *testing.T) {
	now := time.Now()
	agent := NewFulfillmentAgent(func(o *FulfillmentOptions) {
		o.Now = func() time.Time { return now }
	})

	future := now.Add(3 * 24 * time.Hour).Format("2006-01-02")
	resp, err := agent.Handle(context.Background(), request("fulfillment_agent", core.Payload{
		"order_id":          "order-1",
		"installation_date": future,
	}))
	require.NoError(t, err)
	assert.Equal(t, FulfillmentScheduled, resp.Payload.String("status"))
	assert.Equal(t, future, resp.Payload.String("installation_date"))

	past := now.Add(-24 * time.Hour).Format("2006-01-02")
	resp, err = agent.Handle(context.Background(), request("fulfillment_agent", core.Payload{
		"order_id":          "order-1",
		"installation_date": past,
	}))
	require.NoError(t, err)
	assert.Equal(t, FulfillmentInstalled, resp.Payload.String("status"))
}

func TestServiceActivationAgent(t *testing.T) {
	agent := NewServiceActivationAgent()

	resp, err := agent.Handle(context.Background(), request("service_activation_agent", core.Payload{
		"order_id": "order-1",
		"products": []string{"Internet 500"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Payload.String("status"))
	assert.NotEmpty(t, resp.Payload.String("activation_date"))
}

func TestPolicyAgent(t *testing.T) {
	retriever := retrieval.New(map[string]string{
		"order_policy": "Cancellation is free of charge before fulfillment starts.\n\n" +
			"Orders require a confirmed serviceable address before processing.",
	})
	agent := NewPolicyAgent("order_policy_agent", retriever)

	rec := core.NewTraceRecorder()
	ctx := core.WithTrace(context.Background(), rec)

	resp, err := agent.Handle(ctx, request("order_policy_agent", core.Payload{
		"question": "is cancellation free of charge?",
	}))
	require.NoError(t, err)
	assert.True(t, resp.Payload.Bool("found"))
	assert.Contains(t, resp.Payload.String("answer"), "Cancellation")
	assert.Equal(t, []string{core.ToolRetrieval}, rec.Snapshot().ToolsUsed)
}

func TestPolicyAgent_NotFound(t *testing.T) {
	agent := NewPolicyAgent("order_policy_agent", retrieval.New(map[string]string{
		"order_policy": "Orders require a confirmed serviceable address.",
	}))

	resp, err := agent.Handle(context.Background(), request("order_policy_agent", core.Payload{
		"question": "galactic shipping rates",
	}))
	require.NoError(t, err)
	assert.False(t, resp.Payload.Bool("found"))
	assert.Contains(t, resp.Payload.String("answer"), "no entry")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
