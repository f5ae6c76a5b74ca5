package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salesmesh/core"
)

var (
	_ core.IntentClassifier = (*Collaborator)(nil)
	_ core.ReplyGenerator   = (*Collaborator)(nil)
)

func TestClassifyIntent(t *testing.T) {
	c := New()
	ctx := context.Background()

	cases := []struct {
		text string
		want core.Intent
	}{
		{"We are a company with 40 employees interested in fiber", core.IntentQualify},
		{"Can you connect my office at Main St 1?", core.IntentCheckServiceability},
		{"How much does Fiber 1000 cost?", core.IntentPrice},
		{"I want to order Fiber 500", core.IntentOrder},
		{"What is the status of my order?", core.IntentStatus},
		{"Nice weather today", core.IntentOther},
	}
	for _, tc := range cases {
		intent, err := c.ClassifyIntent(ctx, tc.text, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, intent, "text: %s", tc.text)
	}
}

func TestGenerateReply(t *testing.T) {
	c := New()
	ctx := context.Background()

	reply, err := c.GenerateReply(ctx, core.ReplyContext{
		Answers: []core.AgentAnswer{
			{AgentID: "offer_agent", Text: "Fiber 500 costs 49 EUR per month."},
			{AgentID: "serviceability_agent", Err: &core.TimeoutError{AgentID: "serviceability_agent"}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "Fiber 500")
	assert.Contains(t, reply, "unavailable")
}

func TestGenerateReply_AllFailed(t *testing.T) {
	c := New()

	reply, err := c.GenerateReply(context.Background(), core.ReplyContext{
		Answers: []core.AgentAnswer{
			{AgentID: "offer_agent", Err: &core.TimeoutError{AgentID: "offer_agent"}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "could not")
}
