package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/salesmesh/core"
)

var _ core.ConversationStore = (*RedisStore)(nil)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc, err := NewRedisStore(client)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	return svc
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	svc := newTestRedisStore(t)
	ctx := context.Background()

	conv := core.NewConversation("conv-1")
	conv.MergeContext(core.ProspectContext{
		CompanyName:   "Acme GmbH",
		ContactName:   "Jamie Doe",
		EmployeeCount: 42,
	})
	require.NoError(t, conv.Advance(core.StageOffer))
	conv.ProspectCreated = true
	conv.ProspectID = "prospect-1"
	require.NoError(t, svc.Save(ctx, conv))

	loaded, err := svc.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, core.StageOffer, loaded.CurrentStage())
	assert.Equal(t, "Acme GmbH", loaded.Context.CompanyName)
	assert.True(t, loaded.ProspectCreated)
	assert.Equal(t, "prospect-1", loaded.ProspectID)
}

func TestRedisStore_LoadUnknown(t *testing.T) {
	svc := newTestRedisStore(t)

	_, err := svc.Load(context.Background(), "ghost")
	var notFound *core.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "conversation", notFound.Kind)
	assert.Equal(t, "ghost", notFound.ID)
}

func TestRedisStore_AppendTurn(t *testing.T) {
	svc := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, core.NewConversation("conv-1")))
	require.NoError(t, svc.AppendTurn(ctx, "conv-1", core.TurnRecord{
		UserMessage:    "do you serve Main St 1?",
		AssistantReply: "yes, that address is serviceable",
		AgentsInvoked:  []string{"serviceability_agent"},
	}))

	loaded, err := svc.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, loaded.History(), 1)
	assert.Equal(t, []string{"serviceability_agent"}, loaded.History()[0].AgentsInvoked)
}
