package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/salesmesh/core"
)

// RedisStore is a Redis-backed ConversationStore for deployments where
// conversations must survive a process restart. Each conversation is one
// JSON value under "<prefix>conversation:<id>".
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisStoreOptions configures a RedisStore.
type RedisStoreOptions struct {
	// KeyPrefix prepends every key. Defaults to "salesmesh:".
	KeyPrefix string
	// TTL expires idle conversations. Zero means no expiry.
	TTL time.Duration
}

// NewRedisStore creates a conversation store over an existing Redis client.
// It pings the server once so wiring errors surface at startup, not on the
// first conversation.
func NewRedisStore(client *redis.Client, optFns ...func(o *RedisStoreOptions)) (*RedisStore, error) {
	opts := RedisStoreOptions{KeyPrefix: "salesmesh:"}
	for _, fn := range optFns {
		fn(&opts)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: opts.KeyPrefix, ttl: opts.TTL}, nil
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + "conversation:" + id
}

// Load implements core.ConversationStore.
func (s *RedisStore) Load(ctx context.Context, id string) (*core.Conversation, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &core.NotFoundError{Kind: "conversation", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}

	var conv core.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &conv, nil
}

// Save implements core.ConversationStore.
func (s *RedisStore) Save(ctx context.Context, conv *core.Conversation) error {
	data, err := json.Marshal(conv.Clone())
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", conv.ID, err)
	}
	if err := s.client.Set(ctx, s.key(conv.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save conversation %s: %w", conv.ID, err)
	}
	return nil
}

// AppendTurn implements core.ConversationStore as load-modify-save. A single
// logical worker owns each conversation, so no cross-process locking is
// needed here.
func (s *RedisStore) AppendTurn(ctx context.Context, id string, turn core.TurnRecord) error {
	conv, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	conv.AppendTurn(turn)
	return s.Save(ctx, conv)
}

// Ping checks store health.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
