// Package typing tracks short-lived "user is composing" facts. Entries are
// never swept on a schedule: staleness is computed at read time, and the
// Redis key TTL below exists only to reclaim storage for dead conversations.
package typing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one indicator. UserName is denormalized at the time of typing
// so readers need no profile join.
type Entry struct {
	UserName  string `json:"user_name"`
	UpdatedAt int64  `json:"updated_at_ms"`
}

// Store is the registry persistence contract.
type Store interface {
	// Set upserts the (conversation, user) indicator, refreshing its clock.
	Set(ctx context.Context, conversationID, userID, userName string, at time.Time) error
	// Clear deletes the indicator; clearing a missing one is a no-op.
	Clear(ctx context.Context, conversationID, userID string) error
	// Entries returns every stored indicator for the conversation, stale
	// ones included. Filtering is the caller's job.
	Entries(ctx context.Context, conversationID string) (map[string]Entry, error)
}

// RedisStore keeps one hash per conversation: field = userID, value = Entry.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	reclaim time.Duration
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, reclaim: 30 * time.Second}
}

func (s *RedisStore) key(conversationID string) string {
	return fmt.Sprintf("%s:typing:%s", s.prefix, conversationID)
}

func (s *RedisStore) Set(ctx context.Context, conversationID, userID, userName string, at time.Time) error {
	e := Entry{UserName: userName, UpdatedAt: at.UnixMilli()}
	b, _ := json.Marshal(e)
	key := s.key(conversationID)
	if err := s.client.HSet(ctx, key, userID, b).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.reclaim).Err()
}

func (s *RedisStore) Clear(ctx context.Context, conversationID, userID string) error {
	return s.client.HDel(ctx, s.key(conversationID), userID).Err()
}

func (s *RedisStore) Entries(ctx context.Context, conversationID string) (map[string]Entry, error) {
	raw, err := s.client.HGetAll(ctx, s.key(conversationID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Entry, len(raw))
	for userID, v := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		out[userID] = e
	}
	return out, nil
}
