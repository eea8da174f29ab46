package service

import (
	"context"
	"sort"
	"time"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"github.com/yourorg/chat-app/services/dm-service/internal/typing"
)

// TypingService exposes the ephemeral "who is composing" state. An
// indicator has two states, absent and active; active decays to absent by
// time alone, so reads filter on age and writes never sweep.
type TypingService struct {
	store typing.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewTypingService(store typing.Store, ttl time.Duration) *TypingService {
	return &TypingService{store: store, ttl: ttl, now: time.Now}
}

// Set refreshes the caller's indicator when isTyping is true and deletes
// it when false. Deleting an absent indicator is a no-op.
func (s *TypingService) Set(ctx context.Context, callerID, conversationID, userName string, isTyping bool) error {
	if callerID == "" {
		return apperrors.ErrUnauthorized
	}
	if isTyping {
		return s.store.Set(ctx, conversationID, callerID, userName, s.now())
	}
	return s.store.Clear(ctx, conversationID, callerID)
}

// List returns the users whose indicator is within the TTL window. Stale
// entries are excluded here, never deleted.
func (s *TypingService) List(ctx context.Context, conversationID string) ([]models.TypingUser, error) {
	entries, err := s.store.Entries(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	nowMillis := s.now().UnixMilli()
	ttlMillis := s.ttl.Milliseconds()

	out := make([]models.TypingUser, 0, len(entries))
	for userID, e := range entries {
		if nowMillis-e.UpdatedAt > ttlMillis {
			continue
		}
		out = append(out, models.TypingUser{UserID: userID, UserName: e.UserName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
