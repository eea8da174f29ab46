package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
	"github.com/yourorg/chat-app/services/dm-service/internal/events"
	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
)

// UserService mirrors identity-provider profiles and owns the coarse
// online/offline presence flag.
type UserService struct {
	users repository.Users
	pub   events.Publisher
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewUserService(users repository.Users, pub events.Publisher, log *zap.SugaredLogger) *UserService {
	return &UserService{users: users, pub: pub, log: log, now: time.Now}
}

// Sync upserts the profile keyed on the provider's stable id. Same id in,
// same row out, always.
func (s *UserService) Sync(ctx context.Context, externalID, name, email, imageURL string) (*models.User, error) {
	if externalID == "" {
		return nil, apperrors.ErrBadRequest
	}
	return s.users.Upsert(ctx, externalID, name, email, imageURL, s.now())
}

// ListOthers returns every known user except the caller, sorted by name.
func (s *UserService) ListOthers(ctx context.Context, callerID string) ([]*models.User, error) {
	if callerID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	return s.users.ListExcept(ctx, callerID)
}

// SetOnline flips the caller's own flag and stamps last_seen. Presence for
// a user the profile sync has not delivered yet is silently dropped.
func (s *UserService) SetOnline(ctx context.Context, callerID string, isOnline bool) error {
	if callerID == "" {
		return apperrors.ErrUnauthorized
	}
	at := s.now()
	if err := s.users.SetPresence(ctx, callerID, isOnline, at); err != nil {
		return err
	}
	if err := s.pub.Publish(ctx, events.Event{
		Type:       events.TypePresenceChanged,
		UserID:     callerID,
		OccurredAt: at,
	}); err != nil {
		s.log.Warnw("publish presence.changed", "user_id", callerID, "err", err)
	}
	return nil
}
