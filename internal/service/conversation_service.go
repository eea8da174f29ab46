package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
	"github.com/yourorg/chat-app/services/dm-service/internal/events"
	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
)

// ConversationService is the directory plus the "my conversations" read
// model: find-or-create, summaries with peer profile and unread count, and
// the read cursor.
type ConversationService struct {
	convs    repository.Conversations
	messages repository.Messages
	members  repository.Members
	users    repository.Users
	pub      events.Publisher
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewConversationService(
	convs repository.Conversations,
	messages repository.Messages,
	members repository.Members,
	users repository.Users,
	pub events.Publisher,
	log *zap.SugaredLogger,
) *ConversationService {
	return &ConversationService{
		convs:    convs,
		messages: messages,
		members:  members,
		users:    users,
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

// GetOrCreate returns the one conversation for the caller and otherUserID,
// in either orientation, creating it on first contact.
func (s *ConversationService) GetOrCreate(ctx context.Context, callerID, otherUserID string) (*models.Conversation, error) {
	if callerID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if otherUserID == "" || otherUserID == callerID {
		return nil, apperrors.ErrBadRequest
	}
	return s.convs.GetOrCreate(ctx, callerID, otherUserID, s.now())
}

// ListForUser builds the conversation summaries, newest activity first.
// An anonymous caller gets an empty list, not an error.
func (s *ConversationService) ListForUser(ctx context.Context, callerID string) ([]models.ConversationSummary, error) {
	if callerID == "" {
		return []models.ConversationSummary{}, nil
	}
	convs, err := s.convs.ListByParticipant(ctx, callerID)
	if err != nil {
		return nil, err
	}

	// Conversations without messages sort last, as activity time zero.
	sort.SliceStable(convs, func(i, j int) bool {
		return lastActivity(convs[i]).After(lastActivity(convs[j]))
	})

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		otherID := conv.OtherParticipant(callerID)

		other := models.OtherUser{ExternalID: otherID, Name: "Unknown"}
		if u, err := s.users.FindByExternalID(ctx, otherID); err == nil {
			other.Name = u.Name
			other.ImageURL = u.ImageURL
			other.IsOnline = u.IsOnline
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		unread, err := s.unread(ctx, callerID, conv.ID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, models.ConversationSummary{
			ConversationID:     conv.ID,
			OtherUser:          other,
			LastMessagePreview: conv.LastMessagePreview,
			LastMessageTime:    conv.LastMessageTime,
			UnreadCount:        unread,
		})
	}
	return summaries, nil
}

// MarkRead moves the caller's cursor to now. The cursor always takes the
// call time, even when that moves it backward relative to a concurrent
// mark from another tab.
func (s *ConversationService) MarkRead(ctx context.Context, callerID, conversationID string) error {
	if callerID == "" {
		return apperrors.ErrUnauthorized
	}
	return s.members.Upsert(ctx, callerID, conversationID, s.now())
}

// UnreadCount counts other-authored messages after the caller's cursor.
// No cursor means the whole history counts; no identity means zero.
func (s *ConversationService) UnreadCount(ctx context.Context, callerID, conversationID string) (int, error) {
	if callerID == "" {
		return 0, nil
	}
	return s.unread(ctx, callerID, conversationID)
}

func (s *ConversationService) unread(ctx context.Context, userID, conversationID string) (int, error) {
	var after *time.Time
	m, err := s.members.Find(ctx, userID, conversationID)
	switch {
	case err == nil:
		after = &m.LastReadTime
	case errors.Is(err, apperrors.ErrNotFound):
		// never read: count everything not authored by the user
	default:
		return 0, err
	}
	return s.messages.CountUnread(ctx, conversationID, userID, after)
}

func lastActivity(c *models.Conversation) time.Time {
	if c.LastMessageTime == nil {
		return time.Time{}
	}
	return *c.LastMessageTime
}
