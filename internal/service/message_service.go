package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
	"github.com/yourorg/chat-app/services/dm-service/internal/events"
	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
)

// previewLimit is how many characters of a message the conversation list
// shows.
const previewLimit = 50

// MessageService appends to the log and serves the joined history.
type MessageService struct {
	messages repository.Messages
	convs    repository.Conversations
	users    repository.Users
	pub      events.Publisher
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewMessageService(
	messages repository.Messages,
	convs repository.Conversations,
	users repository.Users,
	pub events.Publisher,
	log *zap.SugaredLogger,
) *MessageService {
	return &MessageService{
		messages: messages,
		convs:    convs,
		users:    users,
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

// Send appends a message and patches the conversation's denormalized
// preview fields. The sender's authentication is the only check: whether
// the sender is a participant of the conversation is trusted to the caller.
func (s *MessageService) Send(ctx context.Context, callerID, conversationID, content string) (*models.Message, *models.Conversation, error) {
	if callerID == "" {
		return nil, nil, apperrors.ErrUnauthorized
	}
	conv, err := s.convs.FindByID(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}

	at := s.now()
	msg, err := s.messages.Insert(ctx, &models.Message{
		ConversationID: conversationID,
		SenderID:       callerID,
		Content:        content,
		CreatedAt:      at,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.convs.RecordMessage(ctx, conversationID, Preview(content), at); err != nil {
		return nil, nil, err
	}

	for _, ev := range []events.Event{
		{Type: events.TypeMessageSent, ConversationID: conversationID, UserID: callerID, OccurredAt: at},
		{Type: events.TypeConversationUpdated, ConversationID: conversationID, OccurredAt: at},
	} {
		if err := s.pub.Publish(ctx, ev); err != nil {
			s.log.Warnw("publish event", "type", ev.Type, "conversation_id", conversationID, "err", err)
		}
	}
	return msg, conv, nil
}

// List returns the full history, oldest first, each message joined with
// the sender's current profile.
func (s *MessageService) List(ctx context.Context, conversationID string) ([]models.MessageWithSender, error) {
	msgs, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*models.User)
	out := make([]models.MessageWithSender, 0, len(msgs))
	for _, m := range msgs {
		sender, ok := profiles[m.SenderID]
		if !ok {
			u, err := s.users.FindByExternalID(ctx, m.SenderID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			sender = u // nil when the profile is gone
			profiles[m.SenderID] = sender
		}

		row := models.MessageWithSender{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
			SenderName:     "Unknown",
		}
		if sender != nil {
			row.SenderName = sender.Name
			row.SenderImageURL = sender.ImageURL
		}
		out = append(out, row)
	}
	return out, nil
}

// Preview truncates content to the first previewLimit characters.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit])
}
