package repository

import (
	"context"
	"time"

	"github.com/yourorg/chat-app/services/dm-service/internal/models"
)

// Users is the profile store. Rows are owned by the external identity
// provider and mirrored here via Upsert.
type Users interface {
	// Upsert creates or patches the row keyed on externalID. Calling it
	// twice with the same id never duplicates.
	Upsert(ctx context.Context, externalID, name, email, imageURL string, at time.Time) (*models.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	// ListExcept returns every user but externalID, sorted by name.
	ListExcept(ctx context.Context, externalID string) ([]*models.User, error)
	// SetPresence flips the online flag and stamps last_seen on one row.
	// A missing row is a no-op.
	SetPresence(ctx context.Context, externalID string, online bool, at time.Time) error
}

// Conversations is the directory of two-party threads.
type Conversations interface {
	// GetOrCreate returns the unique conversation for the unordered pair
	// (a, b), creating it when absent. Concurrent calls for the same pair
	// converge on one conversation.
	GetOrCreate(ctx context.Context, a, b string, at time.Time) (*models.Conversation, error)
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByParticipant(ctx context.Context, userID string) ([]*models.Conversation, error)
	// RecordMessage patches the denormalized preview fields. The preview
	// is stored as given; truncation happens upstream.
	RecordMessage(ctx context.Context, conversationID, preview string, at time.Time) error
}

// Messages is the append-only log.
type Messages interface {
	Insert(ctx context.Context, m *models.Message) (*models.Message, error)
	// ListByConversation returns the full history, ascending created_at,
	// ties broken by insertion order.
	ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error)
	// CountUnread counts messages not authored by userID, restricted to
	// created_at strictly after the cursor when one is given.
	CountUnread(ctx context.Context, conversationID, userID string, after *time.Time) (int, error)
}

// Members holds per-user read cursors, created lazily on first mark-read.
type Members interface {
	Upsert(ctx context.Context, userID, conversationID string, lastRead time.Time) error
	// Find returns apperrors.ErrNotFound when the user never marked the
	// conversation read.
	Find(ctx context.Context, userID, conversationID string) (*models.Membership, error)
}
