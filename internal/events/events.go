// Package events emits change hints the realtime transport consumes to
// re-run its queries. Publishing is fire-and-forget: a broker failure is
// logged by the caller and never fails the triggering operation.
package events

import (
	"context"
	"time"
)

const (
	TypeMessageSent         = "message.sent"
	TypeConversationUpdated = "conversation.updated"
	TypePresenceChanged     = "presence.changed"
)

// Event is the envelope written to the broker and to connected sockets.
type Event struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher is implemented by the Kafka producer and by the no-op used in
// tests.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
