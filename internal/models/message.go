package models

import "time"

// Message is append-only: no edit, no delete.
type Message struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	SenderID       string    `bson:"sender_id" json:"sender_id"`
	Content        string    `bson:"content" json:"content"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// Membership holds a user's read cursor in one conversation. Absence of a
// row means "never read".
type Membership struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	LastReadTime   time.Time `bson:"last_read_time" json:"last_read_time"`
}
