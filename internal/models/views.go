package models

import "time"

// OtherUser is the peer's profile joined onto a conversation summary.
type OtherUser struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
	IsOnline   *bool  `json:"is_online,omitempty"`
}

// ConversationSummary is the "my conversations" read model.
type ConversationSummary struct {
	ConversationID     string     `json:"conversation_id"`
	OtherUser          OtherUser  `json:"other_user"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	LastMessageTime    *time.Time `json:"last_message_time,omitempty"`
	UnreadCount        int        `json:"unread_count"`
}

// MessageWithSender is a message joined with the sender's display profile.
// Unknown senders render as "Unknown" with an empty avatar.
type MessageWithSender struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	SenderName     string    `json:"sender_name"`
	SenderImageURL string    `json:"sender_image_url"`
}

// TypingUser is one live entry of the typing registry.
type TypingUser struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}
