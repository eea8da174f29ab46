package models

import "time"

// Conversation is a two-party thread. ParticipantOne/Two keep whatever
// orientation the creating call used; the pair is logically unordered and
// PairKey is the canonical form a unique index hangs off.
type Conversation struct {
	ID                 string     `bson:"_id,omitempty" json:"id"`
	ParticipantOne     string     `bson:"participant_one" json:"participant_one"`
	ParticipantTwo     string     `bson:"participant_two" json:"participant_two"`
	PairKey            string     `bson:"pair_key" json:"-"`
	LastMessagePreview string     `bson:"last_message_preview,omitempty" json:"last_message_preview,omitempty"`
	LastMessageTime    *time.Time `bson:"last_message_time,omitempty" json:"last_message_time,omitempty"`
	CreatedAt          time.Time  `bson:"created_at" json:"created_at"`
}

// PairKey canonicalizes an unordered participant pair.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.ParticipantOne == userID {
		return c.ParticipantTwo
	}
	return c.ParticipantOne
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantOne == userID || c.ParticipantTwo == userID
}
