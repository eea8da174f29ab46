package models

import "time"

// User mirrors a profile row owned by the external identity provider.
// ExternalID is the provider's stable id and the only key callers know.
type User struct {
	ID         string     `bson:"_id,omitempty" json:"id"`
	ExternalID string     `bson:"external_id" json:"external_id"`
	Name       string     `bson:"name" json:"name"`
	Email      string     `bson:"email" json:"email"`
	ImageURL   string     `bson:"image_url" json:"image_url"`
	IsOnline   *bool      `bson:"is_online,omitempty" json:"is_online,omitempty"`
	LastSeen   *time.Time `bson:"last_seen,omitempty" json:"last_seen,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
}
