package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
	"github.com/yourorg/chat-app/services/dm-service/internal/models"
)

// In-memory implementations backing tests and local runs without Mongo.

type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]*models.User // externalID -> user
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]*models.User)}
}

func (s *MemoryUsers) Upsert(_ context.Context, externalID, name, email, imageURL string, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[externalID]
	if !ok {
		u = &models.User{
			ID:         primitive.NewObjectID().Hex(),
			ExternalID: externalID,
			CreatedAt:  at.UTC(),
		}
		s.users[externalID] = u
	}
	u.Name = name
	u.Email = email
	u.ImageURL = imageURL
	cp := *u
	return &cp, nil
}

func (s *MemoryUsers) FindByExternalID(_ context.Context, externalID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[externalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUsers) ListExcept(_ context.Context, externalID string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for id, u := range s.users {
		if id == externalID {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryUsers) SetPresence(_ context.Context, externalID string, online bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[externalID]
	if !ok {
		return nil
	}
	seen := at.UTC()
	u.IsOnline = &online
	u.LastSeen = &seen
	return nil
}

type MemoryConversations struct {
	mu     sync.RWMutex
	byID   map[string]*models.Conversation
	byPair map[string]string // pair key -> conversation id
}

func NewMemoryConversations() *MemoryConversations {
	return &MemoryConversations{
		byID:   make(map[string]*models.Conversation),
		byPair: make(map[string]string),
	}
}

func (s *MemoryConversations) GetOrCreate(_ context.Context, a, b string, at time.Time) (*models.Conversation, error) {
	key := models.PairKey(a, b)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byPair[key]; ok {
		cp := *s.byID[id]
		return &cp, nil
	}
	conv := &models.Conversation{
		ID:             primitive.NewObjectID().Hex(),
		ParticipantOne: a,
		ParticipantTwo: b,
		PairKey:        key,
		CreatedAt:      at.UTC(),
	}
	s.byID[conv.ID] = conv
	s.byPair[key] = conv.ID
	cp := *conv
	return &cp, nil
}

func (s *MemoryConversations) FindByID(_ context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryConversations) ListByParticipant(_ context.Context, userID string) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Conversation
	for _, c := range s.byID {
		if c.HasParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryConversations) RecordMessage(_ context.Context, conversationID, preview string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[conversationID]
	if !ok {
		return apperrors.ErrNotFound
	}
	t := at.UTC()
	c.LastMessagePreview = preview
	c.LastMessageTime = &t
	return nil
}

type MemoryMessages struct {
	mu     sync.RWMutex
	byConv map[string][]*models.Message
}

func NewMemoryMessages() *MemoryMessages {
	return &MemoryMessages{byConv: make(map[string][]*models.Message)}
}

func (s *MemoryMessages) Insert(_ context.Context, m *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	m.CreatedAt = m.CreatedAt.UTC()
	cp := *m
	s.byConv[m.ConversationID] = append(s.byConv[m.ConversationID], &cp)
	out := cp
	return &out, nil
}

func (s *MemoryMessages) ListByConversation(_ context.Context, conversationID string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.byConv[conversationID]
	out := make([]*models.Message, 0, len(msgs))
	for _, m := range msgs {
		cp := *m
		out = append(out, &cp)
	}
	// Stable keeps insertion order for messages sharing a timestamp.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryMessages) CountUnread(_ context.Context, conversationID, userID string, after *time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.byConv[conversationID] {
		if m.SenderID == userID {
			continue
		}
		if after != nil && !m.CreatedAt.After(*after) {
			continue
		}
		n++
	}
	return n, nil
}

type MemoryMembers struct {
	mu      sync.RWMutex
	cursors map[string]*models.Membership // userID|conversationID
}

func NewMemoryMembers() *MemoryMembers {
	return &MemoryMembers{cursors: make(map[string]*models.Membership)}
}

func memberKey(userID, conversationID string) string {
	return userID + "|" + conversationID
}

func (s *MemoryMembers) Upsert(_ context.Context, userID, conversationID string, lastRead time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey(userID, conversationID)
	m, ok := s.cursors[key]
	if !ok {
		m = &models.Membership{
			ID:             primitive.NewObjectID().Hex(),
			UserID:         userID,
			ConversationID: conversationID,
		}
		s.cursors[key] = m
	}
	m.LastReadTime = lastRead.UTC()
	return nil
}

func (s *MemoryMembers) Find(_ context.Context, userID, conversationID string) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.cursors[memberKey(userID, conversationID)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *m
	return &cp, nil
}
