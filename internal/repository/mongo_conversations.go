package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
	"github.com/yourorg/chat-app/services/dm-service/internal/models"
)

type mongoConversations struct {
	coll *mongo.Collection
}

func NewMongoConversations(coll *mongo.Collection) Conversations {
	return &mongoConversations{coll: coll}
}

func (r *mongoConversations) GetOrCreate(ctx context.Context, a, b string, at time.Time) (*models.Conversation, error) {
	key := models.PairKey(a, b)

	var existing models.Conversation
	err := r.coll.FindOne(ctx, bson.M{"pair_key": key}).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	conv := &models.Conversation{
		ID:             primitive.NewObjectID().Hex(),
		ParticipantOne: a,
		ParticipantTwo: b,
		PairKey:        key,
		CreatedAt:      at.UTC(),
	}
	_, err = r.coll.InsertOne(ctx, conv)
	if err == nil {
		return conv, nil
	}
	// Lost the insert race: the unique pair_key index rejected us, so the
	// winner's row must exist now.
	if mongo.IsDuplicateKeyError(err) {
		if ferr := r.coll.FindOne(ctx, bson.M{"pair_key": key}).Decode(&existing); ferr == nil {
			return &existing, nil
		}
	}
	return nil, err
}

func (r *mongoConversations) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mongoConversations) ListByParticipant(ctx context.Context, userID string) ([]*models.Conversation, error) {
	filter := bson.M{"$or": []bson.M{
		{"participant_one": userID},
		{"participant_two": userID},
	}}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Conversation
	for cur.Next(ctx) {
		var c models.Conversation
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *mongoConversations) RecordMessage(ctx context.Context, conversationID, preview string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{
			"last_message_preview": preview,
			"last_message_time":    at.UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
