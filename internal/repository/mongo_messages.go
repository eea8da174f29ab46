package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourorg/chat-app/services/dm-service/internal/apperrors"
	"github.com/yourorg/chat-app/services/dm-service/internal/models"
)

type mongoMessages struct {
	coll *mongo.Collection
}

func NewMongoMessages(coll *mongo.Collection) Messages {
	return &mongoMessages{coll: coll}
}

func (r *mongoMessages) Insert(ctx context.Context, m *models.Message) (*models.Message, error) {
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	m.CreatedAt = m.CreatedAt.UTC()
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *mongoMessages) ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error) {
	// _id is a generated ObjectID hex, so it tie-breaks equal timestamps
	// in insertion order.
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := r.coll.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *mongoMessages) CountUnread(ctx context.Context, conversationID, userID string, after *time.Time) (int, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"sender_id":       bson.M{"$ne": userID},
	}
	if after != nil {
		filter["created_at"] = bson.M{"$gt": after.UTC()}
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

type mongoMembers struct {
	coll *mongo.Collection
}

func NewMongoMembers(coll *mongo.Collection) Members {
	return &mongoMembers{coll: coll}
}

func (r *mongoMembers) Upsert(ctx context.Context, userID, conversationID string, lastRead time.Time) error {
	filter := bson.M{"user_id": userID, "conversation_id": conversationID}
	update := bson.M{
		"$set":         bson.M{"last_read_time": lastRead.UTC()},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID().Hex()},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoMembers) Find(ctx context.Context, userID, conversationID string) (*models.Membership, error) {
	var m models.Membership
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "conversation_id": conversationID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
