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

type mongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(coll *mongo.Collection) Users {
	return &mongoUsers{coll: coll}
}

func (r *mongoUsers) Upsert(ctx context.Context, externalID, name, email, imageURL string, at time.Time) (*models.User, error) {
	filter := bson.M{"external_id": externalID}
	update := bson.M{
		"$set": bson.M{
			"name":      name,
			"email":     email,
			"image_url": imageURL,
		},
		// external_id comes from the filter on the upsert path; repeating
		// it here would conflict.
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"created_at": at.UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUsers) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUsers) ListExcept(ctx context.Context, externalID string) ([]*models.User, error) {
	filter := bson.M{"external_id": bson.M{"$ne": externalID}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

func (r *mongoUsers) SetPresence(ctx context.Context, externalID string, online bool, at time.Time) error {
	// Zero matches is fine: presence before the profile sync landed.
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"external_id": externalID},
		bson.M{"$set": bson.M{"is_online": online, "last_seen": at.UTC()}},
	)
	return err
}
