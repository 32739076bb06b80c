package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/timecapsule-app/backend/internal/models"
)

type mongoCapsuleRepo struct {
	col *mongo.Collection
}

func NewCapsuleRepository(db *mongo.Database) CapsuleRepository {
	return &mongoCapsuleRepo{col: db.Collection("capsules")}
}

func (r *mongoCapsuleRepo) Insert(ctx context.Context, c models.Capsule) error {
	_, err := r.col.InsertOne(ctx, c.ToDoc())
	return err
}

func (r *mongoCapsuleRepo) ByID(ctx context.Context, id string) (models.Capsule, error) {
	var doc bson.M
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Capsule{}, models.ErrNotFound
	}
	if err != nil {
		return models.Capsule{}, err
	}
	c, ok := models.CapsuleFromDoc(doc)
	if !ok {
		// Corrupt record: treat as absent rather than surfacing a
		// partial capsule.
		return models.Capsule{}, models.ErrNotFound
	}
	return c, nil
}

func (r *mongoCapsuleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *mongoCapsuleRepo) SetSaved(ctx context.Context, id string, saved bool) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_saved": saved}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *mongoCapsuleRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Capsule, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID})
}

func (r *mongoCapsuleRepo) ListBySender(ctx context.Context, senderID string) ([]models.Capsule, error) {
	return r.list(ctx, bson.M{"sender_id": senderID})
}

func (r *mongoCapsuleRepo) ListSavedByOwner(ctx context.Context, ownerID string) ([]models.Capsule, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID, "is_saved": true})
}

func (r *mongoCapsuleRepo) list(ctx context.Context, filter bson.M) ([]models.Capsule, error) {
	findOptions := options.Find().SetSort(bson.M{"unlock_date": 1})
	cursor, err := r.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	capsules := []models.Capsule{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		c, ok := models.CapsuleFromDoc(doc)
		if !ok {
			// Malformed documents are dropped, not surfaced.
			continue
		}
		capsules = append(capsules, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return capsules, nil
}
