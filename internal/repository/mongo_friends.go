package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/timecapsule-app/backend/internal/models"
)

type mongoFriendRepo struct {
	client   *mongo.Client
	requests *mongo.Collection
	friends  *mongo.Collection
}

// NewFriendRepository needs the client as well as the database because
// the accept and remove paths run multi-document transactions.
func NewFriendRepository(client *mongo.Client, db *mongo.Database) FriendRepository {
	return &mongoFriendRepo{
		client:   client,
		requests: db.Collection("friend_requests"),
		friends:  db.Collection("friends"),
	}
}

func (r *mongoFriendRepo) UpsertRequest(ctx context.Context, recipientID, requesterID string, now time.Time) error {
	filter := bson.M{"recipient_id": recipientID, "requester_id": requesterID}
	update := bson.M{
		"$set": bson.M{
			"status":     models.RequestPending,
			"updated_at": now.UTC(),
		},
		"$setOnInsert": bson.M{
			"recipient_id": recipientID,
			"requester_id": requesterID,
			"created_at":   now.UTC(),
		},
	}
	_, err := r.requests.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// execTx runs fn inside a single MongoDB transaction.
func (r *mongoFriendRepo) execTx(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (r *mongoFriendRepo) AcceptRequest(ctx context.Context, recipientID, requesterID string, now time.Time) error {
	since := now.UTC()
	return r.execTx(ctx, func(sc mongo.SessionContext) error {
		if err := r.resolveRequest(sc, recipientID, requesterID, models.RequestAccepted, since); err != nil {
			return err
		}
		// Both directions land together or not at all; a partial pair
		// would leave the friendship visible to only one side.
		for _, pair := range [][2]string{{recipientID, requesterID}, {requesterID, recipientID}} {
			filter := bson.M{"user_id": pair[0], "friend_id": pair[1]}
			update := bson.M{"$set": bson.M{"since": since}}
			if _, err := r.friends.UpdateOne(sc, filter, update, options.Update().SetUpsert(true)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *mongoFriendRepo) DeclineRequest(ctx context.Context, recipientID, requesterID string, now time.Time) error {
	return r.resolveRequest(ctx, recipientID, requesterID, models.RequestDeclined, now.UTC())
}

// resolveRequest moves a pending request to its terminal status. The
// pending filter is what prevents a resolved request from being
// resolved again or reopened.
func (r *mongoFriendRepo) resolveRequest(ctx context.Context, recipientID, requesterID string, status models.RequestStatus, now time.Time) error {
	filter := bson.M{
		"recipient_id": recipientID,
		"requester_id": requesterID,
		"status":       models.RequestPending,
	}
	res, err := r.requests.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": status, "updated_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *mongoFriendRepo) ListPendingRequests(ctx context.Context, recipientID string) ([]models.FriendRequest, error) {
	filter := bson.M{"recipient_id": recipientID, "status": models.RequestPending}
	cursor, err := r.requests.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *mongoFriendRepo) AreFriends(ctx context.Context, a, b string) (bool, error) {
	count, err := r.friends.CountDocuments(ctx, bson.M{"user_id": a, "friend_id": b})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoFriendRepo) RemoveFriendship(ctx context.Context, a, b string) error {
	return r.execTx(ctx, func(sc mongo.SessionContext) error {
		for _, pair := range [][2]string{{a, b}, {b, a}} {
			if _, err := r.friends.DeleteOne(sc, bson.M{"user_id": pair[0], "friend_id": pair[1]}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *mongoFriendRepo) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	cursor, err := r.friends.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.M{"since": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var f models.Friendship
		if err := cursor.Decode(&f); err != nil {
			continue
		}
		ids = append(ids, f.FriendID)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
