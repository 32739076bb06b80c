package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect establishes the MongoDB connection and returns the client and
// the database handle. Callers hand the handles to the repositories
// instead of reaching a package-level singleton, so tests can substitute
// fakes.
func Connect(mongoURI string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}

	db := client.Database(databaseName(mongoURI))
	log.Println("Connected to MongoDB")
	return client, db, nil
}

// databaseName extracts the database name from the connection string,
// falling back to "timecapsule".
func databaseName(mongoURI string) string {
	name := "timecapsule"
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			name = dbPart
		}
	}
	return name
}

func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes configures the indexes the capsule and social-graph
// queries rely on. Called once on startup after Mongo has connected.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_email_unique"),
			},
		},
		"capsules": {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "unlock_date", Value: 1}},
				Options: options.Index().SetName("idx_owner_unlock"),
			},
			{
				Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "unlock_date", Value: 1}},
				Options: options.Index().SetName("idx_sender_unlock"),
			},
		},
		"friends": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "friend_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_friend_pair"),
			},
		},
		"friend_requests": {
			// One outstanding request per (recipient, requester); a
			// re-send overwrites instead of duplicating.
			{
				Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "requester_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_request_pair"),
			},
		},
	}

	for collection, collectionIndexes := range indexes {
		for _, m := range collectionIndexes {
			if _, err := db.Collection(collection).Indexes().CreateOne(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}
