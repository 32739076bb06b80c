// Package repository defines the persistence boundary. Each entity gets
// a small interface so services can be exercised against in-memory
// fakes instead of a live MongoDB.
package repository

import (
	"context"
	"time"

	"github.com/timecapsule-app/backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

type CapsuleRepository interface {
	Insert(ctx context.Context, c models.Capsule) error
	ByID(ctx context.Context, id string) (models.Capsule, error)
	Delete(ctx context.Context, id string) error
	SetSaved(ctx context.Context, id string, saved bool) error
	// List queries sort ascending by unlock date and silently skip
	// documents missing required fields.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Capsule, error)
	ListBySender(ctx context.Context, senderID string) ([]models.Capsule, error)
	ListSavedByOwner(ctx context.Context, ownerID string) ([]models.Capsule, error)
}

type FriendRepository interface {
	// UpsertRequest writes a pending request keyed (recipient,
	// requester); a retry or re-send overwrites the existing record.
	UpsertRequest(ctx context.Context, recipientID, requesterID string, now time.Time) error
	// AcceptRequest marks the pending request accepted and writes both
	// symmetric friendship records with the same since timestamp, all
	// inside one transaction. Returns models.ErrNotFound when no
	// pending request exists; resolved requests never go back to
	// pending.
	AcceptRequest(ctx context.Context, recipientID, requesterID string, now time.Time) error
	// DeclineRequest marks the pending request declined and writes no
	// friendship records.
	DeclineRequest(ctx context.Context, recipientID, requesterID string, now time.Time) error
	ListPendingRequests(ctx context.Context, recipientID string) ([]models.FriendRequest, error)
	AreFriends(ctx context.Context, a, b string) (bool, error)
	// RemoveFriendship deletes both symmetric records in one
	// transaction.
	RemoveFriendship(ctx context.Context, a, b string) error
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)
}
