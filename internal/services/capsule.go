package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/timecapsule-app/backend/internal/models"
	"github.com/timecapsule-app/backend/internal/repository"
)

// CapsuleService owns capsule creation, the owner/sender bucket
// queries, and the saved/delete mutations.
type CapsuleService struct {
	capsules repository.CapsuleRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewCapsuleService(capsules repository.CapsuleRepository, users repository.UserRepository) *CapsuleService {
	return &CapsuleService{capsules: capsules, users: users, now: time.Now}
}

type CreateCapsuleInput struct {
	Title       string
	Message     string
	UnlockDate  time.Time
	RecipientID string // empty means the caller keeps the capsule
	ImageURL    string // set by the client after a prior upload call
}

// CapsuleBuckets is what a user sees: their own capsules, ones friends
// sent them, and ones they sent to friends. Each bucket is sorted
// ascending by unlock date.
type CapsuleBuckets struct {
	Personal []models.Capsule `json:"personal"`
	Received []models.Capsule `json:"received"`
	Sent     []models.Capsule `json:"sent"`
}

// Create stamps and persists a new capsule. When the recipient is
// someone else, the caller becomes the sender and their email is
// snapshotted onto the capsule. No validation of the text or the unlock
// date happens here; a past date simply yields an already-unlocked
// capsule.
func (s *CapsuleService) Create(ctx context.Context, callerID string, in CreateCapsuleInput) (models.Capsule, error) {
	recipientID := in.RecipientID
	if recipientID == "" {
		recipientID = callerID
	}

	c := models.Capsule{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Message:    in.Message,
		UnlockDate: in.UnlockDate.UTC(),
		OwnerID:    recipientID,
		ImageURL:   in.ImageURL,
	}

	if recipientID != callerID {
		sender, err := s.users.ByID(ctx, callerID)
		if err != nil {
			return models.Capsule{}, err
		}
		if _, err := s.users.ByID(ctx, recipientID); err != nil {
			return models.Capsule{}, err
		}
		c.SenderID = sender.ID
		c.SenderEmail = sender.Email
	}

	if err := s.capsules.Insert(ctx, c); err != nil {
		return models.Capsule{}, err
	}
	return c, nil
}

// Buckets runs the two store queries (owner-is-me, sender-is-me) and
// partitions the owned set into personal and received. Two queries
// because the store's query model is single-field equality; there is no
// OR across owner_id and sender_id.
func (s *CapsuleService) Buckets(ctx context.Context, userID string) (CapsuleBuckets, error) {
	owned, err := s.capsules.ListByOwner(ctx, userID)
	if err != nil {
		return CapsuleBuckets{}, err
	}
	sent, err := s.capsules.ListBySender(ctx, userID)
	if err != nil {
		return CapsuleBuckets{}, err
	}

	personal, received := models.PartitionOwned(owned)
	return CapsuleBuckets{
		Personal: emptyIfNil(personal),
		Received: emptyIfNil(received),
		Sent:     emptyIfNil(sent),
	}, nil
}

// Saved returns the owner's bookmarked capsules.
func (s *CapsuleService) Saved(ctx context.Context, userID string) ([]models.Capsule, error) {
	return s.capsules.ListSavedByOwner(ctx, userID)
}

// ToggleSaved flips the bookmark flag. Only the owner may toggle.
func (s *CapsuleService) ToggleSaved(ctx context.Context, callerID, capsuleID string) (models.Capsule, error) {
	c, err := s.capsules.ByID(ctx, capsuleID)
	if err != nil {
		return models.Capsule{}, err
	}
	if c.OwnerID != callerID {
		return models.Capsule{}, models.ErrForbidden
	}
	c.IsSaved = !c.IsSaved
	if err := s.capsules.SetSaved(ctx, capsuleID, c.IsSaved); err != nil {
		return models.Capsule{}, err
	}
	return c, nil
}

// Delete removes a capsule. Only the owner may delete; content is never
// edited after creation, deletion is the only other mutation.
func (s *CapsuleService) Delete(ctx context.Context, callerID, capsuleID string) error {
	c, err := s.capsules.ByID(ctx, capsuleID)
	if err != nil {
		return err
	}
	if c.OwnerID != callerID {
		return models.ErrForbidden
	}
	return s.capsules.Delete(ctx, capsuleID)
}

// Now exposes the service clock so handlers can report unlock state
// consistently with it.
func (s *CapsuleService) Now() time.Time {
	return s.now()
}

func emptyIfNil(caps []models.Capsule) []models.Capsule {
	if caps == nil {
		return []models.Capsule{}
	}
	return caps
}
