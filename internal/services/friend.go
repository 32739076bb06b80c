package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/timecapsule-app/backend/internal/models"
	"github.com/timecapsule-app/backend/internal/repository"
)

// FriendService drives the request lifecycle (pending -> accepted or
// declined, never back) and the symmetric friendship records behind it.
type FriendService struct {
	friends repository.FriendRepository
	users   repository.UserRepository
	now     func() time.Time
}

func NewFriendService(friends repository.FriendRepository, users repository.UserRepository) *FriendService {
	return &FriendService{friends: friends, users: users, now: time.Now}
}

// SendRequest writes a pending request under the recipient keyed by the
// requester. Re-sending overwrites the existing record. Requests to an
// existing friend are rejected outright.
func (s *FriendService) SendRequest(ctx context.Context, requesterID, recipientID string) error {
	if requesterID == recipientID {
		return models.ErrSelfRequest
	}
	if _, err := s.users.ByID(ctx, recipientID); err != nil {
		return err
	}
	already, err := s.friends.AreFriends(ctx, requesterID, recipientID)
	if err != nil {
		return err
	}
	if already {
		return models.ErrAlreadyFriends
	}
	return s.friends.UpsertRequest(ctx, recipientID, requesterID, s.now())
}

// Respond resolves a pending request addressed to recipientID.
// Accepting materializes the friendship in both directions; declining
// leaves no friendship records.
func (s *FriendService) Respond(ctx context.Context, recipientID, requesterID string, accept bool) error {
	if accept {
		return s.friends.AcceptRequest(ctx, recipientID, requesterID, s.now())
	}
	return s.friends.DeclineRequest(ctx, recipientID, requesterID, s.now())
}

// RemoveFriend tears down both sides of the relationship.
func (s *FriendService) RemoveFriend(ctx context.Context, selfID, otherID string) error {
	return s.friends.RemoveFriendship(ctx, selfID, otherID)
}

// Friends lists the user's friends as resolved user records.
func (s *FriendService) Friends(ctx context.Context, userID string) ([]models.User, error) {
	ids, err := s.friends.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveUsers(ctx, ids), nil
}

// Requests lists the user's pending incoming requests along with the
// resolved requester records for display.
func (s *FriendService) Requests(ctx context.Context, userID string) ([]models.FriendRequest, []models.User, error) {
	requests, err := s.friends.ListPendingRequests(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.RequesterID)
	}
	return requests, s.resolveUsers(ctx, ids), nil
}

// SearchByEmail finds a user by exact email, for picking a request
// recipient.
func (s *FriendService) SearchByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// resolveUsers fans out one point lookup per id and joins on a barrier:
// the combined list is delivered only after every lookup has finished.
// Individual failures drop that user from the result instead of failing
// the whole batch. Input order is preserved.
func (s *FriendService) resolveUsers(ctx context.Context, ids []string) []models.User {
	slots := make([]*models.User, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			user, err := s.users.ByID(ctx, id)
			if err != nil {
				return
			}
			slots[i] = user
		}(i, id)
	}
	wg.Wait()

	users := make([]models.User, 0, len(ids))
	for _, u := range slots {
		if u != nil {
			users = append(users, u.Public())
		}
	}
	return users
}
