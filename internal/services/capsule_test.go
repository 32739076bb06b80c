package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timecapsule-app/backend/internal/models"
)

type fakeCapsuleRepo struct {
	capsules map[string]models.Capsule
}

func newFakeCapsuleRepo() *fakeCapsuleRepo {
	return &fakeCapsuleRepo{capsules: map[string]models.Capsule{}}
}

func (r *fakeCapsuleRepo) Insert(ctx context.Context, c models.Capsule) error {
	r.capsules[c.ID] = c
	return nil
}

func (r *fakeCapsuleRepo) ByID(ctx context.Context, id string) (models.Capsule, error) {
	c, ok := r.capsules[id]
	if !ok {
		return models.Capsule{}, models.ErrNotFound
	}
	return c, nil
}

func (r *fakeCapsuleRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.capsules[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.capsules, id)
	return nil
}

func (r *fakeCapsuleRepo) SetSaved(ctx context.Context, id string, saved bool) error {
	c, ok := r.capsules[id]
	if !ok {
		return models.ErrNotFound
	}
	c.IsSaved = saved
	r.capsules[id] = c
	return nil
}

func (r *fakeCapsuleRepo) list(match func(models.Capsule) bool) []models.Capsule {
	out := []models.Capsule{}
	for _, c := range r.capsules {
		if match(c) {
			out = append(out, c)
		}
	}
	models.SortByUnlockDate(out)
	return out
}

func (r *fakeCapsuleRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Capsule, error) {
	return r.list(func(c models.Capsule) bool { return c.OwnerID == ownerID }), nil
}

func (r *fakeCapsuleRepo) ListBySender(ctx context.Context, senderID string) ([]models.Capsule, error) {
	return r.list(func(c models.Capsule) bool { return c.SenderID == senderID }), nil
}

func (r *fakeCapsuleRepo) ListSavedByOwner(ctx context.Context, ownerID string) ([]models.Capsule, error) {
	return r.list(func(c models.Capsule) bool { return c.OwnerID == ownerID && c.IsSaved }), nil
}

func newCapsuleService(capsules *fakeCapsuleRepo, users *fakeUserRepo) *CapsuleService {
	svc := NewCapsuleService(capsules, users)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreatePersonalCapsule(t *testing.T) {
	repo := newFakeCapsuleRepo()
	svc := newCapsuleService(repo, newFakeUserRepo(models.User{ID: "u1", Email: "me@example.com"}))

	c, err := svc.Create(context.Background(), "u1", CreateCapsuleInput{
		Title:      "to future me",
		Message:    "hello",
		UnlockDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "u1", c.OwnerID)
	assert.Empty(t, c.SenderID, "self-authored capsule has no sender")
	assert.Empty(t, c.SenderEmail)
	assert.False(t, c.IsSaved)
	assert.Contains(t, repo.capsules, c.ID)
}

func TestCreateGiftStampsSenderSnapshot(t *testing.T) {
	repo := newFakeCapsuleRepo()
	users := newFakeUserRepo(
		models.User{ID: "u1", Email: "me@example.com"},
		models.User{ID: "u2", Email: "friend@example.com"},
	)
	svc := newCapsuleService(repo, users)

	c, err := svc.Create(context.Background(), "u1", CreateCapsuleInput{
		Title:       "surprise",
		Message:     "happy birthday",
		UnlockDate:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		RecipientID: "u2",
	})
	require.NoError(t, err)

	assert.Equal(t, "u2", c.OwnerID, "recipient owns the capsule")
	assert.Equal(t, "u1", c.SenderID)
	assert.Equal(t, "me@example.com", c.SenderEmail, "sender email snapshotted at creation")
	assert.True(t, c.IsGift())
}

func TestCreateGiftUnknownRecipient(t *testing.T) {
	svc := newCapsuleService(newFakeCapsuleRepo(), newFakeUserRepo(models.User{ID: "u1"}))

	_, err := svc.Create(context.Background(), "u1", CreateCapsuleInput{
		Title:       "x",
		Message:     "y",
		UnlockDate:  time.Now(),
		RecipientID: "nobody",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateAcceptsPastUnlockDate(t *testing.T) {
	repo := newFakeCapsuleRepo()
	svc := newCapsuleService(repo, newFakeUserRepo(models.User{ID: "u1"}))

	now := svc.Now()
	c, err := svc.Create(context.Background(), "u1", CreateCapsuleInput{
		Title:      "already open",
		Message:    "no validation of past dates",
		UnlockDate: now.Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, c.IsUnlocked(now), "past unlock date yields an immediately unlocked capsule")
}

func TestBucketsPartitioning(t *testing.T) {
	repo := newFakeCapsuleRepo()
	users := newFakeUserRepo(models.User{ID: "u1"}, models.User{ID: "u2"})
	svc := newCapsuleService(repo, users)
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	// A: owner=u1, no sender. B: owner=u1, sender=u2. C: owner=u2, sender=u1.
	repo.capsules["A"] = models.Capsule{ID: "A", OwnerID: "u1", UnlockDate: base}
	repo.capsules["B"] = models.Capsule{ID: "B", OwnerID: "u1", SenderID: "u2", UnlockDate: base.Add(time.Hour)}
	repo.capsules["C"] = models.Capsule{ID: "C", OwnerID: "u2", SenderID: "u1", UnlockDate: base.Add(2 * time.Hour)}

	buckets, err := svc.Buckets(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, buckets.Personal, 1)
	assert.Equal(t, "A", buckets.Personal[0].ID)
	require.Len(t, buckets.Received, 1)
	assert.Equal(t, "B", buckets.Received[0].ID)
	require.Len(t, buckets.Sent, 1)
	assert.Equal(t, "C", buckets.Sent[0].ID)
}

func TestBucketsSortedByUnlockDate(t *testing.T) {
	repo := newFakeCapsuleRepo()
	svc := newCapsuleService(repo, newFakeUserRepo(models.User{ID: "u1"}))
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	repo.capsules["late"] = models.Capsule{ID: "late", OwnerID: "u1", UnlockDate: base.Add(time.Hour)}
	repo.capsules["early"] = models.Capsule{ID: "early", OwnerID: "u1", UnlockDate: base}

	buckets, err := svc.Buckets(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, buckets.Personal, 2)
	assert.Equal(t, "early", buckets.Personal[0].ID)
	assert.Equal(t, "late", buckets.Personal[1].ID)
}

func TestToggleSaved(t *testing.T) {
	repo := newFakeCapsuleRepo()
	svc := newCapsuleService(repo, newFakeUserRepo(models.User{ID: "u1"}))
	repo.capsules["cap"] = models.Capsule{ID: "cap", OwnerID: "u1"}

	c, err := svc.ToggleSaved(context.Background(), "u1", "cap")
	require.NoError(t, err)
	assert.True(t, c.IsSaved)
	assert.True(t, repo.capsules["cap"].IsSaved, "flip persisted")

	c, err = svc.ToggleSaved(context.Background(), "u1", "cap")
	require.NoError(t, err)
	assert.False(t, c.IsSaved)
}

func TestToggleSavedNotOwner(t *testing.T) {
	repo := newFakeCapsuleRepo()
	svc := newCapsuleService(repo, newFakeUserRepo(models.User{ID: "u2"}))
	repo.capsules["cap"] = models.Capsule{ID: "cap", OwnerID: "u1"}

	_, err := svc.ToggleSaved(context.Background(), "u2", "cap")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestSavedListsOnlyBookmarked(t *testing.T) {
	repo := newFakeCapsuleRepo()
	svc := newCapsuleService(repo, newFakeUserRepo(models.User{ID: "u1"}))

	repo.capsules["a"] = models.Capsule{ID: "a", OwnerID: "u1", IsSaved: true}
	repo.capsules["b"] = models.Capsule{ID: "b", OwnerID: "u1"}
	repo.capsules["c"] = models.Capsule{ID: "c", OwnerID: "u2", IsSaved: true}

	saved, err := svc.Saved(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "a", saved[0].ID)
}

func TestDeleteCapsule(t *testing.T) {
	repo := newFakeCapsuleRepo()
	svc := newCapsuleService(repo, newFakeUserRepo(models.User{ID: "u1"}))
	repo.capsules["cap"] = models.Capsule{ID: "cap", OwnerID: "u1"}

	require.NoError(t, svc.Delete(context.Background(), "u1", "cap"))
	assert.NotContains(t, repo.capsules, "cap")
}

func TestDeleteCapsuleNotOwner(t *testing.T) {
	repo := newFakeCapsuleRepo()
	svc := newCapsuleService(repo, newFakeUserRepo(models.User{ID: "u2"}))
	repo.capsules["cap"] = models.Capsule{ID: "cap", OwnerID: "u1"}

	err := svc.Delete(context.Background(), "u2", "cap")
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.Contains(t, repo.capsules, "cap")
}

func TestDeleteMissingCapsule(t *testing.T) {
	svc := newCapsuleService(newFakeCapsuleRepo(), newFakeUserRepo())

	err := svc.Delete(context.Background(), "u1", "gone")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
