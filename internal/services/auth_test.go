package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timecapsule-app/backend/internal/models"
)

type fakeSessionStore struct {
	tokens  map[string]string // token -> userID
	counter int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{tokens: map[string]string{}}
}

func (s *fakeSessionStore) Create(ctx context.Context, userID string) (string, error) {
	// One live session per user: drop older tokens first.
	for token, uid := range s.tokens {
		if uid == userID {
			delete(s.tokens, token)
		}
	}
	s.counter++
	token := "token-" + string(rune('a'+s.counter))
	s.tokens[token] = userID
	return token, nil
}

func (s *fakeSessionStore) Validate(ctx context.Context, token string) (string, bool, error) {
	uid, ok := s.tokens[token]
	return uid, ok, nil
}

func (s *fakeSessionStore) Invalidate(ctx context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}

func TestSignUpCreatesProfileAndSession(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, newFakeSessionStore())

	user, token, err := svc.SignUp(context.Background(), " New@Example.COM ", "hunter22")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)
	assert.Equal(t, "new@example.com", user.Email, "email normalized")
	assert.Equal(t, user.Email, user.DisplayName, "display name derived from email")
	assert.NotEqual(t, "hunter22", user.Password, "password stored hashed")
	assert.Contains(t, users.users, user.ID)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, newFakeSessionStore())
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "dup@example.com", "first")
	require.NoError(t, err)

	_, _, err = svc.SignUp(ctx, "dup@example.com", "second")
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestSignInAndCurrentUser(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionStore()
	svc := NewAuthService(users, sessions)
	ctx := context.Background()

	signedUp, _, err := svc.SignUp(ctx, "me@example.com", "hunter22")
	require.NoError(t, err)

	user, token, err := svc.SignIn(ctx, "me@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, signedUp.ID, user.ID)

	current, err := svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, signedUp.ID, current.ID)
}

func TestSignInWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, newFakeSessionStore())
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "me@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "me@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrBadCredentials)
}

func TestSignInUnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), newFakeSessionStore())

	_, _, err := svc.SignIn(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, models.ErrBadCredentials, "unknown email is indistinguishable from a bad password")
}

func TestSignOutInvalidatesSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionStore()
	svc := NewAuthService(users, sessions)
	ctx := context.Background()

	_, token, err := svc.SignUp(ctx, "me@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, token))

	_, err = svc.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestCurrentUserWithoutSession(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), newFakeSessionStore())

	_, err := svc.CurrentUser(context.Background(), "bogus")
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}
