package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timecapsule-app/backend/internal/models"
	"github.com/timecapsule-app/backend/internal/repository"
	"github.com/timecapsule-app/backend/pkg/utils"
)

// SessionStore issues and resolves session tokens.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Validate(ctx context.Context, token string) (string, bool, error)
	Invalidate(ctx context.Context, token string) error
}

// AuthService is the identity provider: it authenticates users and
// creates their profile document on signup.
type AuthService struct {
	users    repository.UserRepository
	sessions SessionStore
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, sessions SessionStore) *AuthService {
	return &AuthService{users: users, sessions: sessions, now: time.Now}
}

// SignUp registers a new account and opens a session. The profile
// document is created alongside the credentials; the display name is
// derived from the email.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:          uuid.NewString(),
		CreatedAt:   s.now().UTC(),
		Email:       email,
		DisplayName: email,
		Password:    hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SignIn verifies credentials and rotates the user's session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.ByEmail(ctx, email)
	if err == models.ErrNotFound {
		return nil, "", models.ErrBadCredentials
	}
	if err != nil {
		return nil, "", err
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, "", models.ErrBadCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SignOut invalidates the session behind the given token.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessions.Invalidate(ctx, token)
}

// CurrentUser resolves a session token to the authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	userID, ok, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrNotAuthenticated
	}
	return s.users.ByID(ctx, userID)
}
