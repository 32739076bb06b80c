package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// SessionManager stores opaque bearer tokens in Redis. A user has at
// most one live session; logging in again rotates the token and resets
// the 7-day timer.
type SessionManager struct {
	redis *redis.Client
}

func NewSessionManager(client *redis.Client) *SessionManager {
	return &SessionManager{redis: client}
}

// Create issues a new session token for a user, invalidating any
// existing one first.
func (m *SessionManager) Create(ctx context.Context, userID string) (string, error) {
	m.InvalidateUser(ctx, userID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	if err := m.redis.Set(ctx, SessionKeyPrefix+token, userID, SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := m.redis.Set(ctx, UserSessionKeyPrefix+userID, token, SessionDuration).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a session token to the user it belongs to.
func (m *SessionManager) Validate(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	userID, err := m.redis.Get(ctx, SessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

// Invalidate removes a session by token.
func (m *SessionManager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	userID, err := m.redis.Get(ctx, SessionKeyPrefix+token).Result()
	if err == nil && userID != "" {
		m.redis.Del(ctx, UserSessionKeyPrefix+userID)
	}
	return m.redis.Del(ctx, SessionKeyPrefix+token).Err()
}

// InvalidateUser removes whatever session the user currently holds.
func (m *SessionManager) InvalidateUser(ctx context.Context, userID string) error {
	token, err := m.redis.Get(ctx, UserSessionKeyPrefix+userID).Result()
	if err == nil && token != "" {
		m.redis.Del(ctx, SessionKeyPrefix+token)
	}
	return m.redis.Del(ctx, UserSessionKeyPrefix+userID).Err()
}
