package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore tracks issued tokens and sign-in throttling state in Redis.
// Revoking a token on sign-out removes it here, which invalidates it before
// its JWT expiry.
type SessionStore interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	UserID(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	CountAttempt(ctx context.Context, email string, window time.Duration) (int64, error)
	ResetAttempts(ctx context.Context, email string) error
}

type sessionStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionStore wires a Redis-backed session store.
func NewSessionStore(r *Redis) SessionStore {
	return &sessionStore{client: r.Client(), logger: r.logger}
}

func sessionKey(token string) string { return "session:" + token }
func attemptKey(email string) string { return "login_attempts:" + email }

// Put registers an issued token for its lifetime.
func (s *sessionStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// UserID resolves a live token to its user, or "" when revoked/expired.
func (s *sessionStore) UserID(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	return userID, nil
}

// Revoke drops a session immediately.
func (s *sessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// CountAttempt records one failed sign-in and returns the total inside the
// current window.
func (s *sessionStore) CountAttempt(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := attemptKey(email)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("count sign-in attempt: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			s.logger.Warn("failed to set attempt window", zap.String("key", key), zap.Error(err))
		}
	}
	return count, nil
}

// ResetAttempts clears the throttle counter after a successful sign-in.
func (s *sessionStore) ResetAttempts(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, attemptKey(email)).Err(); err != nil {
		return fmt.Errorf("reset sign-in attempts: %w", err)
	}
	return nil
}
