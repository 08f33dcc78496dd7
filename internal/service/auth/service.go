package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/legnamegusta-ctrl/apporgania/internal/config"
	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/cache"
	"github.com/legnamegusta-ctrl/apporgania/internal/repository/mongodb"
)

// Service authenticates users and tracks live sessions. Auth-state changes
// (sign-in, sign-out) are pushed to subscribers, who receive an unsubscribe
// handle and are responsible for releasing it on teardown.
type Service struct {
	users    mongodb.UserRepository
	sessions cache.SessionStore
	cfg      config.AuthConfig
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	subs    map[int]func(*models.Session)
	nextSub int
}

// NewService wires a new auth service instance.
func NewService(users mongodb.UserRepository, sessions cache.SessionStore, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		subs:     make(map[int]func(*models.Session)),
	}
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignIn validates the credential and issues a session token. Failures map
// onto the sentinel taxonomy: ErrUnknownUser, ErrInvalidCredential,
// ErrRateLimited, ErrNetworkUnavailable.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		// Unknown emails count against the throttle too, so enumeration
		// attempts are limited the same way as password guessing.
		if limited := s.recordFailure(ctx, email); limited {
			return nil, models.ErrRateLimited
		}
		return nil, models.ErrUnknownUser
	}
	if err != nil {
		s.logger.Error("user lookup failed", zap.Error(err))
		return nil, models.ErrNetworkUnavailable
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if limited := s.recordFailure(ctx, email); limited {
			return nil, models.ErrRateLimited
		}
		return nil, models.ErrInvalidCredential
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := tokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, models.NewFetchError("sign token", err)
	}

	if err := s.sessions.Put(ctx, token, user.ID, s.cfg.TokenTTL); err != nil {
		s.logger.Error("session store failed", zap.Error(err))
		return nil, models.ErrNetworkUnavailable
	}

	if err := s.sessions.ResetAttempts(ctx, email); err != nil {
		s.logger.Warn("reset sign-in attempts failed", zap.String("email", email), zap.Error(err))
	}
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("touch last login failed", zap.String("user", user.ID), zap.Error(err))
	}

	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	}

	s.notify(session)
	return session, nil
}

// SignOut revokes the session token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}
	s.notify(nil)
	return nil
}

// Verify resolves a bearer token into its session, checking signature,
// expiry and revocation.
func (s *Service) Verify(ctx context.Context, token string) (*models.Session, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, models.ErrInvalidCredential
	}

	userID, err := s.sessions.UserID(ctx, token)
	if err != nil {
		s.logger.Error("session lookup failed", zap.Error(err))
		return nil, models.ErrNetworkUnavailable
	}
	if userID == "" || userID != claims.Subject {
		return nil, models.ErrInvalidCredential
	}

	user, err := s.users.Get(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnknownUser
	}
	if err != nil {
		return nil, models.ErrNetworkUnavailable
	}

	return &models.Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Subscribe registers a callback for auth-state changes: it receives the new
// session on sign-in and nil on sign-out. The returned handle releases the
// subscription.
func (s *Service) Subscribe(fn func(*models.Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(session *models.Session) {
	s.mu.Lock()
	subs := make([]func(*models.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

// recordFailure bumps the throttle counter and reports whether the caller is
// now rate limited.
func (s *Service) recordFailure(ctx context.Context, email string) bool {
	count, err := s.sessions.CountAttempt(ctx, email, s.cfg.LoginWindow)
	if err != nil {
		s.logger.Warn("sign-in attempt count failed", zap.String("email", email), zap.Error(err))
		return false
	}
	return count > int64(s.cfg.MaxLoginAttempts)
}
