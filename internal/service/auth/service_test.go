package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/legnamegusta-ctrl/apporgania/internal/config"
	"github.com/legnamegusta-ctrl/apporgania/internal/domain/models"
)

type fakeUserRepo struct {
	users     map[string]models.User // keyed by email
	lookupErr error
	lastLogin map[string]time.Time
}

func (f *fakeUserRepo) Get(_ context.Context, id string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u, ok := f.users[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	user := u
	return &user, nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if f.lastLogin == nil {
		f.lastLogin = make(map[string]time.Time)
	}
	f.lastLogin[id] = at
	return nil
}

type fakeSessionStore struct {
	sessions map[string]string // token -> userID
	attempts map[string]int64
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]string),
		attempts: make(map[string]int64),
	}
}

func (f *fakeSessionStore) Put(_ context.Context, token, userID string, _ time.Duration) error {
	f.sessions[token] = userID
	return nil
}

func (f *fakeSessionStore) UserID(_ context.Context, token string) (string, error) {
	return f.sessions[token], nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) CountAttempt(_ context.Context, email string, _ time.Duration) (int64, error) {
	f.attempts[email]++
	return f.attempts[email], nil
}

func (f *fakeSessionStore) ResetAttempts(_ context.Context, email string) error {
	delete(f.attempts, email)
	return nil
}

const testPassword = "correct horse"

func testAuthService(t *testing.T) (*Service, *fakeUserRepo, *fakeSessionStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeUserRepo{users: map[string]models.User{
		"ana@apporgania.com.br": {
			ID:           "u1",
			Email:        "ana@apporgania.com.br",
			Name:         "Ana",
			Role:         models.RoleClient,
			PasswordHash: string(hash),
		},
	}}
	sessions := newFakeSessionStore()
	cfg := config.AuthConfig{
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		MaxLoginAttempts: 3,
		LoginWindow:      15 * time.Minute,
	}
	return NewService(users, sessions, cfg, nil), users, sessions
}

func TestSignIn_Success(t *testing.T) {
	svc, users, sessions := testAuthService(t)

	session, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", testPassword)
	require.NoError(t, err)

	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "Ana", session.Name)
	assert.Equal(t, models.RoleClient, session.Role)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "u1", sessions.sessions[session.Token])
	assert.Contains(t, users.lastLogin, "u1")
}

func TestSignIn_UnknownUser(t *testing.T) {
	svc, _, _ := testAuthService(t)

	_, err := svc.SignIn(context.Background(), "nobody@apporgania.com.br", testPassword)
	assert.ErrorIs(t, err, models.ErrUnknownUser)
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, _, _ := testAuthService(t)

	_, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", "nope")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestSignIn_RateLimitedAfterRepeatedFailures(t *testing.T) {
	svc, _, _ := testAuthService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", "nope")
		assert.ErrorIs(t, err, models.ErrInvalidCredential)
	}

	_, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", "nope")
	assert.ErrorIs(t, err, models.ErrRateLimited)
}

func TestSignIn_UnknownEmailIsThrottledToo(t *testing.T) {
	svc, _, _ := testAuthService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.SignIn(context.Background(), "nobody@apporgania.com.br", testPassword)
		assert.ErrorIs(t, err, models.ErrUnknownUser)
	}

	_, err := svc.SignIn(context.Background(), "nobody@apporgania.com.br", testPassword)
	assert.ErrorIs(t, err, models.ErrRateLimited)
}

func TestSignIn_SuccessResetsThrottle(t *testing.T) {
	svc, _, sessions := testAuthService(t)

	_, _ = svc.SignIn(context.Background(), "ana@apporgania.com.br", "nope")
	require.NotZero(t, sessions.attempts["ana@apporgania.com.br"])

	_, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", testPassword)
	require.NoError(t, err)
	assert.Zero(t, sessions.attempts["ana@apporgania.com.br"])
}

func TestSignIn_LookupFailureIsNetworkUnavailable(t *testing.T) {
	svc, users, _ := testAuthService(t)
	users.lookupErr = models.NewFetchError("users", assert.AnError)

	_, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", testPassword)
	assert.ErrorIs(t, err, models.ErrNetworkUnavailable)
}

func TestVerify_RoundTrip(t *testing.T) {
	svc, _, _ := testAuthService(t)

	signedIn, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", testPassword)
	require.NoError(t, err)

	verified, err := svc.Verify(context.Background(), signedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, signedIn.UserID, verified.UserID)
	assert.Equal(t, signedIn.Role, verified.Role)
}

func TestVerify_RejectsGarbageToken(t *testing.T) {
	svc, _, _ := testAuthService(t)

	_, err := svc.Verify(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestSignOut_RevokesSession(t *testing.T) {
	svc, _, _ := testAuthService(t)

	session, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", testPassword)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), session.Token))

	_, err = svc.Verify(context.Background(), session.Token)
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestSubscribe_NotifiesSignInAndSignOut(t *testing.T) {
	svc, _, _ := testAuthService(t)

	var events []*models.Session
	unsubscribe := svc.Subscribe(func(s *models.Session) {
		events = append(events, s)
	})

	session, err := svc.SignIn(context.Background(), "ana@apporgania.com.br", testPassword)
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(context.Background(), session.Token))

	require.Len(t, events, 2)
	assert.Equal(t, "u1", events[0].UserID)
	assert.Nil(t, events[1])

	unsubscribe()
	_, err = svc.SignIn(context.Background(), "ana@apporgania.com.br", testPassword)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
