package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-backoffice/atlas/internal/auth"
	"github.com/atlas-backoffice/atlas/internal/shared"
	"github.com/atlas-backoffice/atlas/internal/token"
	_ "github.com/atlas-backoffice/atlas/testing"
)

type stubRepo struct {
	user     *auth.User
	recorded []auth.TokenRecord
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) RecordToken(ctx context.Context, rec auth.TokenRecord) error {
	s.recorded = append(s.recorded, rec)
	return nil
}

func (s *stubRepo) DeleteExpiredTokenRecords(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestService(t *testing.T, repo auth.Repository) (*auth.Service, *token.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	throttle := auth.NewLoginThrottle(client, 5, time.Minute, nil)
	signer, err := token.NewSigner("service-test-secret", "HS256")
	require.NoError(t, err)
	tokens := token.NewService(signer, time.Hour)
	return auth.NewService(repo, tokens, throttle, nil), tokens
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := &stubRepo{user: &auth.User{ID: 7, Username: "ivanov", PasswordHash: hashPassword(t, "correctpass")}}
	svc, _ := newTestService(t, repo)

	user, err := svc.Authenticate(context.Background(), "ivanov", "correctpass")
	require.NoError(t, err)
	require.EqualValues(t, 7, user.ID)
}

func TestAuthenticateStripsEmailDomain(t *testing.T) {
	repo := &stubRepo{user: &auth.User{ID: 7, Username: "ivanov", PasswordHash: hashPassword(t, "correctpass")}}
	svc, _ := newTestService(t, repo)

	user, err := svc.Authenticate(context.Background(), "ivanov@example.com", "correctpass")
	require.NoError(t, err)
	require.Equal(t, "ivanov", user.Username)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	repo := &stubRepo{user: &auth.User{ID: 7, Username: "ivanov", PasswordHash: hashPassword(t, "correctpass")}}
	svc, _ := newTestService(t, repo)

	_, err := svc.Authenticate(context.Background(), "ivanov", "wrongpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "whatever1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateIgnoresLockFlag(t *testing.T) {
	// The lock gate belongs to the authorization layer, not here.
	repo := &stubRepo{user: &auth.User{ID: 7, Username: "ivanov", Locked: true, PasswordHash: hashPassword(t, "correctpass")}}
	svc, _ := newTestService(t, repo)

	user, err := svc.Authenticate(context.Background(), "ivanov", "correctpass")
	require.NoError(t, err)
	require.True(t, user.Locked)
}

func TestAuthenticateThrottleTrips(t *testing.T) {
	repo := &stubRepo{user: &auth.User{ID: 7, Username: "ivanov", PasswordHash: hashPassword(t, "correctpass")}}
	svc, _ := newTestService(t, repo)

	for i := 0; i < 5; i++ {
		_, err := svc.Authenticate(context.Background(), "ivanov", "wrongpass")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	}
	_, err := svc.Authenticate(context.Background(), "ivanov", "correctpass")
	require.ErrorIs(t, err, shared.ErrTooManyAttempts)
}

func TestLoginIssuesValidTokenAndRecordsAudit(t *testing.T) {
	repo := &stubRepo{user: &auth.User{ID: 7, Username: "ivanov", PasswordHash: hashPassword(t, "correctpass")}}
	svc, tokens := newTestService(t, repo)

	raw, err := svc.Login(context.Background(), "ivanov", "correctpass", "127.0.0.1:1234", "curl")
	require.NoError(t, err)

	claims, err := tokens.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, "ivanov", claims.Subject)
	require.EqualValues(t, 7, claims.UserID)

	require.Len(t, repo.recorded, 1)
	require.Equal(t, claims.TokenID, repo.recorded[0].TokenID)
	require.Equal(t, claims.ExpiresAt, repo.recorded[0].ExpiresAt.Unix())
}

func TestCurrentUserLocked(t *testing.T) {
	repo := &stubRepo{user: &auth.User{ID: 7, Username: "ivanov", Locked: true}}
	svc, _ := newTestService(t, repo)

	_, err := svc.CurrentUser(context.Background(), 7)
	require.ErrorIs(t, err, shared.ErrAccountInactive)

	_, err = svc.CurrentUser(context.Background(), 404)
	require.True(t, errors.Is(err, shared.ErrNotFound))
}
