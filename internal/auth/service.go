package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-backoffice/atlas/internal/shared"
	"github.com/atlas-backoffice/atlas/internal/token"
)

// Service wraps authentication business rules. It answers "who you are";
// whether the account may act is decided by the rbac resolver, including
// the lock gate. Authenticate therefore does not look at the lock flag.
type Service struct {
	repo     Repository
	tokens   *token.Service
	throttle *LoginThrottle
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *token.Service, throttle *LoginThrottle, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, throttle: throttle, logger: logger}
}

// Authenticate validates username/password credentials. A missing user
// and a wrong password produce the same error. Usernames arriving as
// e-mail addresses are reduced to the local part.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username, _, _ = strings.Cut(username, "@")
	if err := s.throttle.Allow(ctx, username); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		s.throttle.RecordFailure(ctx, username)
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.throttle.RecordFailure(ctx, username)
		return nil, shared.ErrInvalidCredentials
	}
	s.throttle.Reset(ctx, username)
	return user, nil
}

// Login authenticates and issues an access token, recording the issuance
// in the token audit log. A failed audit write does not fail the login.
func (s *Service) Login(ctx context.Context, username, password, ip, ua string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	raw, err := s.tokens.IssueAccessToken(user.Username, user.ID)
	if err != nil {
		return "", err
	}
	claims, err := s.tokens.Peek(raw)
	if err != nil {
		// Peek of a token we just signed only fails if issuance is broken.
		return "", err
	}
	rec := TokenRecord{
		TokenID:   claims.TokenID,
		UserID:    user.ID,
		IssuedAt:  time.Unix(claims.IssuedAt, 0),
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
		IP:        ip,
		UserAgent: ua,
	}
	if err := s.repo.RecordToken(ctx, rec); err != nil {
		s.logger.Warn("record token", slog.Any("error", err))
	}
	return raw, nil
}

// CurrentUser loads the account behind a verified identity. A locked
// account surfaces as shared.ErrAccountInactive.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Locked {
		return nil, shared.ErrAccountInactive
	}
	return user, nil
}
