package token

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAccessTTL is the access-token lifetime used when configuration
// does not override it.
const DefaultAccessTTL = 30 * 24 * time.Hour

// Service orchestrates claim construction around the Signer.
type Service struct {
	signer    *Signer
	accessTTL time.Duration
}

// NewService constructs a Service. A non-positive ttl falls back to
// DefaultAccessTTL.
func NewService(signer *Signer, accessTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &Service{signer: signer, accessTTL: accessTTL}
}

// IssueAccessToken builds a claim set with a fresh token ID and the
// configured access TTL and signs it.
func (s *Service) IssueAccessToken(subject string, userID int64) (string, error) {
	return s.Issue(subject, userID, s.accessTTL)
}

// Issue signs a claim set with an explicit TTL.
func (s *Service) Issue(subject string, userID int64, ttl time.Duration) (string, error) {
	claims := Claims{
		Subject: subject,
		UserID:  userID,
		TokenID: uuid.NewString(),
		TTL:     int64(ttl / time.Second),
	}
	return s.signer.Sign(claims)
}

// Validate verifies signature and expiry and returns the decoded claims.
func (s *Service) Validate(raw string) (*Claims, error) {
	return s.signer.Verify(raw)
}

// Peek decodes without verification, for diagnostics and logging only.
func (s *Service) Peek(raw string) (*Claims, error) {
	return s.signer.Peek(raw)
}

// AccessTTL exposes the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}
