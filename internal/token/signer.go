package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed indicates the token structure cannot be parsed.
	ErrMalformed = errors.New("token: malformed")
	// ErrInvalid indicates a signature mismatch or wrong algorithm.
	ErrInvalid = errors.New("token: invalid signature")
	// ErrExpired indicates the token is past its expiry.
	ErrExpired = errors.New("token: expired")
)

// Signer signs and verifies claim sets with a process-wide HMAC secret.
// The algorithm is fixed at construction; a token naming any other
// algorithm in its header fails verification.
type Signer struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewSigner constructs a Signer for the named HMAC algorithm (HS256, HS384
// or HS512).
func NewSigner(secret string, algorithm string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret must not be empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unknown algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: algorithm %q is not HMAC", algorithm)
	}
	return &Signer{secret: []byte(secret), method: method, now: time.Now}, nil
}

// Sign stamps iat/exp on a copy of the claims and returns the signed
// three-part token.
func (s *Signer) Sign(c Claims) (string, error) {
	stamped := c.stamped(s.now())
	tok := jwt.NewWithClaims(s.method, stamped)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify re-derives the signature over the embedded header and payload,
// compares it in constant time, and applies the expiry boundary. The
// boundary is inclusive: a token is still valid at exactly its exp second.
func (s *Signer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc,
		jwt.WithValidMethods([]string{s.method.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, ErrInvalid
		}
	}
	if s.now().Unix() > claims.ExpiresAt {
		return nil, ErrExpired
	}
	return claims, nil
}

// Peek decodes the payload without verifying the signature. Diagnostic use
// only: the result must never feed an authorization decision. It fails only
// on structurally invalid input.
func (s *Signer) Peek(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (s *Signer) keyFunc(t *jwt.Token) (any, error) {
	return s.secret, nil
}
