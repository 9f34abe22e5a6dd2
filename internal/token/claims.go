// Package token implements issuance and verification of bearer access tokens.
//
// Verification and inspection are deliberately split: Verify (and
// Service.Validate) establish trust, Peek only decodes. Nothing decoded by
// Peek may ever feed an authorization decision.
package token

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim keys recognized by the typed portion of Claims. Anything else in a
// payload is carried in Extra and round-tripped verbatim.
const (
	claimSubject   = "sub"
	claimUserID    = "user_id"
	claimTokenID   = "jti"
	claimTTL       = "ttl"
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
)

// Claims is the identity assertion embedded in a token.
//
// IssuedAt and ExpiresAt are not supplied by callers; the signer stamps them
// when the claims are materialized for signing, so two tokens issued a second
// apart differ even with identical remaining fields.
type Claims struct {
	Subject   string
	UserID    int64
	TokenID   string
	TTL       int64
	IssuedAt  int64
	ExpiresAt int64

	// Extra holds unrecognized payload keys. The typed fields above are
	// never widened; forward-compatible additions live here.
	Extra map[string]json.RawMessage
}

// stamped returns a copy with iat/exp derived from now and TTL.
func (c Claims) stamped(now time.Time) Claims {
	c.IssuedAt = now.Unix()
	c.ExpiresAt = c.IssuedAt + c.TTL
	return c
}

// MarshalJSON serializes known fields and extras into one flat object.
// Known fields win over extras of the same name.
func (c Claims) MarshalJSON() ([]byte, error) {
	payload := make(map[string]json.RawMessage, len(c.Extra)+6)
	for k, v := range c.Extra {
		payload[k] = v
	}
	known := map[string]any{
		claimSubject:   c.Subject,
		claimUserID:    c.UserID,
		claimTokenID:   c.TokenID,
		claimTTL:       c.TTL,
		claimIssuedAt:  c.IssuedAt,
		claimExpiresAt: c.ExpiresAt,
	}
	for k, v := range known {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		payload[k] = raw
	}
	return json.Marshal(payload)
}

// UnmarshalJSON splits a flat payload object into typed fields and extras.
func (c *Claims) UnmarshalJSON(data []byte) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	for key, raw := range payload {
		var err error
		switch key {
		case claimSubject:
			err = json.Unmarshal(raw, &c.Subject)
		case claimUserID:
			err = json.Unmarshal(raw, &c.UserID)
		case claimTokenID:
			err = json.Unmarshal(raw, &c.TokenID)
		case claimTTL:
			err = json.Unmarshal(raw, &c.TTL)
		case claimIssuedAt:
			err = json.Unmarshal(raw, &c.IssuedAt)
		case claimExpiresAt:
			err = json.Unmarshal(raw, &c.ExpiresAt)
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]json.RawMessage)
			}
			c.Extra[key] = raw
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// The jwt.Claims interface. Expiry is reported as absent so the library
// validator stays out of the way; the Signer applies the inclusive expiry
// boundary itself.

// GetExpirationTime implements jwt.Claims.
func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }

// GetIssuedAt implements jwt.Claims.
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.IssuedAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

// GetNotBefore implements jwt.Claims.
func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

// GetIssuer implements jwt.Claims.
func (c Claims) GetIssuer() (string, error) { return "", nil }

// GetSubject implements jwt.Claims.
func (c Claims) GetSubject() (string, error) { return c.Subject, nil }

// GetAudience implements jwt.Claims.
func (c Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }
