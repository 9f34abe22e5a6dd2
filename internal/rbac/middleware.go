package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/atlas-backoffice/atlas/internal/observability"
	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
	"github.com/atlas-backoffice/atlas/internal/shared"
	"github.com/atlas-backoffice/atlas/internal/token"
)

// TokenValidator verifies a bearer token and returns its claims. Satisfied
// by token.Service. Peek is intentionally absent from this interface so
// the middleware cannot authorize from unverified data.
type TokenValidator interface {
	Validate(raw string) (*token.Claims, error)
}

// Middleware wires bearer-token authentication and scope authorization
// for HTTP handlers.
type Middleware struct {
	Tokens   TokenValidator
	Resolver *Resolver
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// Authenticate extracts and verifies the bearer token, then stores the
// identity in the request context. Requests without a valid token are
// rejected with 401 and a WWW-Authenticate challenge.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			m.unauthorized(w, "Invalid token", "missing")
			return
		}
		claims, err := m.Tokens.Validate(raw)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				m.unauthorized(w, "Token expired", "expired")
				return
			}
			m.unauthorized(w, "Invalid token", "invalid")
			return
		}
		identity := &shared.Identity{
			UserID:  claims.UserID,
			Subject: claims.Subject,
			TokenID: claims.TokenID,
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireScope authorizes the authenticated user against the scope. It
// must be mounted inside Authenticate.
func (m Middleware) RequireScope(scope Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				m.unauthorized(w, "Invalid token", "missing")
				return
			}
			if err := m.Resolver.Check(r.Context(), identity.UserID, scope); err != nil {
				switch {
				case errors.Is(err, shared.ErrAccountInactive):
					m.countFailure("inactive")
				case errors.Is(err, shared.ErrForbidden):
					m.countFailure("forbidden")
				default:
					if m.Logger != nil {
						m.Logger.Error("permission resolution failed",
							slog.Int64("user_id", identity.UserID),
							slog.String("scope", string(scope)),
							slog.Any("error", err))
					}
					m.countFailure("unavailable")
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) unauthorized(w http.ResponseWriter, reason, label string) {
	m.countFailure(label)
	w.Header().Set("WWW-Authenticate", "Bearer")
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", reason)
}

func (m Middleware) countFailure(reason string) {
	if m.Metrics != nil {
		m.Metrics.AuthFailure(reason)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
