package shared

import "context"

// Identity describes the authenticated principal for the current request.
// It is established by the bearer-token middleware after signature and
// expiry verification; handlers must never build one from unverified data.
type Identity struct {
	UserID  int64
	Subject string
	TokenID string
}

type identityContextKey struct{}

// ContextWithIdentity stores the verified identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context, nil when the
// request is unauthenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
