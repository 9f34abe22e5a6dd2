package rbac

import (
	"context"
	"time"
)

// AccountStore exposes the account lock flag. The lock gate runs before
// any scope check.
type AccountStore interface {
	IsLocked(ctx context.Context, userID int64) (bool, error)
}

// GrantStore loads role grants active at a given instant. Results are
// never cached across requests; a revoked grant must take effect on the
// next check.
type GrantStore interface {
	ActiveGrantsForUser(ctx context.Context, userID int64, asOf time.Time) ([]RoleGrant, error)
}

// FunctionStore expands a role into its linked capability codes.
type FunctionStore interface {
	FunctionsForRole(ctx context.Context, roleID int64) ([]Function, error)
}
