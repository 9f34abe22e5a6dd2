package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Resolver decides allow/deny for a user against a scope. It holds no
// per-request state and performs read-only lookups, so a cancelled check
// is always safe to abandon.
type Resolver struct {
	accounts  AccountStore
	grants    GrantStore
	functions FunctionStore
	matrix    *Matrix
	logger    *slog.Logger
	now       func() time.Time
}

// NewResolver constructs a Resolver over the given stores and matrix.
func NewResolver(accounts AccountStore, grants GrantStore, functions FunctionStore, matrix *Matrix, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		accounts:  accounts,
		grants:    grants,
		functions: functions,
		matrix:    matrix,
		logger:    logger,
		now:       time.Now,
	}
}

// Check resolves whether the user may act within the scope. It returns nil
// on allow; shared.ErrAccountInactive when the account is locked (checked
// before anything else, even FuncManageAll does not override it);
// shared.ErrForbidden when no active grant carries a matching capability;
// shared.ErrResolutionUnavailable when a backing store failed. "No grants
// at all" and "wrong grants" surface identically to the caller and are
// distinguished only in logs.
func (r *Resolver) Check(ctx context.Context, userID int64, scope Scope) error {
	locked, err := r.accounts.IsLocked(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Token outlived the account. Deny without revealing that.
			return r.deny(userID, scope, "account missing")
		}
		return fmt.Errorf("rbac: lock lookup for user %d: %w", userID, shared.ErrResolutionUnavailable)
	}
	if locked {
		return shared.ErrAccountInactive
	}

	now := r.now()
	grants, err := r.grants.ActiveGrantsForUser(ctx, userID, now)
	if err != nil {
		return fmt.Errorf("rbac: grant lookup for user %d: %w", userID, shared.ErrResolutionUnavailable)
	}

	granted := make(map[Function]struct{})
	seenRoles := make(map[int64]struct{}, len(grants))
	active := 0
	for _, grant := range grants {
		if !grant.ActiveAt(now) {
			continue
		}
		active++
		if _, ok := seenRoles[grant.RoleID]; ok {
			continue
		}
		seenRoles[grant.RoleID] = struct{}{}

		funcs, err := r.functions.FunctionsForRole(ctx, grant.RoleID)
		if err != nil {
			return fmt.Errorf("rbac: function lookup for role %d: %w", grant.RoleID, shared.ErrResolutionUnavailable)
		}
		for _, fn := range funcs {
			granted[fn] = struct{}{}
		}
	}

	if r.matrix.Satisfies(scope, granted) {
		return nil
	}
	if active == 0 {
		return r.deny(userID, scope, "no active grants")
	}
	return r.deny(userID, scope, "no matching capability")
}

// deny logs the internal cause and returns the uniform forbidden error.
// The returned message names the scope only, never roles or functions.
func (r *Resolver) deny(userID int64, scope Scope, cause string) error {
	r.logger.Debug("permission denied",
		slog.Int64("user_id", userID),
		slog.String("scope", string(scope)),
		slog.String("cause", cause))
	return fmt.Errorf("user %d doesn't have permission to %s: %w", userID, scope, shared.ErrForbidden)
}
