package rbac

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Repository provides PostgreSQL backed grant and function lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// IsLocked returns the account lock flag for the user.
func (r *Repository) IsLocked(ctx context.Context, userID int64) (bool, error) {
	var locked bool
	err := r.pool.QueryRow(ctx,
		`SELECT user_lock FROM users WHERE id = $1`, userID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, shared.ErrNotFound
		}
		return false, err
	}
	return locked, nil
}

// ActiveGrantsForUser returns the user's role grants active at asOf.
// The upper bound is inclusive, matching RoleGrant.ActiveAt.
func (r *Repository) ActiveGrantsForUser(ctx context.Context, userID int64, asOf time.Time) ([]RoleGrant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, role_id, active_from, active_to
		FROM user_roles
		WHERE user_id = $1
		  AND active_from <= $2
		  AND (active_to IS NULL OR active_to >= $2)
		ORDER BY role_id`,
		userID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []RoleGrant
	for rows.Next() {
		var grant RoleGrant
		if err := rows.Scan(&grant.UserID, &grant.RoleID, &grant.ActiveFrom, &grant.ActiveTo); err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grants, nil
}

// FunctionsForRole returns the capability codes linked to the role.
func (r *Repository) FunctionsForRole(ctx context.Context, roleID int64) ([]Function, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT fd.code
		FROM role_functions rf
		JOIN functions_dict fd ON fd.id = rf.function_code_id
		WHERE rf.role_id = $1
		ORDER BY fd.code`,
		roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funcs []Function
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		funcs = append(funcs, Function(code))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return funcs, nil
}

var (
	_ AccountStore  = (*Repository)(nil)
	_ GrantStore    = (*Repository)(nil)
	_ FunctionStore = (*Repository)(nil)
)
