// Package roles serves the role dictionary and role-function links.
// The dictionary is read-only over HTTP; grants are managed in the
// database and resolved by the rbac package.
package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Role is a row of the role dictionary.
type Role struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// RoleFunction links a role to a capability code.
type RoleFunction struct {
	FunctionID int64  `json:"function_id"`
	Code       string `json:"code"`
	Version    int16  `json:"version"`
}

// Store abstracts persistence for the handler.
type Store interface {
	ListRoles(ctx context.Context) ([]Role, error)
	FunctionsForRole(ctx context.Context, roleID int64) ([]RoleFunction, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns the full role dictionary ordered by id.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name FROM roles_dict ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Code, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// FunctionsForRole returns the capability codes linked to the role.
// shared.ErrNotFound when the role does not exist.
func (r *Repository) FunctionsForRole(ctx context.Context, roleID int64) ([]RoleFunction, error) {
	var exists int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM roles_dict WHERE id = $1`, roleID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT fd.id, fd.code, fd.version
		FROM role_functions rf
		JOIN functions_dict fd ON fd.id = rf.function_code_id
		WHERE rf.role_id = $1
		ORDER BY fd.code`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funcs []RoleFunction
	for rows.Next() {
		var fn RoleFunction
		if err := rows.Scan(&fn.FunctionID, &fn.Code, &fn.Version); err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
	}
	return funcs, rows.Err()
}
