package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-backoffice/atlas/internal/platform/db"
	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

// ListUsers returns users matching the filters plus the total count.
func (r *Repository) ListUsers(ctx context.Context, filters ListFilters) ([]User, int, error) {
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 50
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE ($1 = 0 OR company_id = $1)`,
		filters.CompanyID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, group_id, username, firtsname, lastname,
		       COALESCE(patronymic, ''), user_lock, COALESCE(comment, ''), created_date
		FROM users
		WHERE ($1 = 0 OR company_id = $1)
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		filters.CompanyID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.CompanyID, &user.GroupID, &user.Username,
			&user.FirstName, &user.LastName, &user.Patronymic, &user.Locked,
			&user.Comment, &user.CreatedDate); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, group_id, username, firtsname, lastname,
		       COALESCE(patronymic, ''), user_lock, COALESCE(comment, ''), created_date
		FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.CompanyID, &user.GroupID, &user.Username,
		&user.FirstName, &user.LastName, &user.Patronymic, &user.Locked,
		&user.Comment, &user.CreatedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// CreateUser inserts a new account with a pre-hashed password.
func (r *Repository) CreateUser(ctx context.Context, user User, passwordHash string) (User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (company_id, group_id, timezone_id, username, firtsname, lastname, patronymic, user_lock, password, created_date)
		VALUES ($1, $2, 1, $3, $4, $5, NULLIF($6, ''), false, $7, CURRENT_DATE)
		RETURNING id, created_date`,
		user.CompanyID, user.GroupID, user.Username, user.FirstName, user.LastName,
		user.Patronymic, passwordHash,
	).Scan(&user.ID, &user.CreatedDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, httpx.ErrDuplicate
		}
		return User{}, err
	}
	return user, nil
}

// DeleteUser removes an account together with its role grants and token
// audit rows, in one transaction.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM token_log WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// SetLock flips the account lock flag.
func (r *Repository) SetLock(ctx context.Context, id int64, locked bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET user_lock = $2 WHERE id = $1`, id, locked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
