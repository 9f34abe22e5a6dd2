package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	RecordToken(ctx context.Context, rec TokenRecord) error
	DeleteExpiredTokenRecords(ctx context.Context, before time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, company_id, group_id, username, firtsname, lastname, COALESCE(patronymic, ''), user_lock, password, created_date`

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// RecordToken persists the audit row for an issued access token.
func (r *PGRepository) RecordToken(ctx context.Context, rec TokenRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO token_log (jti, user_id, issued_at, expires_at, ip, ua)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.TokenID,
		rec.UserID,
		pgtype.Timestamptz{Time: rec.IssuedAt.UTC(), Valid: true},
		pgtype.Timestamptz{Time: rec.ExpiresAt.UTC(), Valid: true},
		pgtype.Text{String: rec.IP, Valid: rec.IP != ""},
		pgtype.Text{String: rec.UserAgent, Valid: rec.UserAgent != ""},
	)
	return err
}

// DeleteExpiredTokenRecords prunes audit rows whose tokens expired before
// the cutoff. Used by the background worker only.
func (r *PGRepository) DeleteExpiredTokenRecords(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM token_log WHERE expires_at < $1`,
		pgtype.Timestamptz{Time: before.UTC(), Valid: true})
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var created pgtype.Date
	err := row.Scan(
		&user.ID,
		&user.CompanyID,
		&user.GroupID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Patronymic,
		&user.Locked,
		&user.PasswordHash,
		&created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.CreatedDate = created.Time
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
