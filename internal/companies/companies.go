// Package companies manages the tenant company registry.
package companies

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Company is a tenant with its Russian registry identifiers.
type Company struct {
	ID          int64
	Name        string
	INN         string
	KPP         string
	OGRN        string
	BIC         string
	CreatedDate time.Time
}

// Store abstracts persistence for the handler.
type Store interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	CreateCompany(ctx context.Context, c Company) (Company, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const companyColumns = `id, name, inn, kpp, COALESCE(ogrn, ''), COALESCE(bic, ''), created_date`

// ListCompanies returns all companies ordered by id.
func (r *Repository) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.INN, &c.KPP, &c.OGRN, &c.BIC, &c.CreatedDate); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// GetCompany fetches a company by ID.
func (r *Repository) GetCompany(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.INN, &c.KPP, &c.OGRN, &c.BIC, &c.CreatedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, shared.ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

// CreateCompany inserts a company. A duplicate INN maps to
// httpx.ErrDuplicate.
func (r *Repository) CreateCompany(ctx context.Context, c Company) (Company, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (property_id, name, inn, kpp, ogrn, bic, created_date)
		VALUES (1, $1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), CURRENT_DATE)
		RETURNING id, created_date`,
		c.Name, c.INN, c.KPP, c.OGRN, c.BIC,
	).Scan(&c.ID, &c.CreatedDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Company{}, httpx.ErrDuplicate
		}
		return Company{}, err
	}
	return c, nil
}
