// Package groups serves user groups per company.
package groups

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
)

// Group is a named set of users inside a company.
type Group struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	Comment   string `json:"comment,omitempty"`
}

// Store abstracts persistence for the handler.
type Store interface {
	ListGroups(ctx context.Context, companyID int64) ([]Group, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListGroups returns groups, filtered to one company when companyID > 0.
func (r *Repository) ListGroups(ctx context.Context, companyID int64) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, group_name, COALESCE(comment, '')
		FROM user_groups
		WHERE ($1 = 0 OR company_id = $1)
		ORDER BY id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.CompanyID, &g.Name, &g.Comment); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Handler exposes groups over HTTP.
type Handler struct {
	logger *slog.Logger
	store  Store
	guard  func(http.Handler) http.Handler
}

// NewHandler constructs a Handler guarded by the groups scope.
func NewHandler(logger *slog.Logger, store Store, guard func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, guard: guard}
}

// MountRoutes registers group routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard)
	r.Get("/", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, _ := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	groups, err := h.store.ListGroups(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list groups", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if groups == nil {
		groups = []Group{}
	}
	httpx.JSON(w, http.StatusOK, groups)
}
