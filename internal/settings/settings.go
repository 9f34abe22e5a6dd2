// Package settings serves system settings active in a date window. A
// setting row is active at a date d when active_from <= d and active_to
// is null or >= d, the same predicate shape the role grants use.
package settings

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
)

// Setting is a coded value with its validity window.
type Setting struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Value      string     `json:"value"`
	ActiveFrom time.Time  `json:"active_from"`
	ActiveTo   *time.Time `json:"active_to,omitempty"`
}

// Store abstracts persistence for the handler.
type Store interface {
	ActiveSettings(ctx context.Context, asOf time.Time) ([]Setting, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActiveSettings returns settings whose window covers asOf. Both window
// edges are inclusive.
func (r *Repository) ActiveSettings(ctx context.Context, asOf time.Time) ([]Setting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, sd.code, sd.name, s.value, s.active_from, s.active_to
		FROM settings s
		JOIN settings_dict sd ON sd.id = s.setting_code_id
		WHERE s.active_from <= $1 AND (s.active_to IS NULL OR s.active_to >= $1)
		ORDER BY sd.code`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Value, &s.ActiveFrom, &s.ActiveTo); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Handler exposes settings over HTTP.
type Handler struct {
	logger *slog.Logger
	store  Store
	guard  func(http.Handler) http.Handler
	now    func() time.Time
}

// NewHandler constructs a Handler guarded by the settings scope.
func NewHandler(logger *slog.Logger, store Store, guard func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, guard: guard, now: time.Now}
}

// MountRoutes registers settings routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard)
	r.Get("/", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	asOf := h.now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	settings, err := h.store.ActiveSettings(r.Context(), asOf)
	if err != nil {
		h.logger.Error("list settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if settings == nil {
		settings = []Setting{}
	}
	httpx.JSON(w, http.StatusOK, settings)
}
