package roles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
)

// Handler exposes the role dictionary over HTTP.
type Handler struct {
	logger *slog.Logger
	store  Store
	guard  func(http.Handler) http.Handler
}

// NewHandler constructs a Handler guarded by the roles scope.
func NewHandler(logger *slog.Logger, store Store, guard func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, guard: guard}
}

// MountRoutes registers role routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard)
	r.Get("/", h.handleList)
	r.Get("/{roleID}/functions", h.handleFunctions)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if roles == nil {
		roles = []Role{}
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) handleFunctions(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid role id")
		return
	}
	funcs, err := h.store.FunctionsForRole(r.Context(), roleID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if funcs == nil {
		funcs = []RoleFunction{}
	}
	httpx.JSON(w, http.StatusOK, funcs)
}
