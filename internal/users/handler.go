package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Handler exposes user management over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	guard     func(http.Handler) http.Handler
}

// NewHandler constructs a Handler. The guard middleware enforces the
// users scope on every route.
func NewHandler(logger *slog.Logger, service *Service, guard func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		guard:     guard,
	}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard)
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{userID}", h.handleGet)
	r.Delete("/{userID}", h.handleDelete)
	r.Put("/{userID}/lock", h.handleLock)
}

type createUserRequest struct {
	CompanyID  int64  `json:"company_id" validate:"required,gt=0"`
	GroupID    int64  `json:"group_id" validate:"required,gt=0"`
	Username   string `json:"username" validate:"required,min=1,max=60"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Patronymic string `json:"patronymic" validate:"max=100"`
	Password   string `json:"password" validate:"required,min=8"`
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

type userView struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	GroupID     int64  `json:"group_id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Patronymic  string `json:"patronymic,omitempty"`
	Locked      bool   `json:"locked"`
	CreatedDate string `json:"created_date"`
}

type listResponse struct {
	Items      []userView        `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

func toView(u User) userView {
	return userView{
		ID:          u.ID,
		CompanyID:   u.CompanyID,
		GroupID:     u.GroupID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Patronymic:  u.Patronymic,
		Locked:      u.Locked,
		CreatedDate: u.CreatedDate.Format("2006-01-02"),
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		CompanyID: queryInt64(q.Get("company_id")),
		Page:      int(queryInt64(q.Get("page"))),
		PerPage:   int(queryInt64(q.Get("per_page"))),
	}
	items, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]userView, 0, len(items))
	for _, u := range items {
		views = append(views, toView(u))
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: views, Pagination: pagination})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(user))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), User{
		CompanyID:  req.CompanyID,
		GroupID:    req.GroupID,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Patronymic: req.Patronymic,
	}, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(created))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req lockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.SetLock(r.Context(), id, req.Locked); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func queryInt64(raw string) int64 {
	v, _ := strconv.ParseInt(raw, 10, 64)
	return v
}
