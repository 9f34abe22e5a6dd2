package companies

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
)

// Handler exposes the company registry over HTTP.
type Handler struct {
	logger    *slog.Logger
	store     Store
	validator *validator.Validate
	guard     func(http.Handler) http.Handler
}

// NewHandler constructs a Handler guarded by the companies scope.
func NewHandler(logger *slog.Logger, store Store, guard func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, validator: validator.New(), guard: guard}
}

// MountRoutes registers company routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guard)
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{companyID}", h.handleGet)
}

type createCompanyRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	INN  string `json:"inn" validate:"required,min=10,max=12,numeric"`
	KPP  string `json:"kpp" validate:"required,len=9,numeric"`
	OGRN string `json:"ogrn" validate:"omitempty,len=13,numeric"`
	BIC  string `json:"bic" validate:"omitempty,len=9,numeric"`
}

type companyView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	INN         string `json:"inn"`
	KPP         string `json:"kpp"`
	OGRN        string `json:"ogrn,omitempty"`
	BIC         string `json:"bic,omitempty"`
	CreatedDate string `json:"created_date"`
}

func toView(c Company) companyView {
	return companyView{
		ID:          c.ID,
		Name:        c.Name,
		INN:         c.INN,
		KPP:         c.KPP,
		OGRN:        c.OGRN,
		BIC:         c.BIC,
		CreatedDate: c.CreatedDate.Format(time.DateOnly),
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companies, err := h.store.ListCompanies(r.Context())
	if err != nil {
		h.logger.Error("list companies", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]companyView, 0, len(companies))
	for _, c := range companies {
		views = append(views, toView(c))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	company, err := h.store.GetCompany(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(company))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.store.CreateCompany(r.Context(), Company{
		Name: req.Name,
		INN:  req.INN,
		KPP:  req.KPP,
		OGRN: req.OGRN,
		BIC:  req.BIC,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(created))
}
