package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-backoffice/atlas/internal/platform/httpx"
	"github.com/atlas-backoffice/atlas/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	validator     *validator.Validate
	authenticated func(http.Handler) http.Handler
}

// NewHandler constructs a Handler. The authenticated middleware guards the
// routes that require a verified bearer token.
func NewHandler(logger *slog.Logger, service *Service, authenticated func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:        logger,
		service:       service,
		validator:     validator.New(),
		authenticated: authenticated,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.authenticated)
		r.Get("/", h.handleCheck)
		r.Get("/me", h.handleMe)
	})
}

type loginForm struct {
	Username string `validate:"required,min=1,max=60"`
	Password string `validate:"required,min=8"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	GroupID     int64  `json:"group_id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Patronymic  string `json:"patronymic,omitempty"`
	CreatedDate string `json:"created_date"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "cannot parse form")
		return
	}
	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "username and password are required")
		return
	}

	accessToken, err := h.service.Login(r.Context(), form.Username, form.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Incorrect username or password")
		case errors.Is(err, shared.ErrTooManyAttempts):
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "try again later")
		default:
			h.logger.Error("login", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]bool{"logged_in": true})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
		return
	}
	user, err := h.service.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{
		ID:          user.ID,
		CompanyID:   user.CompanyID,
		GroupID:     user.GroupID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Patronymic:  user.Patronymic,
		CreatedDate: user.CreatedDate.Format(time.DateOnly),
	})
}
