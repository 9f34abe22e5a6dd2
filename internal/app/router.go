package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atlas-backoffice/atlas/internal/auth"
	"github.com/atlas-backoffice/atlas/internal/companies"
	"github.com/atlas-backoffice/atlas/internal/groups"
	"github.com/atlas-backoffice/atlas/internal/observability"
	"github.com/atlas-backoffice/atlas/internal/roles"
	"github.com/atlas-backoffice/atlas/internal/settings"
	"github.com/atlas-backoffice/atlas/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	Authenticate func(http.Handler) http.Handler

	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	CompaniesHandler *companies.Handler
	RolesHandler     *roles.Handler
	GroupsHandler    *groups.Handler
	SettingsHandler  *settings.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Atlas defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Every resource route requires a verified bearer token; each handler
	// additionally enforces its own scope.
	r.Group(func(r chi.Router) {
		r.Use(params.Authenticate)
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.CompaniesHandler != nil {
			r.Route("/companies", params.CompaniesHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.GroupsHandler != nil {
			r.Route("/groups", params.GroupsHandler.MountRoutes)
		}
		if params.SettingsHandler != nil {
			r.Route("/settings", params.SettingsHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
