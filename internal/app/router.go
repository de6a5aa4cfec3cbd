package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sitecrew/sitecrew/internal/auth"
	"github.com/sitecrew/sitecrew/internal/authz"
	"github.com/sitecrew/sitecrew/internal/observability"
	"github.com/sitecrew/sitecrew/internal/reset"
	"github.com/sitecrew/sitecrew/internal/roles"
	"github.com/sitecrew/sitecrew/internal/tasks"
	"github.com/sitecrew/sitecrew/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	TokenCodec   *auth.TokenCodec
	Hierarchy    *authz.Hierarchy
	AuthHandler  *auth.Handler
	ResetHandler *reset.Handler
	UsersHandler *users.Handler
	RolesHandler *roles.Handler
	TasksHandler *tasks.Handler
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with SiteCrew defaults.
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

	// Credential endpoints live at the root per the wire contract.
	params.AuthHandler.MountRoutes(r)
	params.ResetHandler.MountRoutes(r)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAuth(params.TokenCodec))
		if params.UsersHandler != nil {
			api.Route("/users", func(u chi.Router) {
				// Account management is a management-tier surface.
				u.Use(auth.RequireMinRank(params.Hierarchy, authz.RoleManager))
				params.UsersHandler.MountRoutes(u)
			})
		}
		if params.TasksHandler != nil {
			api.Route("/tasks", params.TasksHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			api.Route("/roles", params.RolesHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
