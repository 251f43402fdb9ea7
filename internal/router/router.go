package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"qmate-api/internal/config"
	"qmate-api/internal/handler"
	"qmate-api/internal/metrics"
	"qmate-api/internal/middleware"
	"qmate-api/internal/model"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Department *handler.DepartmentHandler
	Health     *handler.HealthHandler
	Docs       *handler.DocsHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/", h.Health.Root)
	r.Get("/health", h.Health.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/docs", h.Docs.SwaggerUI)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.Auth.Signup)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Route("/departments", func(departments chi.Router) {
			departments.Use(authMiddleware.RequireAuth)
			departments.Get("/", h.Department.List)
			departments.With(authMiddleware.RequireRoles(model.RoleAdmin)).Post("/", h.Department.Create)
		})
	})

	return r
}
