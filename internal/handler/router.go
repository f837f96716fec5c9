package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medchain/internal/auth"
	"medchain/internal/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Records  *RecordHandler
	Analysis *AnalysisHandler
	Catalog  *CatalogHandler
	Health   *HealthHandler
}

// NewRouter builds the API router.
// Order: Recovery → Metrics → RequestLogger → Auth (skipped for /health and /metrics) → routes
func NewRouter(h Handlers, verifier auth.JWTVerifier, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.SkipPaths(middleware.AuthMiddleware(verifier, logger), "/health", "/metrics"))

	r.Get("/health", h.Health.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/records", h.Records.SubmitRecord)
		r.Get("/records/{id}", h.Records.GetRecord)
		r.Get("/records/{id}/verify", h.Records.VerifyRecord)
		r.Post("/records/{id}/anchor", h.Records.AnchorRecord)
		r.Post("/anchors/reconcile", h.Records.ReconcileAnchors)

		r.Post("/analysis", h.Analysis.Analyze)
		r.Get("/catalog/departments", h.Catalog.ListDepartments)
	})

	return r
}
