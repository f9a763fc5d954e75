package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/infra/observability"
	"github.com/ftrhpr/estimator-sub002/internal/service"
)

var tracer = otel.Tracer("handler")

// HealthCheck probes one backing service for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except login requires a Bearer token.
func NewRouter(
	analyticsSvc *service.AnalyticsService,
	inspectionSvc *service.InspectionService,
	catalogSvc *service.CatalogService,
	invoiceSvc *service.InvoiceService,
	authSvc *service.AuthService,
	metrics *observability.Metrics,
	logger *zap.Logger,
	checks []HealthCheck,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(checks))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public: login only.
		r.Post("/auth/login", authLoginHandler(authSvc, logger))

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			// =============================================
			// Analytics dashboard
			// =============================================
			r.Get("/analytics", analyticsHandler(analyticsSvc, logger))

			// =============================================
			// Operational metrics snapshot
			// =============================================
			r.Get("/metrics/ops", opsMetricsHandler(metrics))

			// =============================================
			// Inspection intake
			// =============================================
			r.Route("/inspections", func(r chi.Router) {
				r.Get("/", listInspectionsHandler(inspectionSvc, logger))
				r.Post("/", createInspectionHandler(inspectionSvc, logger))
				r.Get("/{inspectionId}", getInspectionHandler(inspectionSvc, logger))
				r.Patch("/{inspectionId}", updateInspectionHandler(inspectionSvc, logger))
				r.Put("/{inspectionId}", updateInspectionHandler(inspectionSvc, logger))
				r.Patch("/{inspectionId}/status", setInspectionStatusHandler(inspectionSvc, logger))
				r.Delete("/{inspectionId}", deleteInspectionHandler(inspectionSvc, logger))

				r.Get("/{inspectionId}/invoice.pdf", invoicePDFHandler(invoiceSvc, logger))
				r.Post("/{inspectionId}/cpanel-invoice", mirrorInvoiceHandler(invoiceSvc, logger))
			})

			// =============================================
			// Service catalog
			// =============================================
			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", listCatalogHandler(catalogSvc, logger))
				r.Post("/", createCatalogItemHandler(catalogSvc, logger))
				r.Get("/{itemId}", getCatalogItemHandler(catalogSvc, logger))
				r.Patch("/{itemId}", updateCatalogItemHandler(catalogSvc, logger))
				r.Put("/{itemId}", updateCatalogItemHandler(catalogSvc, logger))
				r.Delete("/{itemId}", deleteCatalogItemHandler(catalogSvc, logger))
			})
		})
	})

	return r
}

// ============================================================
// Probes & metrics
// ============================================================

func healthzHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "estimator-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		for _, check := range checks {
			start := time.Now()
			err := check.Check(ctx)
			latency := time.Since(start).Milliseconds()
			checkStatus := "healthy"
			if err != nil {
				checkStatus = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: check.Name, Status: checkStatus, LatencyMs: latency, LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overall = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func opsMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
