package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/service"
)

// ============================================================
// Analytics dashboard
// ============================================================

func analyticsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics")
		defer span.End()

		period := r.URL.Query().Get("period")
		dataSource := r.URL.Query().Get("dataSource")

		report, err := svc.GetDashboard(ctx, period, dataSource)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
