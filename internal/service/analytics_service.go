package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ftrhpr/estimator-sub002/internal/analytics"
	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/infra/observability"
	"github.com/ftrhpr/estimator-sub002/internal/port"
)

var analyticsTracer = otel.Tracer("service.analytics")

// Data source selectors for the dashboard.
const (
	SourceAll       = "all"
	SourceFirestore = "firebase"
	SourceCPanel    = "cpanel"
)

// AnalyticsService assembles the dashboard report from both case sources.
// Sources are fetched concurrently; one source failing degrades the report
// to the surviving source instead of failing the request. Only when every
// queried case source fails does the call error out.
type AnalyticsService struct {
	inspections  port.InspectionStore
	invoices     port.InvoiceFetcher
	payments     port.PaymentsFetcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	invoiceLimit int
}

func NewAnalyticsService(
	inspections port.InspectionStore,
	invoices port.InvoiceFetcher,
	payments port.PaymentsFetcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
	invoiceLimit int,
) *AnalyticsService {
	return &AnalyticsService{
		inspections:  inspections,
		invoices:     invoices,
		payments:     payments,
		metrics:      metrics,
		logger:       logger,
		invoiceLimit: invoiceLimit,
	}
}

// GetDashboard fetches raw cases per the dataSource selector and runs the
// aggregation pipeline. period is week/month/year (default month);
// dataSource is all/firebase/cpanel (default all).
func (s *AnalyticsService) GetDashboard(ctx context.Context, period, dataSource string) (*domain.AnalyticsReport, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.GetDashboard")
	defer span.End()
	start := time.Now()

	period = normalizePeriod(period)
	dataSource = normalizeSource(dataSource)

	var (
		fireRecs, cpanelRecs []domain.RawRecord
		fireErr, cpanelErr   error
		paymentSummary       domain.PaymentSummary
	)

	g, gctx := errgroup.WithContext(ctx)

	if dataSource != SourceCPanel {
		g.Go(func() error {
			recs, err := s.inspections.ListAll(gctx)
			if err != nil {
				s.logger.Warn("firestore source failed, degrading", zap.Error(err))
				s.metrics.IncrExternalError("firestore")
				fireErr = err
				return nil
			}
			fireRecs = recs
			return nil
		})
	}

	if dataSource != SourceFirestore {
		g.Go(func() error {
			// cpanel-only view asks the API for records that never had a
			// document-store counterpart; the combined view fetches the
			// full set and lets dedup collapse the overlap.
			onlyCPanelOnly := dataSource == SourceCPanel
			recs, err := s.invoices.FetchInvoices(gctx, s.invoiceLimit, onlyCPanelOnly)
			if err != nil {
				s.logger.Warn("cpanel source failed, degrading", zap.Error(err))
				s.metrics.IncrExternalError("cpanel")
				cpanelErr = err
				return nil
			}
			cpanelRecs = recs
			return nil
		})

		g.Go(func() error {
			summary, err := s.payments.FetchPaymentsAnalytics(gctx)
			if err != nil {
				// Payments alone never fail the dashboard.
				s.logger.Warn("payments analytics failed, using zero summary", zap.Error(err))
				s.metrics.IncrExternalError("cpanel")
				return nil
			}
			paymentSummary = *summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.allSourcesFailed(dataSource, fireErr, cpanelErr); err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}

	raw := make([]domain.RawRecord, 0, len(fireRecs)+len(cpanelRecs))
	raw = append(raw, fireRecs...)
	raw = append(raw, cpanelRecs...)

	report := analytics.Run(raw, period, time.Now(), paymentSummary)
	report.DataSource = dataSource

	s.metrics.IncrRequest("success")
	s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	s.logger.Info("dashboard assembled",
		zap.String("period", period),
		zap.String("data_source", dataSource),
		zap.Int("raw_records", len(raw)),
		zap.Int("cases", report.TotalCases),
	)
	return report, nil
}

// allSourcesFailed returns an error only when no queried case source
// delivered data.
func (s *AnalyticsService) allSourcesFailed(dataSource string, fireErr, cpanelErr error) error {
	switch dataSource {
	case SourceFirestore:
		if fireErr != nil {
			return &domain.ErrExternalService{Service: "firestore", Err: fireErr}
		}
	case SourceCPanel:
		if cpanelErr != nil {
			return &domain.ErrExternalService{Service: "cpanel", Err: cpanelErr}
		}
	default:
		if fireErr != nil && cpanelErr != nil {
			return &domain.ErrExternalService{Service: "all case sources", Err: fireErr}
		}
	}
	return nil
}

func normalizePeriod(period string) string {
	switch period {
	case analytics.PeriodWeek, analytics.PeriodMonth, analytics.PeriodYear:
		return period
	default:
		return analytics.PeriodMonth
	}
}

func normalizeSource(dataSource string) string {
	switch dataSource {
	case SourceFirestore, SourceCPanel:
		return dataSource
	default:
		return SourceAll
	}
}
