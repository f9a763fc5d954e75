package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/port"
)

var invoiceTracer = otel.Tracer("service.invoices")

// PDFRenderer renders a case as invoice PDF bytes.
type PDFRenderer interface {
	Render(c *domain.Case) ([]byte, error)
}

// InvoiceService produces invoice artifacts for a case: the printable PDF
// and the CPanel mirror record.
type InvoiceService struct {
	inspections port.InspectionStore
	creator     port.InvoiceCreator
	renderer    PDFRenderer
	logger      *zap.Logger
}

func NewInvoiceService(
	inspections port.InspectionStore,
	creator port.InvoiceCreator,
	renderer PDFRenderer,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		inspections: inspections,
		creator:     creator,
		renderer:    renderer,
		logger:      logger,
	}
}

// RenderPDF renders the invoice PDF for a case.
func (s *InvoiceService) RenderPDF(ctx context.Context, caseID string) ([]byte, error) {
	ctx, span := invoiceTracer.Start(ctx, "InvoiceService.RenderPDF")
	defer span.End()

	c, err := s.inspections.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(c)
}

// MirrorToCPanel creates the CPanel invoice for a case and records the
// returned invoice id on the case. A case already carrying an invoice id is
// a conflict, not an idempotent success: the caller should see that the
// mirror already happened.
func (s *InvoiceService) MirrorToCPanel(ctx context.Context, caseID string) (*domain.Case, error) {
	ctx, span := invoiceTracer.Start(ctx, "InvoiceService.MirrorToCPanel")
	defer span.End()

	c, err := s.inspections.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.CPanelInvoiceID != "" {
		return nil, &domain.ErrConflict{Message: "case already mirrored to cpanel invoice " + c.CPanelInvoiceID}
	}

	invoiceID, err := s.creator.CreateInvoice(ctx, c)
	if err != nil {
		return nil, err
	}

	updated, err := s.inspections.Update(ctx, caseID, map[string]any{"cpanelInvoiceId": invoiceID})
	if err != nil {
		// The invoice exists in CPanel but the case does not know it.
		// Surface the error; the id is logged for manual repair.
		s.logger.Error("cpanel invoice created but case update failed",
			zap.String("case_id", caseID),
			zap.String("invoice_id", invoiceID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("case mirrored to cpanel",
		zap.String("case_id", caseID),
		zap.String("invoice_id", invoiceID),
	)
	return updated, nil
}
