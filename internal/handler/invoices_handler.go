package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/service"
)

// ============================================================
// Invoice artifacts
// ============================================================

func invoicePDFHandler(svc *service.InvoiceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/inspections/{inspectionId}/invoice.pdf")
		defer span.End()

		pdfBytes, err := svc.RenderPDF(ctx, chi.URLParam(r, "inspectionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="invoice.pdf"`)
		w.WriteHeader(http.StatusOK)
		w.Write(pdfBytes)
	}
}

func mirrorInvoiceHandler(svc *service.InvoiceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/inspections/{inspectionId}/cpanel-invoice")
		defer span.End()

		updated, err := svc.MirrorToCPanel(ctx, chi.URLParam(r, "inspectionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, updated)
	}
}
