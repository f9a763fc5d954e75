package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

type stubRenderer struct {
	out []byte
	err error
}

func (r *stubRenderer) Render(_ *domain.Case) ([]byte, error) {
	return r.out, r.err
}

func TestRenderPDFUnknownCase(t *testing.T) {
	svc := NewInvoiceService(newMockInspectionStore(), &mockInvoiceCreator{}, &stubRenderer{}, zap.NewNop())

	_, err := svc.RenderPDF(context.Background(), "missing")
	var nfErr *domain.ErrNotFound
	if !errors.As(err, &nfErr) {
		t.Errorf("RenderPDF() error = %v, want not found", err)
	}
}

func TestRenderPDF(t *testing.T) {
	store := newMockInspectionStore()
	store.cases["c1"] = &domain.Case{ID: "c1", CustomerName: "Nino"}
	svc := NewInvoiceService(store, &mockInvoiceCreator{}, &stubRenderer{out: []byte("%PDF")}, zap.NewNop())

	got, err := svc.RenderPDF(context.Background(), "c1")
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if string(got) != "%PDF" {
		t.Errorf("bytes = %q", got)
	}
}

func TestMirrorToCPanel(t *testing.T) {
	store := newMockInspectionStore()
	store.cases["c1"] = &domain.Case{ID: "c1", CustomerName: "Nino"}
	creator := &mockInvoiceCreator{invoiceID: "INV-7"}
	svc := NewInvoiceService(store, creator, &stubRenderer{}, zap.NewNop())

	updated, err := svc.MirrorToCPanel(context.Background(), "c1")
	if err != nil {
		t.Fatalf("MirrorToCPanel() error = %v", err)
	}
	if updated.CPanelInvoiceID != "INV-7" {
		t.Errorf("CPanelInvoiceID = %q, want INV-7", updated.CPanelInvoiceID)
	}
	if store.lastUpdates["cpanelInvoiceId"] != "INV-7" {
		t.Errorf("case update = %+v, want cpanelInvoiceId recorded", store.lastUpdates)
	}
}

func TestMirrorToCPanelAlreadyMirrored(t *testing.T) {
	store := newMockInspectionStore()
	store.cases["c1"] = &domain.Case{ID: "c1", CPanelInvoiceID: "INV-1"}
	creator := &mockInvoiceCreator{invoiceID: "INV-2"}
	svc := NewInvoiceService(store, creator, &stubRenderer{}, zap.NewNop())

	_, err := svc.MirrorToCPanel(context.Background(), "c1")
	var cErr *domain.ErrConflict
	if !errors.As(err, &cErr) {
		t.Fatalf("MirrorToCPanel() error = %v, want conflict", err)
	}
	if creator.calls != 0 {
		t.Error("already-mirrored case must not create a second invoice")
	}
}

func TestMirrorToCPanelCreateFails(t *testing.T) {
	store := newMockInspectionStore()
	store.cases["c1"] = &domain.Case{ID: "c1"}
	creator := &mockInvoiceCreator{err: errBoom}
	svc := NewInvoiceService(store, creator, &stubRenderer{}, zap.NewNop())

	if _, err := svc.MirrorToCPanel(context.Background(), "c1"); err == nil {
		t.Fatal("MirrorToCPanel() succeeded, want error")
	}
	if store.lastUpdates != nil {
		t.Error("failed creation must not update the case")
	}
}
