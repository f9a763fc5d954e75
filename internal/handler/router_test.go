package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/handler"
	"github.com/ftrhpr/estimator-sub002/internal/infra/cache"
	"github.com/ftrhpr/estimator-sub002/internal/infra/observability"
	"github.com/ftrhpr/estimator-sub002/internal/service"
)

type fakeInspectionStore struct {
	cases map[string]*domain.Case
}

func (f *fakeInspectionStore) ListAll(_ context.Context) ([]domain.RawRecord, error) {
	out := make([]domain.RawRecord, 0, len(f.cases))
	for _, c := range f.cases {
		out = append(out, domain.RawRecord{
			"id":         c.ID,
			"totalPrice": c.TotalPrice,
			"status":     c.Status,
			"createdAt":  c.CreatedAt,
		})
	}
	return out, nil
}

func (f *fakeInspectionStore) List(_ context.Context, limit int) ([]domain.Case, error) {
	out := make([]domain.Case, 0, len(f.cases))
	for _, c := range f.cases {
		if len(out) == limit {
			break
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeInspectionStore) Get(_ context.Context, id string) (*domain.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "inspection", ID: id}
	}
	copied := *c
	return &copied, nil
}

func (f *fakeInspectionStore) Create(_ context.Context, c *domain.Case) (*domain.Case, error) {
	if c.ID == "" {
		c.ID = "test-id"
	}
	f.cases[c.ID] = c
	return c, nil
}

func (f *fakeInspectionStore) Update(_ context.Context, id string, updates map[string]any) (*domain.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "inspection", ID: id}
	}
	if v, ok := updates["status"].(string); ok {
		c.Status = v
	}
	copied := *c
	return &copied, nil
}

func (f *fakeInspectionStore) Delete(_ context.Context, id string) error {
	if _, ok := f.cases[id]; !ok {
		return &domain.ErrNotFound{Resource: "inspection", ID: id}
	}
	delete(f.cases, id)
	return nil
}

type fakeInvoiceFetcher struct{}

func (fakeInvoiceFetcher) FetchInvoices(_ context.Context, _ int, _ bool) ([]domain.RawRecord, error) {
	return nil, nil
}

type fakePaymentsFetcher struct{}

func (fakePaymentsFetcher) FetchPaymentsAnalytics(_ context.Context) (*domain.PaymentSummary, error) {
	return &domain.PaymentSummary{}, nil
}

type fakeInvoiceCreator struct{}

func (fakeInvoiceCreator) CreateInvoice(_ context.Context, _ *domain.Case) (string, error) {
	return "INV-1", nil
}

type fakeCatalogStore struct{}

func (fakeCatalogStore) ListItems(_ context.Context, _ bool) ([]domain.CatalogItem, error) {
	return []domain.CatalogItem{}, nil
}
func (fakeCatalogStore) GetItem(_ context.Context, id string) (*domain.CatalogItem, error) {
	return nil, &domain.ErrNotFound{Resource: "catalog item", ID: id}
}
func (fakeCatalogStore) CreateItem(_ context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error) {
	return item, nil
}
func (fakeCatalogStore) UpdateItem(_ context.Context, id string, _ map[string]any) (*domain.CatalogItem, error) {
	return nil, &domain.ErrNotFound{Resource: "catalog item", ID: id}
}
func (fakeCatalogStore) DeleteItem(_ context.Context, _ string) error { return nil }

type fakeRenderer struct{}

func (fakeRenderer) Render(_ *domain.Case) ([]byte, error) { return []byte("%PDF-1.4"), nil }

func newTestRouter(t *testing.T) (http.Handler, *service.AuthService, *fakeInspectionStore) {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	authSvc := service.NewAuthService(string(hash), "router-test-secret", time.Hour, logger)

	store := &fakeInspectionStore{cases: make(map[string]*domain.Case)}
	analyticsSvc := service.NewAnalyticsService(store, fakeInvoiceFetcher{}, fakePaymentsFetcher{}, metrics, logger, 100)
	inspectionSvc := service.NewInspectionService(store, logger)
	catalogSvc := service.NewCatalogService(fakeCatalogStore{}, cache.New[[]domain.CatalogItem](time.Minute), metrics, logger)
	invoiceSvc := service.NewInvoiceService(store, fakeInvoiceCreator{}, fakeRenderer{}, logger)

	router := handler.NewRouter(
		analyticsSvc, inspectionSvc, catalogSvc, invoiceSvc, authSvc,
		metrics, logger,
		[]handler.HealthCheck{
			{Name: "firestore", Check: func(_ context.Context) error { return nil }},
			{Name: "cpanel", Check: func(_ context.Context) error { return errors.New("down") }},
		},
	)
	return router, authSvc, store
}

func authToken(t *testing.T, authSvc *service.AuthService) string {
	t.Helper()
	resp, err := authSvc.Login(context.Background(), &domain.LoginRequest{Name: "test", PIN: "1234"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp.AccessToken
}

func doRequest(router http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded (one failing check)", health.Status)
	}
	if len(health.Services) != 3 {
		t.Errorf("services = %d, want 3", len(health.Services))
	}
}

func TestReadyz(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/analytics"},
		{http.MethodGet, "/v1/inspections"},
		{http.MethodGet, "/v1/catalog"},
		{http.MethodGet, "/v1/metrics/ops"},
	}
	for _, p := range paths {
		rec := doRequest(router, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestLoginFlow(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/v1/auth/login", "",
		[]byte(`{"name":"Gio","pin":"1234"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, want 200", rec.Code)
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doRequest(router, http.MethodGet, "/v1/analytics", resp.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics with fresh token = %d, want 200", rec.Code)
	}
}

func TestLoginWrongPIN(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/v1/auth/login", "",
		[]byte(`{"name":"Gio","pin":"9999"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with wrong pin = %d, want 401", rec.Code)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	router, authSvc, store := newTestRouter(t)
	store.cases["c1"] = &domain.Case{
		ID: "c1", TotalPrice: 150, Status: "Completed",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	token := authToken(t, authSvc)

	rec := doRequest(router, http.MethodGet, "/v1/analytics?period=week&dataSource=firebase", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report domain.AnalyticsReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.TotalCases != 1 || report.TotalRevenue != 150 {
		t.Errorf("report = %d cases / %v revenue, want 1 / 150", report.TotalCases, report.TotalRevenue)
	}
	if report.Period != "week" || report.DataSource != "firebase" {
		t.Errorf("period/dataSource = %q/%q", report.Period, report.DataSource)
	}
	if len(report.MonthlyTrend) != 12 {
		t.Errorf("trend entries = %d, want 12", len(report.MonthlyTrend))
	}
}

func TestInspectionLifecycle(t *testing.T) {
	router, authSvc, _ := newTestRouter(t)
	token := authToken(t, authSvc)

	rec := doRequest(router, http.MethodPost, "/v1/inspections", token,
		[]byte(`{"customerName":"Nino","customerPhone":"555111","totalPrice":200}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Case
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != "New" {
		t.Errorf("status = %q, want New", created.Status)
	}

	rec = doRequest(router, http.MethodPatch, "/v1/inspections/"+created.ID+"/status", token,
		[]byte(`{"status":"Completed"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, http.MethodDelete, "/v1/inspections/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/v1/inspections/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestInspectionValidationError(t *testing.T) {
	router, authSvc, _ := newTestRouter(t)
	token := authToken(t, authSvc)

	rec := doRequest(router, http.MethodPost, "/v1/inspections", token,
		[]byte(`{"customerName":"Nino"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create without phone = %d, want 400", rec.Code)
	}
}

func TestInvoicePDF(t *testing.T) {
	router, authSvc, store := newTestRouter(t)
	store.cases["c1"] = &domain.Case{ID: "c1", CustomerName: "Nino"}
	token := authToken(t, authSvc)

	rec := doRequest(router, http.MethodGet, "/v1/inspections/c1/invoice.pdf", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
}

func TestMirrorInvoiceConflict(t *testing.T) {
	router, authSvc, store := newTestRouter(t)
	store.cases["c1"] = &domain.Case{ID: "c1", CPanelInvoiceID: "INV-9"}
	token := authToken(t, authSvc)

	rec := doRequest(router, http.MethodPost, "/v1/inspections/c1/cpanel-invoice", token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("mirror already-mirrored = %d, want 409", rec.Code)
	}
}
