package service

import (
	"context"
	"errors"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

var errBoom = errors.New("boom")

type mockInspectionStore struct {
	rawRecords []domain.RawRecord
	listAllErr error
	listAllN   int

	cases map[string]*domain.Case

	lastUpdateID string
	lastUpdates  map[string]any
	updateErr    error
	createErr    error
}

func newMockInspectionStore() *mockInspectionStore {
	return &mockInspectionStore{cases: make(map[string]*domain.Case)}
}

func (m *mockInspectionStore) ListAll(_ context.Context) ([]domain.RawRecord, error) {
	m.listAllN++
	if m.listAllErr != nil {
		return nil, m.listAllErr
	}
	return m.rawRecords, nil
}

func (m *mockInspectionStore) List(_ context.Context, limit int) ([]domain.Case, error) {
	out := make([]domain.Case, 0, len(m.cases))
	for _, c := range m.cases {
		if len(out) == limit {
			break
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockInspectionStore) Get(_ context.Context, id string) (*domain.Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "inspection", ID: id}
	}
	copied := *c
	return &copied, nil
}

func (m *mockInspectionStore) Create(_ context.Context, c *domain.Case) (*domain.Case, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if c.ID == "" {
		c.ID = "generated"
	}
	m.cases[c.ID] = c
	return c, nil
}

func (m *mockInspectionStore) Update(_ context.Context, id string, updates map[string]any) (*domain.Case, error) {
	m.lastUpdateID = id
	m.lastUpdates = updates
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	c, ok := m.cases[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "inspection", ID: id}
	}
	if v, ok := updates["status"].(string); ok {
		c.Status = v
	}
	if v, ok := updates["cpanelInvoiceId"].(string); ok {
		c.CPanelInvoiceID = v
	}
	copied := *c
	return &copied, nil
}

func (m *mockInspectionStore) Delete(_ context.Context, id string) error {
	if _, ok := m.cases[id]; !ok {
		return &domain.ErrNotFound{Resource: "inspection", ID: id}
	}
	delete(m.cases, id)
	return nil
}

type mockInvoiceFetcher struct {
	records []domain.RawRecord
	err     error

	calls          int
	lastLimit      int
	lastCPanelOnly bool
}

func (m *mockInvoiceFetcher) FetchInvoices(_ context.Context, limit int, onlyCPanelOnly bool) ([]domain.RawRecord, error) {
	m.calls++
	m.lastLimit = limit
	m.lastCPanelOnly = onlyCPanelOnly
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type mockPaymentsFetcher struct {
	summary *domain.PaymentSummary
	err     error
	calls   int
}

func (m *mockPaymentsFetcher) FetchPaymentsAnalytics(_ context.Context) (*domain.PaymentSummary, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.summary == nil {
		return &domain.PaymentSummary{}, nil
	}
	return m.summary, nil
}

type mockInvoiceCreator struct {
	invoiceID string
	err       error
	calls     int
}

func (m *mockInvoiceCreator) CreateInvoice(_ context.Context, _ *domain.Case) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.invoiceID, nil
}

type mockCatalogStore struct {
	items    []domain.CatalogItem
	listN    int
	listErr  error
	writeErr error
}

func (m *mockCatalogStore) ListItems(_ context.Context, _ bool) ([]domain.CatalogItem, error) {
	m.listN++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.items, nil
}

func (m *mockCatalogStore) GetItem(_ context.Context, id string) (*domain.CatalogItem, error) {
	for _, item := range m.items {
		if item.ID == id {
			copied := item
			return &copied, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "catalog item", ID: id}
}

func (m *mockCatalogStore) CreateItem(_ context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	if item.ID == "" {
		item.ID = "generated"
	}
	m.items = append(m.items, *item)
	return item, nil
}

func (m *mockCatalogStore) UpdateItem(_ context.Context, id string, _ map[string]any) (*domain.CatalogItem, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return m.GetItem(context.Background(), id)
}

func (m *mockCatalogStore) DeleteItem(_ context.Context, id string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "catalog item", ID: id}
}
