// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

// InspectionStore persists inspection cases in the document store.
// ListAll returns loosely-typed snapshots for the analytics pipeline; the
// typed accessors back the intake CRUD surface.
type InspectionStore interface {
	ListAll(ctx context.Context) ([]domain.RawRecord, error)
	List(ctx context.Context, limit int) ([]domain.Case, error)
	Get(ctx context.Context, id string) (*domain.Case, error)
	Create(ctx context.Context, c *domain.Case) (*domain.Case, error)
	Update(ctx context.Context, id string, updates map[string]any) (*domain.Case, error)
	Delete(ctx context.Context, id string) error
}

// CatalogStore persists the bilingual service catalog.
type CatalogStore interface {
	ListItems(ctx context.Context, activeOnly bool) ([]domain.CatalogItem, error)
	GetItem(ctx context.Context, id string) (*domain.CatalogItem, error)
	CreateItem(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error)
	UpdateItem(ctx context.Context, id string, updates map[string]any) (*domain.CatalogItem, error)
	DeleteItem(ctx context.Context, id string) error
}

// InvoiceFetcher retrieves invoice rows from the CPanel legacy system.
// onlyCPanelOnly restricts the result to invoices that never had a document
// store counterpart.
type InvoiceFetcher interface {
	FetchInvoices(ctx context.Context, limit int, onlyCPanelOnly bool) ([]domain.RawRecord, error)
}

// PaymentsFetcher retrieves the payment analytics rollup from CPanel.
type PaymentsFetcher interface {
	FetchPaymentsAnalytics(ctx context.Context) (*domain.PaymentSummary, error)
}

// InvoiceCreator mirrors a completed case into CPanel as an invoice.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, c *domain.Case) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Flush()
}
