package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/infra/cache"
	"github.com/ftrhpr/estimator-sub002/internal/infra/observability"
)

func newCatalogService(store *mockCatalogStore) *CatalogService {
	return NewCatalogService(
		store,
		cache.New[[]domain.CatalogItem](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestCatalogListIsCached(t *testing.T) {
	store := &mockCatalogStore{items: []domain.CatalogItem{{ID: "1", NameKa: "შეღებვა"}}}
	svc := newCatalogService(store)

	for i := 0; i < 3; i++ {
		items, err := svc.List(context.Background(), true)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("len = %d, want 1", len(items))
		}
	}
	if store.listN != 1 {
		t.Errorf("store hit %d times, want 1 (cached)", store.listN)
	}
}

func TestCatalogWriteFlushesCache(t *testing.T) {
	store := &mockCatalogStore{items: []domain.CatalogItem{{ID: "1", NameKa: "შეღებვა"}}}
	svc := newCatalogService(store)

	if _, err := svc.List(context.Background(), false); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := svc.Create(context.Background(), &domain.CatalogItem{NameEn: "Polish", UnitRate: 30}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	items, err := svc.List(context.Background(), false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2 after cache flush", len(items))
	}
	if store.listN != 2 {
		t.Errorf("store hit %d times, want 2", store.listN)
	}
}

func TestCatalogCreateValidation(t *testing.T) {
	svc := newCatalogService(&mockCatalogStore{})

	_, err := svc.Create(context.Background(), &domain.CatalogItem{UnitRate: 10})
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Errorf("Create() without names error = %v, want validation error", err)
	}

	_, err = svc.Create(context.Background(), &domain.CatalogItem{NameKa: "x", UnitRate: -1})
	if !errors.As(err, &vErr) {
		t.Errorf("Create() with negative rate error = %v, want validation error", err)
	}
}

func TestCatalogUpdateRejectsUnknownField(t *testing.T) {
	store := &mockCatalogStore{items: []domain.CatalogItem{{ID: "1"}}}
	svc := newCatalogService(store)

	_, err := svc.Update(context.Background(), "1", map[string]any{"createdAt": "2030-01-01"})
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Errorf("Update() error = %v, want validation error", err)
	}
}
