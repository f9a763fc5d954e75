package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/infra/observability"
	"github.com/ftrhpr/estimator-sub002/internal/port"
)

var catalogTracer = otel.Tracer("service.catalog")

// CatalogService serves the bilingual service catalog. Listings are cached
// with a short TTL since the app fetches them on every estimate screen;
// writes flush the cache.
type CatalogService struct {
	store     port.CatalogStore
	listCache port.Cache[[]domain.CatalogItem]
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func NewCatalogService(
	store port.CatalogStore,
	listCache port.Cache[[]domain.CatalogItem],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		store:     store,
		listCache: listCache,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *CatalogService) List(ctx context.Context, activeOnly bool) ([]domain.CatalogItem, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.List")
	defer span.End()

	key := "all"
	if activeOnly {
		key = "active"
	}
	if items, ok := s.listCache.Get(key); ok {
		s.metrics.IncrCacheHit("catalog")
		return items, nil
	}
	s.metrics.IncrCacheMiss("catalog")

	items, err := s.store.ListItems(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	s.listCache.Set(key, items)
	return items, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.CatalogItem, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Get")
	defer span.End()

	return s.store.GetItem(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Create")
	defer span.End()

	if item.NameKa == "" && item.NameEn == "" {
		return nil, &domain.ErrValidation{Field: "nameKa", Message: "at least one localized name required"}
	}
	if item.UnitRate < 0 {
		return nil, &domain.ErrValidation{Field: "unitRate", Message: "must be non-negative"}
	}
	item.Active = true

	created, err := s.store.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}
	s.listCache.Flush()
	return created, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, updates map[string]any) (*domain.CatalogItem, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Update")
	defer span.End()

	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}
	for k := range updates {
		switch k {
		case "nameKa", "nameEn", "category", "unitRate", "unit", "active":
		default:
			return nil, &domain.ErrValidation{Field: k, Message: "unknown or immutable field"}
		}
	}

	item, err := s.store.UpdateItem(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.listCache.Flush()
	return item, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Delete")
	defer span.End()

	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.listCache.Flush()
	s.logger.Info("catalog item deleted", zap.String("id", id))
	return nil
}
