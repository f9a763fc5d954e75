package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

// CatalogStore persists the bilingual service catalog.
type CatalogStore struct {
	client     *firestore.Client
	collection string
	logger     *zap.Logger
}

func NewCatalogStore(client *firestore.Client, collection string, logger *zap.Logger) *CatalogStore {
	return &CatalogStore{client: client, collection: collection, logger: logger}
}

func (s *CatalogStore) ListItems(ctx context.Context, activeOnly bool) ([]domain.CatalogItem, error) {
	q := s.client.Collection(s.collection).Query
	if activeOnly {
		q = q.Where("active", "==", true)
	}
	iter := q.OrderBy("nameKa", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []domain.CatalogItem
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
		}
		out = append(out, docToItem(doc))
	}
	return out, nil
}

func (s *CatalogStore) GetItem(ctx context.Context, id string) (*domain.CatalogItem, error) {
	doc, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, &domain.ErrNotFound{Resource: "catalog item", ID: id}
		}
		return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	item := docToItem(doc)
	return &item, nil
}

func (s *CatalogStore) CreateItem(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	if _, err := s.client.Collection(s.collection).Doc(item.ID).Set(ctx, itemDoc(item)); err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	s.logger.Info("catalog item created", zap.String("id", item.ID))
	return item, nil
}

func (s *CatalogStore) UpdateItem(ctx context.Context, id string, updates map[string]any) (*domain.CatalogItem, error) {
	fsUpdates := make([]firestore.Update, 0, len(updates)+1)
	for k, v := range updates {
		fsUpdates = append(fsUpdates, firestore.Update{Path: k, Value: v})
	}
	fsUpdates = append(fsUpdates, firestore.Update{Path: "updatedAt", Value: time.Now().UTC()})

	ref := s.client.Collection(s.collection).Doc(id)
	if _, err := ref.Update(ctx, fsUpdates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, &domain.ErrNotFound{Resource: "catalog item", ID: id}
		}
		return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
	}

	return s.GetItem(ctx, id)
}

func (s *CatalogStore) DeleteItem(ctx context.Context, id string) error {
	ref := s.client.Collection(s.collection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return &domain.ErrNotFound{Resource: "catalog item", ID: id}
		}
		return &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	if _, err := ref.Delete(ctx); err != nil {
		return &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	s.logger.Info("catalog item deleted", zap.String("id", id))
	return nil
}

func docToItem(doc *firestore.DocumentSnapshot) domain.CatalogItem {
	data := doc.Data()
	return domain.CatalogItem{
		ID:        doc.Ref.ID,
		NameKa:    stringValue(data["nameKa"]),
		NameEn:    stringValue(data["nameEn"]),
		Category:  stringValue(data["category"]),
		UnitRate:  floatValue(data["unitRate"]),
		Unit:      stringValue(data["unit"]),
		Active:    boolValue(data["active"]),
		CreatedAt: timeValue(data["createdAt"]),
		UpdatedAt: timeValue(data["updatedAt"]),
	}
}

func itemDoc(item *domain.CatalogItem) map[string]any {
	return map[string]any{
		"nameKa":    item.NameKa,
		"nameEn":    item.NameEn,
		"category":  item.Category,
		"unitRate":  item.UnitRate,
		"unit":      item.Unit,
		"active":    item.Active,
		"createdAt": item.CreatedAt,
		"updatedAt": item.UpdatedAt,
	}
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

func timeValue(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}
