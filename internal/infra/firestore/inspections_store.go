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

	"github.com/ftrhpr/estimator-sub002/internal/analytics"
	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

// InspectionsStore persists inspection cases in a Firestore collection.
// Documents are kept loosely typed on the wire; reads go through the same
// normalizer the analytics pipeline uses, so historic field-name variants
// stay readable.
type InspectionsStore struct {
	client     *firestore.Client
	collection string
	logger     *zap.Logger
}

func NewInspectionsStore(client *firestore.Client, collection string, logger *zap.Logger) *InspectionsStore {
	return &InspectionsStore{client: client, collection: collection, logger: logger}
}

// ListAll returns every document as a raw record for the analytics pipeline.
// The document id is injected under "id".
func (s *InspectionsStore) ListAll(ctx context.Context) ([]domain.RawRecord, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	var out []domain.RawRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
		}
		data := doc.Data()
		data["id"] = doc.Ref.ID
		out = append(out, data)
	}
	return out, nil
}

// List returns the most recent cases, newest first.
func (s *InspectionsStore) List(ctx context.Context, limit int) ([]domain.Case, error) {
	iter := s.client.Collection(s.collection).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []domain.Case
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
		}
		out = append(out, docToCase(doc))
	}
	return out, nil
}

func (s *InspectionsStore) Get(ctx context.Context, id string) (*domain.Case, error) {
	doc, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, &domain.ErrNotFound{Resource: "inspection", ID: id}
		}
		return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	c := docToCase(doc)
	return &c, nil
}

func (s *InspectionsStore) Create(ctx context.Context, c *domain.Case) (*domain.Case, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.client.Collection(s.collection).Doc(c.ID).Set(ctx, caseDoc(c)); err != nil {
		return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	s.logger.Info("inspection created", zap.String("id", c.ID))
	return c, nil
}

// Update applies a partial field update. Keys are document field names; the
// caller decides the update semantics (e.g. stamping status_changed_at).
func (s *InspectionsStore) Update(ctx context.Context, id string, updates map[string]any) (*domain.Case, error) {
	fsUpdates := make([]firestore.Update, 0, len(updates)+1)
	for k, v := range updates {
		fsUpdates = append(fsUpdates, firestore.Update{Path: k, Value: v})
	}
	fsUpdates = append(fsUpdates, firestore.Update{
		Path:  "updatedAt",
		Value: time.Now().UTC().Format(time.RFC3339),
	})

	ref := s.client.Collection(s.collection).Doc(id)
	if _, err := ref.Update(ctx, fsUpdates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, &domain.ErrNotFound{Resource: "inspection", ID: id}
		}
		return nil, &domain.ErrExternalService{Service: "firestore", Err: err}
	}

	return s.Get(ctx, id)
}

func (s *InspectionsStore) Delete(ctx context.Context, id string) error {
	ref := s.client.Collection(s.collection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return &domain.ErrNotFound{Resource: "inspection", ID: id}
		}
		return &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	if _, err := ref.Delete(ctx); err != nil {
		return &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	s.logger.Info("inspection deleted", zap.String("id", id))
	return nil
}

func docToCase(doc *firestore.DocumentSnapshot) domain.Case {
	data := doc.Data()
	data["id"] = doc.Ref.ID
	c := analytics.Normalize(data)
	c.Photos = photosFromDoc(data["photos"])
	return c
}

func photosFromDoc(v any) []domain.CasePhoto {
	rows, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.CasePhoto, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		photo := domain.CasePhoto{
			URL:     stringValue(m["url"]),
			Caption: stringValue(m["caption"]),
		}
		if markers, ok := m["markers"].([]any); ok {
			for _, raw := range markers {
				mm, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				photo.Markers = append(photo.Markers, domain.DamageMarker{
					X:        floatValue(mm["x"]),
					Y:        floatValue(mm["y"]),
					Severity: stringValue(mm["severity"]),
					Note:     stringValue(mm["note"]),
				})
			}
		}
		out = append(out, photo)
	}
	return out
}

func caseDoc(c *domain.Case) map[string]any {
	doc := map[string]any{
		"customerName":  c.CustomerName,
		"customerPhone": c.CustomerPhone,
		"vehicleMake":   c.VehicleMake,
		"vehicleModel":  c.VehicleModel,
		"plateNumber":   c.PlateNumber,

		"totalPrice": c.TotalPrice,
		"includeVAT": c.IncludeVAT,
		"vatAmount":  c.VATAmount,

		"discountPercentage":        c.DiscountPct,
		"serviceDiscountPercentage": c.ServiceDiscountPct,
		"partsDiscountPercentage":   c.PartsDiscountPct,

		"status":        c.Status,
		"repair_status": c.RepairStatus,
		"caseType":      c.CaseType,

		"createdAt": c.CreatedAt,
		"updatedAt": c.UpdatedAt,

		"assigned_mechanic": c.AssignedMechanic,

		"services": servicesDoc(c.Services),
		"parts":    partsDoc(c.Parts),
		"photos":   photosDoc(c.Photos),
	}
	if c.CPanelInvoiceID != "" {
		doc["cpanelInvoiceId"] = c.CPanelInvoiceID
	}
	if c.StatusChangedAt != "" {
		doc["status_changed_at"] = c.StatusChangedAt
	}
	return doc
}

func servicesDoc(lines []domain.ServiceLine) []map[string]any {
	out := make([]map[string]any, 0, len(lines))
	for _, s := range lines {
		out = append(out, map[string]any{
			"serviceNameKa":   s.NameKa,
			"serviceName":     s.NameEn,
			"price":           s.Price,
			"count":           s.Count,
			"unitRate":        s.UnitRate,
			"discountedPrice": s.DiscountedPrice,
		})
	}
	return out
}

func partsDoc(parts []domain.Part) []map[string]any {
	out := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		out = append(out, map[string]any{
			"name":       p.Name,
			"unitPrice":  p.UnitPrice,
			"quantity":   p.Quantity,
			"totalPrice": p.TotalPrice,
		})
	}
	return out
}

func photosDoc(photos []domain.CasePhoto) []map[string]any {
	out := make([]map[string]any, 0, len(photos))
	for _, p := range photos {
		markers := make([]map[string]any, 0, len(p.Markers))
		for _, m := range p.Markers {
			markers = append(markers, map[string]any{
				"x":        m.X,
				"y":        m.Y,
				"severity": m.Severity,
				"note":     m.Note,
			})
		}
		out = append(out, map[string]any{
			"url":     p.URL,
			"caption": p.Caption,
			"markers": markers,
		})
	}
	return out
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
