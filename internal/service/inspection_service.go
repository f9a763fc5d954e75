package service

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
	"github.com/ftrhpr/estimator-sub002/internal/port"
)

var inspectionTracer = otel.Tracer("service.inspections")

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// updatableFields is the whitelist for partial inspection updates. Keys are
// document field names as stored.
var updatableFields = map[string]struct{}{
	"customerName":              {},
	"customerPhone":             {},
	"vehicleMake":               {},
	"vehicleModel":              {},
	"plateNumber":               {},
	"totalPrice":                {},
	"includeVAT":                {},
	"vatAmount":                 {},
	"discountPercentage":        {},
	"serviceDiscountPercentage": {},
	"partsDiscountPercentage":   {},
	"status":                    {},
	"repair_status":             {},
	"caseType":                  {},
	"assigned_mechanic":         {},
	"services":                  {},
	"parts":                     {},
	"photos":                    {},
}

// InspectionService handles intake CRUD for inspection cases.
type InspectionService struct {
	store  port.InspectionStore
	logger *zap.Logger
}

func NewInspectionService(store port.InspectionStore, logger *zap.Logger) *InspectionService {
	return &InspectionService{store: store, logger: logger}
}

func (s *InspectionService) List(ctx context.Context, limit int) ([]domain.Case, error) {
	ctx, span := inspectionTracer.Start(ctx, "InspectionService.List")
	defer span.End()

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.List(ctx, limit)
}

func (s *InspectionService) Get(ctx context.Context, id string) (*domain.Case, error) {
	ctx, span := inspectionTracer.Start(ctx, "InspectionService.Get")
	defer span.End()

	return s.store.Get(ctx, id)
}

func (s *InspectionService) Create(ctx context.Context, c *domain.Case) (*domain.Case, error) {
	ctx, span := inspectionTracer.Start(ctx, "InspectionService.Create")
	defer span.End()

	if c.CustomerName == "" {
		return nil, &domain.ErrValidation{Field: "customerName", Message: "required"}
	}
	if c.CustomerPhone == "" {
		return nil, &domain.ErrValidation{Field: "customerPhone", Message: "required"}
	}
	if math.IsNaN(c.TotalPrice) || c.TotalPrice < 0 {
		return nil, &domain.ErrValidation{Field: "totalPrice", Message: "must be a non-negative number"}
	}
	if c.Status == "" {
		c.Status = "New"
	}

	return s.store.Create(ctx, c)
}

// Update applies a partial update. Changing the status stamps
// status_changed_at, which downstream feeds the processing-time metric.
func (s *InspectionService) Update(ctx context.Context, id string, updates map[string]any) (*domain.Case, error) {
	ctx, span := inspectionTracer.Start(ctx, "InspectionService.Update")
	defer span.End()

	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}
	for k := range updates {
		if _, ok := updatableFields[k]; !ok {
			return nil, &domain.ErrValidation{Field: k, Message: "unknown or immutable field"}
		}
	}
	if v, ok := updates["totalPrice"]; ok {
		if n, ok := v.(float64); !ok || math.IsNaN(n) || n < 0 {
			return nil, &domain.ErrValidation{Field: "totalPrice", Message: "must be a non-negative number"}
		}
	}
	if _, ok := updates["status"]; ok {
		updates["status_changed_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	return s.store.Update(ctx, id, updates)
}

// SetStatus is the dedicated status transition used by the mobile app's
// swipe actions.
func (s *InspectionService) SetStatus(ctx context.Context, id, status string) (*domain.Case, error) {
	ctx, span := inspectionTracer.Start(ctx, "InspectionService.SetStatus")
	defer span.End()

	if status == "" {
		return nil, &domain.ErrValidation{Field: "status", Message: "required"}
	}
	return s.store.Update(ctx, id, map[string]any{
		"status":            status,
		"status_changed_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *InspectionService) Delete(ctx context.Context, id string) error {
	ctx, span := inspectionTracer.Start(ctx, "InspectionService.Delete")
	defer span.End()

	s.logger.Info("deleting inspection", zap.String("id", id))
	return s.store.Delete(ctx, id)
}
