package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

// Normalize maps one loosely-typed store record into a canonical Case.
// Every field is coerced to its declared type and defaulted when absent:
// status defaults to "New", numerics to 0 via best-effort parse, arrays to
// empty. Normalize never fails; truly unusable rows are rejected later by
// the validator, not here.
func Normalize(raw domain.RawRecord) domain.Case {
	c := domain.Case{
		ID:              stringField(raw, "id", "docId", "documentId"),
		CPanelInvoiceID: stringField(raw, "cpanelInvoiceId", "cpanel_invoice_id", "invoiceId"),

		CustomerName:  stringField(raw, "customerName", "customer_name", "clientName", "name"),
		CustomerPhone: stringField(raw, "customerPhone", "customer_phone", "phoneNumber", "phone"),

		VehicleMake:  stringField(raw, "vehicleMake", "make"),
		VehicleModel: stringField(raw, "vehicleModel", "model"),
		PlateNumber:  stringField(raw, "plateNumber", "plate", "licensePlate"),

		TotalPrice: numberField(raw, "totalPrice", "total_price", "totalAmount", "total"),
		IncludeVAT: boolField(raw, "includeVAT", "include_vat"),
		VATAmount:  numberField(raw, "vatAmount", "vat_amount"),

		DiscountPct:        numberField(raw, "discountPercentage", "globalDiscount", "discount"),
		ServiceDiscountPct: numberField(raw, "serviceDiscountPercentage", "servicesDiscount"),
		PartsDiscountPct:   numberField(raw, "partsDiscountPercentage", "partsDiscount"),

		Status:       stringField(raw, "status"),
		RepairStatus: stringField(raw, "repair_status", "repairStatus"),
		CaseType:     stringField(raw, "caseType", "case_type", "type"),

		CreatedAt:       stringField(raw, "createdAt", "created_at", "date"),
		UpdatedAt:       stringField(raw, "updatedAt", "updated_at"),
		StatusChangedAt: stringField(raw, "status_changed_at", "statusChangedAt"),

		AssignedMechanic: stringField(raw, "assigned_mechanic", "assignedMechanic", "mechanic"),
	}

	if c.Status == "" {
		c.Status = "New"
	}

	c.Services = normalizeServices(raw["services"])
	c.Parts = normalizeParts(raw["parts"])

	return c
}

func normalizeServices(v any) []domain.ServiceLine {
	rows := asRecordSlice(v)
	out := make([]domain.ServiceLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ServiceLine{
			NameKa:          stringField(r, "serviceNameKa", "nameKa"),
			NameEn:          stringField(r, "serviceName", "serviceNameEn", "name"),
			Price:           numberField(r, "price"),
			Count:           intField(r, "count", "qty"),
			UnitRate:        numberField(r, "unitRate", "unit_rate", "rate"),
			DiscountedPrice: numberField(r, "discountedPrice", "discounted_price"),
		})
	}
	return out
}

func normalizeParts(v any) []domain.Part {
	rows := asRecordSlice(v)
	out := make([]domain.Part, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Part{
			Name:       stringField(r, "name", "partName"),
			UnitPrice:  numberField(r, "unitPrice", "unit_price", "price"),
			Quantity:   intField(r, "quantity", "count"),
			TotalPrice: numberField(r, "totalPrice", "total"),
		})
	}
	return out
}

// asRecordSlice tolerates both []any (decoded JSON, Firestore arrays) and
// an already-typed []domain.RawRecord.
func asRecordSlice(v any) []domain.RawRecord {
	switch rows := v.(type) {
	case []domain.RawRecord:
		return rows
	case []any:
		out := make([]domain.RawRecord, 0, len(rows))
		for _, row := range rows {
			if r, ok := row.(map[string]any); ok {
				out = append(out, r)
			}
		}
		return out
	default:
		return nil
	}
}

// stringField resolves the first present, non-empty key in fallback order.
// Firestore timestamp values are rendered as RFC 3339 so date fields survive
// the trip through the loosely-typed map.
func stringField(r domain.RawRecord, keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		case time.Time:
			return s.Format(time.RFC3339)
		}
	}
	return ""
}

// numberField resolves the first key that coerces to a number. String-typed
// numbers are parsed; non-numeric values count as absent and fall through.
func numberField(r domain.RawRecord, keys ...string) float64 {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if n, ok := toFloat(v); ok {
			return n
		}
	}
	return 0
}

func intField(r domain.RawRecord, keys ...string) int {
	return int(numberField(r, keys...))
}

func boolField(r domain.RawRecord, keys ...string) bool {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			return strings.EqualFold(strings.TrimSpace(b), "true")
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
