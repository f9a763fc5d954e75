package domain

// RawRecord is a loosely-typed case document exactly as it arrives from a
// backing store: a Firestore snapshot's data map or a decoded CPanel invoice
// row. Field names and value types vary per source; the analytics normalizer
// coalesces them into a Case.
type RawRecord = map[string]any

// Case is one repair/estimate transaction, the atomic unit of the shop's
// business activity. Cases are read-only snapshots: the analytics pipeline
// never mutates or persists them.
type Case struct {
	ID              string `json:"id"`
	CPanelInvoiceID string `json:"cpanelInvoiceId,omitempty"`

	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`

	VehicleMake  string `json:"vehicleMake,omitempty"`
	VehicleModel string `json:"vehicleModel,omitempty"`
	PlateNumber  string `json:"plateNumber,omitempty"`

	TotalPrice float64 `json:"totalPrice"`
	IncludeVAT bool    `json:"includeVAT"`
	VATAmount  float64 `json:"vatAmount"`

	// Discount percentages at global / service / parts granularity.
	DiscountPct        float64 `json:"discountPercentage,omitempty"`
	ServiceDiscountPct float64 `json:"serviceDiscountPercentage,omitempty"`
	PartsDiscountPct   float64 `json:"partsDiscountPercentage,omitempty"`

	// Status is a free-form localized label from a small fixed vocabulary;
	// RepairStatus is an independent secondary axis (may be empty).
	Status       string `json:"status"`
	RepairStatus string `json:"repair_status,omitempty"`
	CaseType     string `json:"caseType,omitempty"`

	// Raw date strings as stored. CreatedAt must parse for the case to be
	// counted anywhere; StatusChangedAt (preferred) or UpdatedAt marks
	// completion time.
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
	StatusChangedAt string `json:"status_changed_at,omitempty"`

	Services []ServiceLine `json:"services,omitempty"`
	Parts    []Part        `json:"parts,omitempty"`

	AssignedMechanic string `json:"assigned_mechanic,omitempty"`

	Photos []CasePhoto `json:"photos,omitempty"`
}

// ServiceLine is one work item on a case. Names come in two languages;
// exactly one of DiscountedPrice / UnitRate*Count / Price is authoritative
// for revenue (see analytics.ServiceLineRevenue).
type ServiceLine struct {
	NameKa          string  `json:"serviceNameKa,omitempty"`
	NameEn          string  `json:"serviceName,omitempty"`
	Price           float64 `json:"price"`
	Count           int     `json:"count"`
	UnitRate        float64 `json:"unitRate,omitempty"`
	DiscountedPrice float64 `json:"discountedPrice,omitempty"`
}

// Part is one replacement part on a case.
type Part struct {
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice,omitempty"`
}

// CasePhoto is a damage photo with its annotation markers. The binary lives
// in external storage; only the URL and markers are kept on the case.
type CasePhoto struct {
	URL     string         `json:"url"`
	Caption string         `json:"caption,omitempty"`
	Markers []DamageMarker `json:"markers,omitempty"`
}

// DamageMarker is one annotated damage point on a photo, in relative
// coordinates (0..1).
type DamageMarker struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Severity string  `json:"severity,omitempty"`
	Note     string  `json:"note,omitempty"`
}
