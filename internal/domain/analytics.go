package domain

// ============================================================
// Analytics dashboard report
// ============================================================

// AnalyticsReport is the complete dashboard payload returned by
// GET /v1/analytics. All currency values are pre-rounded to 2 decimals and
// all percentages to 1 decimal, ready for direct display. Amounts are GEL.
type AnalyticsReport struct {
	Period     string `json:"period"`
	DataSource string `json:"dataSource"`

	TotalCases     int     `json:"totalCases"`
	TotalRevenue   float64 `json:"totalRevenue"`
	ServiceRevenue float64 `json:"serviceRevenue"`
	PartsRevenue   float64 `json:"partsRevenue"`

	CompletedCases             int     `json:"completedCases"`
	CancelledCases             int     `json:"cancelledCases"`
	ActiveCases                int     `json:"activeCases"`
	PreliminaryAssessmentCases int     `json:"preliminaryAssessmentCases"`
	CaseCompletionRate         float64 `json:"caseCompletionRate"`

	RevenueGrowth       float64 `json:"revenueGrowth"`
	AverageTicket       float64 `json:"averageTicket"`
	AverageTicketGrowth float64 `json:"averageTicketGrowth"`

	AverageProcessingDays float64 `json:"averageProcessingDays"`

	TotalCustomers         int            `json:"totalCustomers"`
	NewCustomersThisPeriod int            `json:"newCustomersThisPeriod"`
	RepeatCustomerRate     float64        `json:"repeatCustomerRate"`
	TopCustomers           []CustomerStat `json:"topCustomers"`

	TopServices []ServiceStat `json:"topServices"`

	StatusBreakdown       []StatusCount  `json:"statusBreakdown"`
	RepairStatusBreakdown []StatusCount  `json:"repairStatusBreakdown"`
	CaseTypeBreakdown     []CaseTypeStat `json:"caseTypeBreakdown"`

	MechanicStats []MechanicStat `json:"mechanicStats"`

	MonthlyTrend []MonthPoint `json:"monthlyTrend"`

	TotalDiscountGiven float64 `json:"totalDiscountGiven"`
	VATCollected       float64 `json:"vatCollected"`

	Payments PaymentSummary `json:"payments"`
}

// CustomerStat is one row of the top-customers leaderboard. Phone is the de
// facto customer identity key.
type CustomerStat struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Cases      int     `json:"cases"`
	TotalSpent float64 `json:"totalSpent"`
}

// ServiceStat is one row of the service leaderboard.
type ServiceStat struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// StatusCount is a group-count entry in a status breakdown.
type StatusCount struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CaseTypeStat is a case-type breakdown entry (insurance vs cash vs other).
type CaseTypeStat struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// MechanicStat aggregates one mechanic's workload and revenue.
type MechanicStat struct {
	Name      string  `json:"name"`
	Cases     int     `json:"cases"`
	Completed int     `json:"completed"`
	Active    int     `json:"active"`
	Revenue   float64 `json:"revenue"`
}

// MonthPoint is one entry of the fixed 12-month trend. Month is the
// "2006-01" key, Label the short month name.
type MonthPoint struct {
	Month     string  `json:"month"`
	Label     string  `json:"label"`
	Cases     int     `json:"cases"`
	Revenue   float64 `json:"revenue"`
	Collected float64 `json:"collected"`
}

// ============================================================
// Payment analytics (CPanel side)
// ============================================================

// PaymentSummary mirrors the CPanel payment-analytics endpoint. A failed or
// skipped fetch yields the zero value with empty breakdowns.
type PaymentSummary struct {
	TotalCollected   float64              `json:"totalCollected"`
	TotalInvoiced    float64              `json:"totalInvoiced"`
	TotalOutstanding float64              `json:"totalOutstanding"`
	CollectionRate   float64              `json:"collectionRate"`
	MethodBreakdown  []PaymentMethodStat  `json:"methodBreakdown"`
	MonthlyData      []MonthlyPaymentData `json:"monthlyData"`
}

// PaymentMethodStat is collected amount per payment method.
type PaymentMethodStat struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// MonthlyPaymentData is the collected figure for one "2006-01" month key.
type MonthlyPaymentData struct {
	Month     string  `json:"month"`
	Collected float64 `json:"collected"`
}
