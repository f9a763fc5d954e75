package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

// Period window identifiers accepted by Compute. The period only selects the
// comparison window; the monthly trend is always the trailing 12 months.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// Sentinel labels for records missing an optional classification field.
const (
	labelUnassigned  = "unassigned"
	labelUnspecified = "unspecified"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// record couples a validated case with its parsed timestamps.
type record struct {
	c       domain.Case
	created time.Time
	ended   time.Time
	hasEnd  bool
}

// validate drops cases with a NaN or negative total price or an unparseable
// creation date. Exclusion is silent and total: an invalid case appears in
// no count, breakdown or sum downstream.
func validate(cases []domain.Case) []record {
	out := make([]record, 0, len(cases))
	for _, c := range cases {
		if math.IsNaN(c.TotalPrice) || c.TotalPrice < 0 {
			continue
		}
		created, ok := parseDate(c.CreatedAt)
		if !ok {
			continue
		}
		r := record{c: c, created: created}
		if end, ok := parseDate(c.StatusChangedAt); ok {
			r.ended, r.hasEnd = end, true
		} else if end, ok := parseDate(c.UpdatedAt); ok {
			r.ended, r.hasEnd = end, true
		}
		out = append(out, r)
	}
	return out
}

// Run executes the full pipeline (normalize, dedupe, validate, aggregate)
// over raw records from any mix of sources.
func Run(raw []domain.RawRecord, period string, now time.Time, payments domain.PaymentSummary) *domain.AnalyticsReport {
	cases := make([]domain.Case, 0, len(raw))
	for _, r := range raw {
		cases = append(cases, Normalize(r))
	}
	return Compute(Dedupe(cases), period, now, payments)
}

// ServiceLineRevenue returns the one authoritative amount for a service
// line. Exactly one rule fires, in preference order: an explicit discounted
// price, then unit rate times count, then the raw price. This keeps the same
// money from being counted under more than one field.
func ServiceLineRevenue(s domain.ServiceLine) float64 {
	if s.DiscountedPrice > 0 {
		return s.DiscountedPrice
	}
	if s.UnitRate > 0 {
		return s.UnitRate * float64(max(1, s.Count))
	}
	return s.Price
}

// PartRevenue returns the authoritative amount for a part line.
func PartRevenue(p domain.Part) float64 {
	if p.TotalPrice > 0 {
		return p.TotalPrice
	}
	return p.UnitPrice * float64(max(1, p.Quantity))
}

func windowBounds(period string, now time.Time) (start, prevStart time.Time) {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now.AddDate(0, 0, -14)
	case PeriodYear:
		return now.AddDate(-1, 0, 0), now.AddDate(-2, 0, 0)
	default:
		return now.AddDate(0, -1, 0), now.AddDate(0, -2, 0)
	}
}

// growthRate is the period-over-period percent change. Both periods empty
// means no movement (0%); growth from nothing is capped at 100%.
func growthRate(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

// Compute aggregates already-deduplicated cases into the dashboard report.
// It is a pure function of its arguments: identical inputs yield identical
// reports, and all intermediate maps are scratch state scoped to one call.
func Compute(cases []domain.Case, period string, now time.Time, payments domain.PaymentSummary) *domain.AnalyticsReport {
	recs := validate(cases)
	start, prevStart := windowBounds(period, now)

	report := &domain.AnalyticsReport{
		Period:     period,
		TotalCases: len(recs),
	}

	var (
		totalRevenue, serviceRevenue, partsRevenue float64
		curRevenue, prevRevenue                    float64
		curCount, prevCount                        int
		completed, cancelled, preliminary          int
		processingDays                             float64
		processingSamples                          int
		discountGiven, vatCollected                float64
	)

	type customerAgg struct {
		name     string
		phone    string
		cases    int
		spent    float64
		earliest time.Time
	}
	customers := make(map[string]*customerAgg)
	customerOrder := make([]*customerAgg, 0)

	type serviceAgg struct {
		name    string
		count   int
		revenue float64
	}
	services := make(map[string]*serviceAgg)
	serviceOrder := make([]*serviceAgg, 0)

	newGrouper := func() (map[string]*groupAgg, *[]*groupAgg) {
		order := make([]*groupAgg, 0)
		return make(map[string]*groupAgg), &order
	}
	statuses, statusOrder := newGrouper()
	repairStatuses, repairOrder := newGrouper()
	caseTypes, typeOrder := newGrouper()

	type mechanicAgg struct {
		name      string
		cases     int
		completed int
		active    int
		revenue   float64
	}
	mechanics := make(map[string]*mechanicAgg)
	mechanicOrder := make([]*mechanicAgg, 0)

	group := func(m map[string]*groupAgg, order *[]*groupAgg, label string) *groupAgg {
		g, ok := m[label]
		if !ok {
			g = &groupAgg{label: label}
			m[label] = g
			*order = append(*order, g)
		}
		return g
	}

	for _, r := range recs {
		c := r.c
		totalRevenue += c.TotalPrice

		for _, s := range c.Services {
			serviceRevenue += ServiceLineRevenue(s)
		}
		for _, p := range c.Parts {
			partsRevenue += PartRevenue(p)
		}

		inCurrent := !r.created.Before(start)
		if inCurrent {
			curRevenue += c.TotalPrice
			curCount++
		} else if !r.created.Before(prevStart) {
			prevRevenue += c.TotalPrice
			prevCount++
		}

		class := ClassifyStatus(c.Status)
		switch class {
		case StatusCompleted:
			completed++
		case StatusCancelled:
			cancelled++
		}
		if IsPreliminary(c.Status) {
			preliminary++
		}

		if class == StatusCompleted && r.hasEnd {
			processingDays += math.Abs(r.ended.Sub(r.created).Hours() / 24)
			processingSamples++
		}

		if phone := strings.TrimSpace(c.CustomerPhone); phone != "" {
			agg, ok := customers[phone]
			if !ok {
				agg = &customerAgg{name: c.CustomerName, phone: phone, earliest: r.created}
				customers[phone] = agg
				customerOrder = append(customerOrder, agg)
			}
			agg.cases++
			agg.spent += c.TotalPrice
			if r.created.Before(agg.earliest) {
				agg.earliest = r.created
			}
			if agg.name == "" {
				agg.name = c.CustomerName
			}
		}

		for _, s := range c.Services {
			name := serviceDisplayName(s)
			agg, ok := services[name]
			if !ok {
				agg = &serviceAgg{name: name}
				services[name] = agg
				serviceOrder = append(serviceOrder, agg)
			}
			agg.revenue += ServiceLineRevenue(s)
			agg.count += max(1, s.Count)
		}

		group(statuses, statusOrder, c.Status).count++

		repairLabel := strings.TrimSpace(c.RepairStatus)
		if repairLabel == "" {
			repairLabel = labelUnassigned
		}
		group(repairStatuses, repairOrder, repairLabel).count++

		typeLabel := strings.TrimSpace(c.CaseType)
		if typeLabel == "" {
			typeLabel = labelUnspecified
		}
		tg := group(caseTypes, typeOrder, typeLabel)
		tg.count++
		tg.revenue += c.TotalPrice

		if name := strings.TrimSpace(c.AssignedMechanic); name != "" {
			agg, ok := mechanics[name]
			if !ok {
				agg = &mechanicAgg{name: name}
				mechanics[name] = agg
				mechanicOrder = append(mechanicOrder, agg)
			}
			agg.cases++
			agg.revenue += c.TotalPrice
			switch class {
			case StatusCompleted:
				agg.completed++
			case StatusCancelled:
			default:
				agg.active++
			}
		}

		if c.DiscountPct > 0 && c.DiscountPct < 100 {
			discountGiven += c.TotalPrice * c.DiscountPct / (100 - c.DiscountPct)
		}
		if c.IncludeVAT {
			vatCollected += c.VATAmount
		}
	}

	// --- Revenue rollup ---
	report.TotalRevenue = RoundCurrency(totalRevenue)
	report.ServiceRevenue = RoundCurrency(serviceRevenue)
	report.PartsRevenue = RoundCurrency(partsRevenue)

	// --- Status counts ---
	report.CompletedCases = completed
	report.CancelledCases = cancelled
	report.ActiveCases = len(recs) - completed - cancelled
	report.PreliminaryAssessmentCases = preliminary
	if len(recs) > 0 {
		report.CaseCompletionRate = RoundPercent(float64(completed) / float64(len(recs)) * 100)
	}

	// --- Growth rates ---
	report.RevenueGrowth = RoundPercent(growthRate(curRevenue, prevRevenue))
	curTicket := avg(curRevenue, curCount)
	prevTicket := avg(prevRevenue, prevCount)
	report.AverageTicketGrowth = RoundPercent(growthRate(curTicket, prevTicket))
	report.AverageTicket = RoundCurrency(avg(totalRevenue, len(recs)))

	// --- Processing time ---
	if processingSamples > 0 {
		report.AverageProcessingDays = RoundPercent(processingDays / float64(processingSamples))
	}

	// --- Customer aggregation ---
	report.TotalCustomers = len(customerOrder)
	repeat := 0
	newThisPeriod := 0
	for _, agg := range customerOrder {
		if agg.cases >= 2 {
			repeat++
		}
		if !agg.earliest.Before(start) {
			newThisPeriod++
		}
	}
	if len(customerOrder) > 0 {
		report.RepeatCustomerRate = RoundPercent(float64(repeat) / float64(len(customerOrder)) * 100)
	}
	report.NewCustomersThisPeriod = newThisPeriod

	topCustomers := make([]*customerAgg, len(customerOrder))
	copy(topCustomers, customerOrder)
	sort.SliceStable(topCustomers, func(i, j int) bool {
		return topCustomers[i].spent > topCustomers[j].spent
	})
	if len(topCustomers) > 10 {
		topCustomers = topCustomers[:10]
	}
	report.TopCustomers = make([]domain.CustomerStat, 0, len(topCustomers))
	for _, agg := range topCustomers {
		report.TopCustomers = append(report.TopCustomers, domain.CustomerStat{
			Name:       agg.name,
			Phone:      agg.phone,
			Cases:      agg.cases,
			TotalSpent: RoundCurrency(agg.spent),
		})
	}

	// --- Service leaderboard ---
	topServices := make([]*serviceAgg, len(serviceOrder))
	copy(topServices, serviceOrder)
	sort.SliceStable(topServices, func(i, j int) bool {
		return topServices[i].revenue > topServices[j].revenue
	})
	if len(topServices) > 10 {
		topServices = topServices[:10]
	}
	report.TopServices = make([]domain.ServiceStat, 0, len(topServices))
	for _, agg := range topServices {
		report.TopServices = append(report.TopServices, domain.ServiceStat{
			Name:    agg.name,
			Count:   agg.count,
			Revenue: RoundCurrency(agg.revenue),
		})
	}

	// --- Breakdowns ---
	report.StatusBreakdown = buildStatusBreakdown(*statusOrder, len(recs))
	report.RepairStatusBreakdown = buildStatusBreakdown(*repairOrder, len(recs))

	typeGroups := make([]*groupAgg, len(*typeOrder))
	copy(typeGroups, *typeOrder)
	sort.SliceStable(typeGroups, func(i, j int) bool {
		return typeGroups[i].revenue > typeGroups[j].revenue
	})
	report.CaseTypeBreakdown = make([]domain.CaseTypeStat, 0, len(typeGroups))
	for _, g := range typeGroups {
		pct := 0.0
		if len(recs) > 0 {
			pct = float64(g.count) / float64(len(recs)) * 100
		}
		report.CaseTypeBreakdown = append(report.CaseTypeBreakdown, domain.CaseTypeStat{
			Type:       g.label,
			Count:      g.count,
			Revenue:    RoundCurrency(g.revenue),
			Percentage: RoundPercent(pct),
		})
	}

	// --- Mechanic stats ---
	mechs := make([]*mechanicAgg, len(mechanicOrder))
	copy(mechs, mechanicOrder)
	sort.SliceStable(mechs, func(i, j int) bool {
		return mechs[i].revenue > mechs[j].revenue
	})
	report.MechanicStats = make([]domain.MechanicStat, 0, len(mechs))
	for _, m := range mechs {
		report.MechanicStats = append(report.MechanicStats, domain.MechanicStat{
			Name:      m.name,
			Cases:     m.cases,
			Completed: m.completed,
			Active:    m.active,
			Revenue:   RoundCurrency(m.revenue),
		})
	}

	// --- Monthly trend ---
	report.MonthlyTrend = buildMonthlyTrend(recs, now, payments)

	// --- Discount / VAT ---
	report.TotalDiscountGiven = RoundCurrency(discountGiven)
	report.VATCollected = RoundCurrency(vatCollected)

	report.Payments = roundPayments(payments)

	return report
}

func avg(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// serviceDisplayName resolves the leaderboard label: prefer the Georgian
// localized name, fall back to the English one, then to "unknown".
func serviceDisplayName(s domain.ServiceLine) string {
	if n := strings.TrimSpace(s.NameKa); n != "" {
		return n
	}
	if n := strings.TrimSpace(s.NameEn); n != "" {
		return n
	}
	return "unknown"
}

// groupAgg accumulates one label bucket for the status, repair-status and
// case-type breakdowns.
type groupAgg struct {
	label   string
	count   int
	revenue float64
}

// buildStatusBreakdown orders buckets by count descending and attaches each
// bucket's share of the validated total. Insertion order breaks ties.
func buildStatusBreakdown(groups []*groupAgg, total int) []domain.StatusCount {
	sorted := make([]*groupAgg, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})

	out := make([]domain.StatusCount, 0, len(sorted))
	for _, g := range sorted {
		pct := 0.0
		if total > 0 {
			pct = float64(g.count) / float64(total) * 100
		}
		out = append(out, domain.StatusCount{
			Label:      g.label,
			Count:      g.count,
			Percentage: RoundPercent(pct),
		})
	}
	return out
}

// buildMonthlyTrend produces the fixed 12-point series ending at the current
// calendar month. Months are anchored to the first of the month so AddDate
// cannot skip short months.
func buildMonthlyTrend(recs []record, now time.Time, payments domain.PaymentSummary) []domain.MonthPoint {
	byMonth := make(map[string]*domain.MonthPoint, 12)
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	trend := make([]domain.MonthPoint, 0, 12)
	for i := 11; i >= 0; i-- {
		m := anchor.AddDate(0, -i, 0)
		key := m.Format("2006-01")
		trend = append(trend, domain.MonthPoint{
			Month: key,
			Label: monthLabels[int(m.Month())-1],
		})
	}
	for i := range trend {
		byMonth[trend[i].Month] = &trend[i]
	}

	for _, r := range recs {
		if p, ok := byMonth[r.created.Format("2006-01")]; ok {
			p.Cases++
			p.Revenue += r.c.TotalPrice
		}
	}

	collected := make(map[string]float64, len(payments.MonthlyData))
	for _, m := range payments.MonthlyData {
		collected[m.Month] = m.Collected
	}
	for i := range trend {
		trend[i].Revenue = RoundCurrency(trend[i].Revenue)
		trend[i].Collected = RoundCurrency(collected[trend[i].Month])
	}
	return trend
}

// roundPayments applies the uniform rounding policy to the externally
// supplied payment summary before it enters the report.
func roundPayments(p domain.PaymentSummary) domain.PaymentSummary {
	out := domain.PaymentSummary{
		TotalCollected:   RoundCurrency(p.TotalCollected),
		TotalInvoiced:    RoundCurrency(p.TotalInvoiced),
		TotalOutstanding: RoundCurrency(p.TotalOutstanding),
		CollectionRate:   RoundPercent(p.CollectionRate),
		MethodBreakdown:  make([]domain.PaymentMethodStat, 0, len(p.MethodBreakdown)),
		MonthlyData:      make([]domain.MonthlyPaymentData, 0, len(p.MonthlyData)),
	}
	for _, m := range p.MethodBreakdown {
		out.MethodBreakdown = append(out.MethodBreakdown, domain.PaymentMethodStat{
			Method: m.Method,
			Amount: RoundCurrency(m.Amount),
			Count:  m.Count,
		})
	}
	for _, m := range p.MonthlyData {
		out.MonthlyData = append(out.MonthlyData, domain.MonthlyPaymentData{
			Month:     m.Month,
			Collected: RoundCurrency(m.Collected),
		})
	}
	return out
}
