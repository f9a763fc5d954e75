package analytics

import (
	"fmt"
	"strings"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

// Dedupe collapses records that describe the same real-world transaction
// when overlapping sources were queried. Records carrying a CPanel invoice
// id get an exact key; the rest fall back to a composite natural key of
// (phone, amount, creation day), since the two stores share no primary key.
// First occurrence wins in both cases.
//
// The composite key is a heuristic: two unrelated same-day, same-amount
// cases for one customer will merge, and the same transaction logged with
// different amounts across sources will not. That trade-off is intentional.
func Dedupe(cases []domain.Case) []domain.Case {
	seen := make(map[string]struct{}, len(cases))
	out := make([]domain.Case, 0, len(cases))

	for _, c := range cases {
		key := dedupeKey(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func dedupeKey(c domain.Case) string {
	if id := strings.TrimSpace(c.CPanelInvoiceID); id != "" {
		return "cpanel_" + id
	}
	return fmt.Sprintf("%s|%.2f|%s", strings.TrimSpace(c.CustomerPhone), c.TotalPrice, dayPortion(c.CreatedAt))
}

// dayPortion reduces a raw date string to its date part so timestamps from
// different sources bucket to the same day.
func dayPortion(raw string) string {
	if t, ok := parseDate(raw); ok {
		return t.Format("2006-01-02")
	}
	if len(raw) >= 10 {
		return raw[:10]
	}
	return raw
}
