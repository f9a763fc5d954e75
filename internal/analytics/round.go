// Package analytics implements the dashboard aggregation pipeline:
// normalize raw store records into cases, deduplicate cross-source overlap,
// drop unusable rows, and compute the financial/operational rollups. The
// package is pure: no I/O, no clocks beyond the caller-supplied "now", no
// state shared between calls.
package analytics

import "math"

// RoundCurrency rounds a GEL amount to 2 decimals. Every currency figure in
// the final report passes through here so equality-based consumers see
// reproducible values.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundPercent rounds a percentage (or other 1-decimal display metric) to
// 1 decimal.
func RoundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}
