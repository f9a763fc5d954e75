package analytics

// Case statuses are free-form localized labels, not an enum the engine owns.
// Classification happens by literal membership in these fixed bilingual
// sets; the display string itself is preserved for breakdown output.

// StatusClass is the engine's internal read of a status label.
type StatusClass int

const (
	StatusOther StatusClass = iota
	StatusCompleted
	StatusCancelled
)

var completedLabels = map[string]struct{}{
	"Completed":    {},
	"completed":    {},
	"დასრულებული":  {},
	"დასრულებულია": {},
	"შესრულებული":  {},
}

var cancelledLabels = map[string]struct{}{
	"Cancelled":   {},
	"cancelled":   {},
	"გაუქმებული":  {},
	"გაუქმებულია": {},
}

var preliminaryLabels = map[string]struct{}{
	"Preliminary Assessment": {},
	"Preliminary":            {},
	"წინასწარი შეფასება":     {},
	"წინასწარი":              {},
}

// ClassifyStatus maps a status label to its class. Anything not in the
// completed/cancelled sets counts as active work.
func ClassifyStatus(status string) StatusClass {
	if _, ok := completedLabels[status]; ok {
		return StatusCompleted
	}
	if _, ok := cancelledLabels[status]; ok {
		return StatusCancelled
	}
	return StatusOther
}

// IsPreliminary reports whether the label marks a preliminary assessment.
// Preliminary is an overlay on the active set, not a class of its own.
func IsPreliminary(status string) bool {
	_, ok := preliminaryLabels[status]
	return ok
}
