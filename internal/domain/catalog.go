package domain

import "time"

// CatalogItem is one entry of the shop's service catalog: a nameable unit of
// work with a default rate, used to pre-fill estimate service lines.
type CatalogItem struct {
	ID       string  `json:"id"`
	NameKa   string  `json:"nameKa"`
	NameEn   string  `json:"nameEn,omitempty"`
	Category string  `json:"category,omitempty"`
	UnitRate float64 `json:"unitRate"`
	Unit     string  `json:"unit,omitempty"` // hour, panel, piece
	Active   bool    `json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
