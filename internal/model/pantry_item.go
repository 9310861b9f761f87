package model

import "time"

type PantryItem struct {
	ID         int64      `json:"id"`
	PantryID   int64      `json:"pantry_id"`
	Name       string     `json:"name"`
	Amount     string     `json:"amount"`
	Unit       string     `json:"unit"`
	Category   string     `json:"category"`
	Icon       string     `json:"icon"`
	ExpiryDate *time.Time `json:"expiry_date"`
	AddedBy    *int64     `json:"added_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Expired reports whether the item's expiry date is before now.
func (p PantryItem) Expired(now time.Time) bool {
	return p.ExpiryDate != nil && p.ExpiryDate.Before(now)
}

// PantryGroup is one category bucket of the grouped pantry view.
type PantryGroup struct {
	Category string       `json:"category"`
	Icon     string       `json:"icon"`
	Items    []PantryItem `json:"items"`
}
