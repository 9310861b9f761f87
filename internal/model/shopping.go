package model

import "time"

const (
	SourceManual     = "manual"
	SourceSuggestion = "suggestion"
)

type ShoppingItem struct {
	ID        int64      `json:"id"`
	PantryID  int64      `json:"pantry_id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Icon      string     `json:"icon"`
	Source    string     `json:"source"`
	Checked   bool       `json:"checked"`
	CheckedBy *int64     `json:"checked_by"`
	CheckedAt *time.Time `json:"checked_at"`
	AddedBy   *int64     `json:"added_by"`
	CreatedAt time.Time  `json:"created_at"`
}
