package model

import "time"

// SavedRecipe is a recommended recipe a user kept. SavedAt is zero when the
// client supplied a date that could not be parsed.
type SavedRecipe struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Ingredients []string  `json:"ingredients"`
	SavedAt     time.Time `json:"saved_at"`
	CreatedAt   time.Time `json:"created_at"`
}
