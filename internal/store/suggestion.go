package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/majidsadri/mireva/internal/suggest"
)

// SuggestionCache keeps the last computed suggestion list per user.
type SuggestionCache struct {
	db *sql.DB
}

func NewSuggestionCache(db *sql.DB) *SuggestionCache {
	return &SuggestionCache{db: db}
}

// Get returns the cached list and when it was generated. A nil list means
// nothing is cached.
func (s *SuggestionCache) Get(userID int64) ([]suggest.Suggestion, time.Time, error) {
	var payload string
	var generatedAt time.Time
	err := s.db.QueryRow(
		`SELECT payload, generated_at FROM suggestion_cache WHERE user_id = ?`,
		userID,
	).Scan(&payload, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get cached suggestions: %w", err)
	}

	list := []suggest.Suggestion{}
	if err := json.Unmarshal([]byte(payload), &list); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode cached suggestions: %w", err)
	}
	return list, generatedAt, nil
}

func (s *SuggestionCache) Put(userID int64, list []suggest.Suggestion, generatedAt time.Time) error {
	if list == nil {
		list = []suggest.Suggestion{}
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO suggestion_cache (user_id, payload, generated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, generated_at = excluded.generated_at`,
		userID, string(payload), generatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("put cached suggestions: %w", err)
	}
	return nil
}

func (s *SuggestionCache) Invalidate(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM suggestion_cache WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("invalidate suggestions: %w", err)
	}
	return nil
}
