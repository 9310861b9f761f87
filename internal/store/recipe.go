package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/majidsadri/mireva/internal/model"
)

// ErrDuplicateRecipe is returned when the user already saved a recipe with
// the same name.
var ErrDuplicateRecipe = errors.New("recipe already saved")

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.SavedRecipe, error) {
	var r model.SavedRecipe
	var ingredients string
	var savedAt sql.NullTime
	err := scanner.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &ingredients, &savedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Ingredients = decodeStrings(ingredients)
	if savedAt.Valid {
		r.SavedAt = savedAt.Time
	}
	return &r, nil
}

const recipeCols = `id, user_id, name, description, ingredients, saved_at, created_at`

// Create stores a recipe under a fresh UUID. A zero savedAt is stored as
// unknown.
func (s *RecipeStore) Create(userID int64, name, description string, ingredients []string, savedAt time.Time) (*model.SavedRecipe, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO saved_recipes (id, user_id, name, description, ingredients, saved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, name, description, encodeStrings(ingredients), nullTime(&savedAt),
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateRecipe
	}
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	return s.GetByID(userID, id)
}

func (s *RecipeStore) GetByID(userID int64, id string) (*model.SavedRecipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM saved_recipes WHERE user_id = ? AND id = ?`, userID, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

// ListByUser returns recipes most recently saved first; unknown dates last.
func (s *RecipeStore) ListByUser(userID int64) ([]model.SavedRecipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM saved_recipes WHERE user_id = ?
		 ORDER BY saved_at IS NULL, saved_at DESC, created_at DESC, name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []model.SavedRecipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

// Delete removes the recipe whose id or name equals key and reports whether
// one was found.
func (s *RecipeStore) Delete(userID int64, key string) (bool, error) {
	result, err := s.db.Exec(
		`DELETE FROM saved_recipes WHERE user_id = ? AND (id = ? OR name = ?)`,
		userID, key, key,
	)
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return count > 0, nil
}
