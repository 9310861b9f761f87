package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/majidsadri/mireva/internal/model"
)

type PantryItemStore struct {
	db *sql.DB
}

func NewPantryItemStore(db *sql.DB) *PantryItemStore {
	return &PantryItemStore{db: db}
}

func scanPantryItem(scanner interface{ Scan(...any) error }) (*model.PantryItem, error) {
	var item model.PantryItem
	var expiry sql.NullTime
	var addedBy sql.NullInt64
	err := scanner.Scan(
		&item.ID, &item.PantryID, &item.Name, &item.Amount, &item.Unit,
		&item.Category, &item.Icon, &expiry, &addedBy, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		item.ExpiryDate = &expiry.Time
	}
	if addedBy.Valid {
		item.AddedBy = &addedBy.Int64
	}
	return &item, nil
}

const pantryItemCols = `id, pantry_id, name, amount, unit, category, icon, expiry_date, added_by, created_at, updated_at`

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func (s *PantryItemStore) Create(item model.PantryItem) (*model.PantryItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO pantry_items (pantry_id, name, amount, unit, category, icon, expiry_date, added_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.PantryID, item.Name, item.Amount, item.Unit, item.Category, item.Icon,
		nullTime(item.ExpiryDate), nullInt64(item.AddedBy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert pantry item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PantryItemStore) GetByID(id int64) (*model.PantryItem, error) {
	row := s.db.QueryRow(`SELECT `+pantryItemCols+` FROM pantry_items WHERE id = ?`, id)
	item, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}
	return item, nil
}

// ListByPantry orders items soonest-expiring first; undated items come last.
func (s *PantryItemStore) ListByPantry(pantryID int64) ([]model.PantryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+pantryItemCols+` FROM pantry_items
		 WHERE pantry_id = ?
		 ORDER BY expiry_date IS NULL, expiry_date ASC, name ASC, id ASC`,
		pantryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pantry items: %w", err)
	}
	defer rows.Close()

	var items []model.PantryItem
	for rows.Next() {
		item, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *PantryItemStore) Update(item model.PantryItem) (*model.PantryItem, error) {
	_, err := s.db.Exec(
		`UPDATE pantry_items SET name = ?, amount = ?, unit = ?, category = ?, icon = ?, expiry_date = ?
		 WHERE id = ?`,
		item.Name, item.Amount, item.Unit, item.Category, item.Icon, nullTime(item.ExpiryDate), item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update pantry item: %w", err)
	}
	return s.GetByID(item.ID)
}

func (s *PantryItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM pantry_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return nil
}
