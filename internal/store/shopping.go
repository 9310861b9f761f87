package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/majidsadri/mireva/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var checkedBy, addedBy sql.NullInt64
	var checkedAt sql.NullTime
	var checked int

	err := scanner.Scan(
		&item.ID, &item.PantryID, &item.Name, &item.Category, &item.Icon, &item.Source,
		&checked, &checkedBy, &checkedAt, &addedBy, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Checked = checked != 0
	if checkedBy.Valid {
		item.CheckedBy = &checkedBy.Int64
	}
	if checkedAt.Valid {
		item.CheckedAt = &checkedAt.Time
	}
	if addedBy.Valid {
		item.AddedBy = &addedBy.Int64
	}
	return &item, nil
}

const shoppingCols = `id, pantry_id, name, category, icon, source, checked, checked_by, checked_at, added_by, created_at`

func (s *ShoppingStore) GetByID(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

// FindOpenByName returns an unchecked item with the same name, ignoring case.
func (s *ShoppingStore) FindOpenByName(pantryID int64, name string) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(
		`SELECT `+shoppingCols+` FROM shopping_items
		 WHERE pantry_id = ? AND checked = 0 AND lower(name) = lower(?)
		 ORDER BY id ASC LIMIT 1`,
		pantryID, name,
	)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find shopping item: %w", err)
	}
	return item, nil
}

func (s *ShoppingStore) Create(pantryID int64, name, category, icon, source string, addedBy *int64) (*model.ShoppingItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_items (pantry_id, name, category, icon, source, added_by) VALUES (?, ?, ?, ?, ?, ?)`,
		pantryID, name, category, icon, source, nullInt64(addedBy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) ListByPantry(pantryID int64) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingCols+` FROM shopping_items WHERE pantry_id = ? ORDER BY checked ASC, category ASC, created_at ASC, id ASC`,
		pantryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ShoppingStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}

func (s *ShoppingStore) ToggleChecked(id int64, checkedBy *int64) (*model.ShoppingItem, error) {
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	if item.Checked {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET checked = 0, checked_by = NULL, checked_at = NULL WHERE id = ?`,
			id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET checked = 1, checked_by = ?, checked_at = ? WHERE id = ?`,
			nullInt64(checkedBy), time.Now().UTC(), id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle checked: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) ClearChecked(pantryID int64) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM shopping_items WHERE pantry_id = ? AND checked = 1`,
		pantryID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear checked: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// Purchase moves a shopping item into the pantry inventory in one
// transaction and returns the new pantry item's id.
func (s *ShoppingStore) Purchase(id int64, expiry time.Time, addedBy *int64) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get shopping item: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO pantry_items (pantry_id, name, category, icon, expiry_date, added_by) VALUES (?, ?, ?, ?, ?, ?)`,
		item.PantryID, item.Name, item.Category, item.Icon, nullTime(&expiry), nullInt64(addedBy),
	)
	if err != nil {
		return 0, fmt.Errorf("insert pantry item: %w", err)
	}
	pantryItemID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM shopping_items WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("delete shopping item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return pantryItemID, nil
}
