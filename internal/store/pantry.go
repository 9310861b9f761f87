package store

import (
	"database/sql"
	"fmt"

	"github.com/majidsadri/mireva/internal/model"
)

type PantryStore struct {
	db *sql.DB
}

func NewPantryStore(db *sql.DB) *PantryStore {
	return &PantryStore{db: db}
}

func scanPantry(scanner interface{ Scan(...any) error }) (*model.Pantry, error) {
	var p model.Pantry
	err := scanner.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPantryMember(scanner interface{ Scan(...any) error }) (*model.PantryMember, error) {
	var m model.PantryMember
	err := scanner.Scan(&m.ID, &m.PantryID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const pantryCols = `id, name, owner_id, created_at, updated_at`
const pantryMemberCols = `id, pantry_id, user_id, role, created_at, updated_at`

// Create inserts a pantry and enrolls its owner in a single transaction.
func (s *PantryStore) Create(name string, ownerID int64) (*model.Pantry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO pantries (name, owner_id) VALUES (?, ?)`, name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("insert pantry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO pantry_members (pantry_id, user_id, role) VALUES (?, ?, ?)`,
		id, ownerID, model.RoleOwner,
	); err != nil {
		return nil, fmt.Errorf("add owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *PantryStore) GetByID(id int64) (*model.Pantry, error) {
	row := s.db.QueryRow(`SELECT `+pantryCols+` FROM pantries WHERE id = ?`, id)
	p, err := scanPantry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry: %w", err)
	}
	return p, nil
}

func (s *PantryStore) Rename(id int64, name string) (*model.Pantry, error) {
	_, err := s.db.Exec(`UPDATE pantries SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("rename pantry: %w", err)
	}
	return s.GetByID(id)
}

func (s *PantryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM pantries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pantry: %w", err)
	}
	return nil
}

// ListForUser returns the pantries the user belongs to, oldest membership first.
func (s *PantryStore) ListForUser(userID int64) ([]model.Pantry, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.name, p.owner_id, p.created_at, p.updated_at
		 FROM pantries p
		 JOIN pantry_members pm ON p.id = pm.pantry_id
		 WHERE pm.user_id = ?
		 ORDER BY pm.created_at ASC, p.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pantries for user: %w", err)
	}
	defer rows.Close()

	var pantries []model.Pantry
	for rows.Next() {
		p, err := scanPantry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry: %w", err)
		}
		pantries = append(pantries, *p)
	}
	return pantries, rows.Err()
}

// ListAvailable returns every pantry annotated with the user's membership and
// pending-request state.
func (s *PantryStore) ListAvailable(userID int64) ([]model.PantryListing, error) {
	rows, err := s.db.Query(
		`SELECT p.id, p.name, p.owner_id, p.created_at, p.updated_at,
		        (SELECT COUNT(*) FROM pantry_members WHERE pantry_id = p.id),
		        EXISTS (SELECT 1 FROM pantry_members WHERE pantry_id = p.id AND user_id = ?),
		        EXISTS (SELECT 1 FROM join_requests WHERE pantry_id = p.id AND user_id = ? AND status = 'pending')
		 FROM pantries p
		 ORDER BY p.name ASC, p.id ASC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list available pantries: %w", err)
	}
	defer rows.Close()

	var listings []model.PantryListing
	for rows.Next() {
		var l model.PantryListing
		var isMember, pending int
		if err := rows.Scan(
			&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt,
			&l.MemberCount, &isMember, &pending,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		l.IsMember = isMember != 0
		l.Pending = pending != 0
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *PantryStore) AddMember(pantryID, userID int64, role string) (*model.PantryMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO pantry_members (pantry_id, user_id, role) VALUES (?, ?, ?)`,
		pantryID, userID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+pantryMemberCols+` FROM pantry_members WHERE id = ?`, id)
	return scanPantryMember(row)
}

// RemoveMember drops the membership and any sessions bound to that pantry.
func (s *PantryStore) RemoveMember(pantryID, userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM pantry_members WHERE pantry_id = ? AND user_id = ?`,
		pantryID, userID,
	); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM sessions WHERE pantry_id = ? AND user_id = ?`,
		pantryID, userID,
	); err != nil {
		return fmt.Errorf("remove member sessions: %w", err)
	}
	return tx.Commit()
}

func (s *PantryStore) GetMember(pantryID, userID int64) (*model.PantryMember, error) {
	row := s.db.QueryRow(
		`SELECT `+pantryMemberCols+` FROM pantry_members WHERE pantry_id = ? AND user_id = ?`,
		pantryID, userID,
	)
	m, err := scanPantryMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *PantryStore) ListMembers(pantryID int64) ([]model.PantryMemberDetail, error) {
	rows, err := s.db.Query(
		`SELECT pm.id, pm.pantry_id, pm.user_id, pm.role, pm.created_at, pm.updated_at, u.email, u.name
		 FROM pantry_members pm
		 JOIN users u ON u.id = pm.user_id
		 WHERE pm.pantry_id = ?
		 ORDER BY pm.created_at ASC, pm.id ASC`,
		pantryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.PantryMemberDetail
	for rows.Next() {
		var m model.PantryMemberDetail
		if err := rows.Scan(
			&m.ID, &m.PantryID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt, &m.Email, &m.Name,
		); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
