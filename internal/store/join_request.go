package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/majidsadri/mireva/internal/model"
)

type JoinRequestStore struct {
	db *sql.DB
}

func NewJoinRequestStore(db *sql.DB) *JoinRequestStore {
	return &JoinRequestStore{db: db}
}

func scanJoinRequest(scanner interface{ Scan(...any) error }) (*model.JoinRequest, error) {
	var r model.JoinRequest
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime
	err := scanner.Scan(&r.ID, &r.PantryID, &r.UserID, &r.Status, &decidedBy, &decidedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if decidedBy.Valid {
		r.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		r.DecidedAt = &decidedAt.Time
	}
	return &r, nil
}

const joinRequestCols = `id, pantry_id, user_id, status, decided_by, decided_at, created_at`

func (s *JoinRequestStore) Create(pantryID, userID int64) (*model.JoinRequest, error) {
	result, err := s.db.Exec(
		`INSERT INTO join_requests (pantry_id, user_id, status) VALUES (?, ?, ?)`,
		pantryID, userID, model.JoinPending,
	)
	if err != nil {
		return nil, fmt.Errorf("insert join request: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *JoinRequestStore) GetByID(id int64) (*model.JoinRequest, error) {
	row := s.db.QueryRow(`SELECT `+joinRequestCols+` FROM join_requests WHERE id = ?`, id)
	r, err := scanJoinRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get join request: %w", err)
	}
	return r, nil
}

// GetPending returns the user's open request for the pantry, if any.
func (s *JoinRequestStore) GetPending(pantryID, userID int64) (*model.JoinRequest, error) {
	row := s.db.QueryRow(
		`SELECT `+joinRequestCols+` FROM join_requests
		 WHERE pantry_id = ? AND user_id = ? AND status = ?
		 ORDER BY id DESC LIMIT 1`,
		pantryID, userID, model.JoinPending,
	)
	r, err := scanJoinRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending join request: %w", err)
	}
	return r, nil
}

func (s *JoinRequestStore) ListPending(pantryID int64) ([]model.JoinRequestDetail, error) {
	rows, err := s.db.Query(
		`SELECT jr.id, jr.pantry_id, jr.user_id, jr.status, jr.decided_by, jr.decided_at, jr.created_at,
		        u.email, u.name
		 FROM join_requests jr
		 JOIN users u ON u.id = jr.user_id
		 WHERE jr.pantry_id = ? AND jr.status = ?
		 ORDER BY jr.created_at ASC, jr.id ASC`,
		pantryID, model.JoinPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending join requests: %w", err)
	}
	defer rows.Close()

	var requests []model.JoinRequestDetail
	for rows.Next() {
		var d model.JoinRequestDetail
		var decidedBy sql.NullInt64
		var decidedAt sql.NullTime
		if err := rows.Scan(
			&d.ID, &d.PantryID, &d.UserID, &d.Status, &decidedBy, &decidedAt, &d.CreatedAt,
			&d.Email, &d.Name,
		); err != nil {
			return nil, fmt.Errorf("scan join request: %w", err)
		}
		requests = append(requests, d)
	}
	return requests, rows.Err()
}

// Decide closes a pending request. Approval enrolls the requester as a
// member in the same transaction. Requests that are no longer pending are
// returned unchanged.
func (s *JoinRequestStore) Decide(id int64, approve bool, decidedBy int64) (*model.JoinRequest, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+joinRequestCols+` FROM join_requests WHERE id = ?`, id)
	r, err := scanJoinRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get join request: %w", err)
	}
	if r.Status != model.JoinPending {
		return r, nil
	}

	status := model.JoinRejected
	if approve {
		status = model.JoinApproved
	}
	if _, err := tx.Exec(
		`UPDATE join_requests SET status = ?, decided_by = ?, decided_at = ? WHERE id = ?`,
		status, decidedBy, time.Now().UTC(), id,
	); err != nil {
		return nil, fmt.Errorf("decide join request: %w", err)
	}
	if approve {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO pantry_members (pantry_id, user_id, role) VALUES (?, ?, ?)`,
			r.PantryID, r.UserID, model.RoleMember,
		); err != nil {
			return nil, fmt.Errorf("add member: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}
