package model

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

type Pantry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PantryMember struct {
	ID        int64     `json:"id"`
	PantryID  int64     `json:"pantry_id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PantryMemberDetail is a member joined with the user's display fields.
type PantryMemberDetail struct {
	PantryMember
	Email string `json:"email"`
	Name  string `json:"name"`
}

const (
	JoinPending  = "pending"
	JoinApproved = "approved"
	JoinRejected = "rejected"
)

type JoinRequest struct {
	ID        int64      `json:"id"`
	PantryID  int64      `json:"pantry_id"`
	UserID    int64      `json:"user_id"`
	Status    string     `json:"status"`
	DecidedBy *int64     `json:"decided_by"`
	DecidedAt *time.Time `json:"decided_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// JoinRequestDetail carries the requester's name and email for review.
type JoinRequestDetail struct {
	JoinRequest
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PantryListing is a pantry as seen by a user browsing available pantries.
type PantryListing struct {
	Pantry
	MemberCount int  `json:"member_count"`
	IsMember    bool `json:"is_member"`
	Pending     bool `json:"pending"`
}
