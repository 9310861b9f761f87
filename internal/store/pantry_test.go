package store

import (
	"testing"

	"github.com/majidsadri/mireva/internal/model"
)

func TestPantryCreateEnrollsOwner(t *testing.T) {
	db := setupTestDB(t)
	u, p := seedOwner(t, db, "alice@example.com")
	ps := NewPantryStore(db)

	if p.Name != "Home" || p.OwnerID != u.ID {
		t.Errorf("pantry = %+v", p)
	}
	m, err := ps.GetMember(p.ID, u.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil || m.Role != model.RoleOwner {
		t.Fatalf("member = %+v, want owner", m)
	}
}

func TestPantryGetByIDNotFound(t *testing.T) {
	ps := NewPantryStore(setupTestDB(t))

	p, err := ps.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
}

func TestPantryRename(t *testing.T) {
	db := setupTestDB(t)
	_, p := seedOwner(t, db, "alice@example.com")

	got, err := NewPantryStore(db).Rename(p.ID, "Cabin")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got.Name != "Cabin" {
		t.Errorf("name = %q, want %q", got.Name, "Cabin")
	}
}

func TestPantryMembers(t *testing.T) {
	db := setupTestDB(t)
	owner, p := seedOwner(t, db, "alice@example.com")
	ps := NewPantryStore(db)

	bob, err := NewUserStore(db).Create("bob@example.com", "Bob", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := ps.AddMember(p.ID, bob.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := ps.AddMember(p.ID, bob.ID, model.RoleMember); err == nil {
		t.Error("expected error adding the same member twice")
	}

	members, err := ps.ListMembers(p.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].UserID != owner.ID || members[1].Email != "bob@example.com" {
		t.Errorf("members = %+v", members)
	}

	bobSession, err := NewSessionStore(db).Create(bob.ID, p.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := ps.RemoveMember(p.ID, bob.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	m, err := ps.GetMember(p.ID, bob.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m != nil {
		t.Error("expected member to be removed")
	}
	if sess, _ := NewSessionStore(db).GetByToken(bobSession.Token); sess != nil {
		t.Error("expected removed member's pantry session to be deleted")
	}
}

func TestPantryListForUser(t *testing.T) {
	db := setupTestDB(t)
	u, p := seedOwner(t, db, "alice@example.com")
	ps := NewPantryStore(db)

	second, err := ps.Create("Office", u.ID)
	if err != nil {
		t.Fatalf("create pantry: %v", err)
	}
	pantries, err := ps.ListForUser(u.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(pantries) != 2 || pantries[0].ID != p.ID || pantries[1].ID != second.ID {
		t.Errorf("pantries = %+v", pantries)
	}
}

func TestPantryListAvailable(t *testing.T) {
	db := setupTestDB(t)
	_, home := seedOwner(t, db, "alice@example.com")
	bob, office := seedOwner(t, db, "bob@example.com")
	ps := NewPantryStore(db)

	if _, err := ps.Rename(office.ID, "Office"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := NewJoinRequestStore(db).Create(home.ID, bob.ID); err != nil {
		t.Fatalf("create join request: %v", err)
	}

	listings, err := ps.ListAvailable(bob.ID)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	homeListing, officeListing := listings[0], listings[1]
	if homeListing.ID != home.ID || homeListing.IsMember || !homeListing.Pending || homeListing.MemberCount != 1 {
		t.Errorf("home listing = %+v", homeListing)
	}
	if officeListing.ID != office.ID || !officeListing.IsMember || officeListing.Pending {
		t.Errorf("office listing = %+v", officeListing)
	}
}
