package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/majidsadri/mireva/internal/auth"
	"github.com/majidsadri/mireva/internal/food"
	"github.com/majidsadri/mireva/internal/model"
	"github.com/majidsadri/mireva/internal/store"
	ws "github.com/majidsadri/mireva/internal/websocket"
)

type shoppingFixture struct {
	db  *sql.DB
	h   *ShoppingHandler
	ac  auth.AuthContext
	now time.Time
}

func newShoppingFixture(t *testing.T) *shoppingFixture {
	t.Helper()
	db := setupTestDB(t)
	f := &shoppingFixture{
		db:  db,
		ac:  seedAccount(t, db, "alice@example.com"),
		now: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	f.h = NewShoppingHandler(
		store.NewShoppingStore(db),
		store.NewPantryItemStore(db),
		store.NewRecipeStore(db),
		store.NewUserStore(db),
		store.NewSuggestionCache(db),
		food.Default(),
		time.Hour,
		ws.NewHub(testLogger()),
		testLogger(),
	)
	f.h.now = func() time.Time { return f.now }
	return f
}

func (f *shoppingFixture) create(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.h.Create(rec, newRequest(http.MethodPost, "/api/shopping/items", body, &f.ac))
	return rec
}

func (f *shoppingFixture) onItem(fn http.HandlerFunc, id int64) *httptest.ResponseRecorder {
	sid := strconv.FormatInt(id, 10)
	req := newRequest(http.MethodPost, "/api/shopping/items/"+sid, "", &f.ac)
	req.SetPathValue("id", sid)
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func (f *shoppingFixture) suggestions(t *testing.T, target string) suggestionsResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	f.h.Suggestions(rec, newRequest(http.MethodGet, target, "", &f.ac))
	assertStatus(t, rec, http.StatusOK)
	return decodeResponse[suggestionsResponse](t, rec)
}

func TestShoppingCreate(t *testing.T) {
	f := newShoppingFixture(t)

	rec := f.create(t, `{"name":"greek yogurt"}`)
	assertStatus(t, rec, http.StatusCreated)
	item := decodeResponse[model.ShoppingItem](t, rec)
	if item.Category != "Dairy" {
		t.Errorf("category = %q, want Dairy", item.Category)
	}
	if item.Source != model.SourceManual {
		t.Errorf("source = %q, want manual", item.Source)
	}
	if item.Icon != food.Icon("greek yogurt") {
		t.Errorf("icon = %q", item.Icon)
	}

	rec = f.create(t, `{"name":"Greek Yogurt","source":"suggestion"}`)
	assertStatus(t, rec, http.StatusOK)
	if dup := decodeResponse[model.ShoppingItem](t, rec); dup.ID != item.ID {
		t.Errorf("duplicate add returned id %d, want existing %d", dup.ID, item.ID)
	}
}

func TestShoppingCreateValidation(t *testing.T) {
	f := newShoppingFixture(t)
	assertStatus(t, f.create(t, `{"name":""}`), http.StatusBadRequest)
	assertStatus(t, f.create(t, `{"name":"eggs","source":"fridge"}`), http.StatusBadRequest)
}

func TestShoppingCheckAndClear(t *testing.T) {
	f := newShoppingFixture(t)
	eggs := decodeResponse[model.ShoppingItem](t, f.create(t, `{"name":"eggs"}`))
	f.create(t, `{"name":"bread"}`)

	rec := f.onItem(f.h.ToggleChecked, eggs.ID)
	assertStatus(t, rec, http.StatusOK)
	if got := decodeResponse[model.ShoppingItem](t, rec); !got.Checked {
		t.Error("expected eggs to be checked")
	}

	rec = httptest.NewRecorder()
	f.h.ClearChecked(rec, newRequest(http.MethodPost, "/api/shopping/clear-checked", "", &f.ac))
	assertStatus(t, rec, http.StatusOK)
	if got := decodeResponse[map[string]int64](t, rec); got["cleared"] != 1 {
		t.Errorf("cleared = %d, want 1", got["cleared"])
	}

	rec = httptest.NewRecorder()
	f.h.List(rec, newRequest(http.MethodGet, "/api/shopping/items", "", &f.ac))
	items := decodeResponse[[]model.ShoppingItem](t, rec)
	if len(items) != 1 || items[0].Name != "bread" {
		t.Errorf("items = %+v, want only bread", items)
	}
}

func TestShoppingPurchase(t *testing.T) {
	f := newShoppingFixture(t)
	item := decodeResponse[model.ShoppingItem](t, f.create(t, `{"name":"whole milk"}`))

	rec := f.onItem(f.h.Purchase, item.ID)
	assertStatus(t, rec, http.StatusCreated)

	got := decodeResponse[model.PantryItem](t, rec)
	if got.Name != "whole milk" || got.Category != "Dairy" {
		t.Errorf("pantry item = %+v", got)
	}
	if got.PantryID != f.ac.PantryID {
		t.Errorf("pantry id = %d, want %d", got.PantryID, f.ac.PantryID)
	}
	if got.ExpiryDate == nil || !got.ExpiryDate.Equal(f.now.Add(10*24*time.Hour)) {
		t.Errorf("expiry = %v, want ten days out", got.ExpiryDate)
	}

	left, err := store.NewShoppingStore(f.db).GetByID(item.ID)
	if err != nil {
		t.Fatalf("get shopping item: %v", err)
	}
	if left != nil {
		t.Error("expected shopping item to be removed after purchase")
	}

	assertStatus(t, f.onItem(f.h.Purchase, item.ID), http.StatusNotFound)
}

func TestShoppingItemOtherPantryNotFound(t *testing.T) {
	f := newShoppingFixture(t)
	item := decodeResponse[model.ShoppingItem](t, f.create(t, `{"name":"eggs"}`))

	other := seedAccount(t, f.db, "bob@example.com")
	f.ac = other
	assertStatus(t, f.onItem(f.h.Delete, item.ID), http.StatusNotFound)
	assertStatus(t, f.onItem(f.h.ToggleChecked, item.ID), http.StatusNotFound)
	assertStatus(t, f.onItem(f.h.Purchase, item.ID), http.StatusNotFound)
}

func TestShoppingSuggestions(t *testing.T) {
	f := newShoppingFixture(t)
	rs := store.NewRecipeStore(f.db)
	if _, err := rs.Create(f.ac.UserID, "Tomato Soup", "", []string{"2 cups chopped tomato", "1 onion"}, f.now); err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if _, err := rs.Create(f.ac.UserID, "Pasta", "", []string{"1 onion", "200g pasta"}, f.now.AddDate(0, 0, -10)); err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	first := f.suggestions(t, "/api/shopping/suggestions")
	if first.Cached {
		t.Error("first call should compute, not hit the cache")
	}
	if len(first.Suggestions) != 3 || first.Suggestions[0].Name != "onion" {
		t.Fatalf("suggestions = %+v, want onion first of 3", first.Suggestions)
	}
	if !first.ExpiresAt.Equal(f.now.Add(time.Hour)) {
		t.Errorf("expires_at = %v", first.ExpiresAt)
	}

	f.now = f.now.Add(30 * time.Minute)
	second := f.suggestions(t, "/api/shopping/suggestions")
	if !second.Cached {
		t.Error("second call within ttl should be cached")
	}
	if len(second.Suggestions) != 3 || second.Suggestions[0].Name != "onion" {
		t.Errorf("cached suggestions = %+v", second.Suggestions)
	}

	refreshed := f.suggestions(t, "/api/shopping/suggestions?refresh=true")
	if refreshed.Cached {
		t.Error("refresh should bypass the cache")
	}

	f.now = f.now.Add(2 * time.Hour)
	if expired := f.suggestions(t, "/api/shopping/suggestions"); expired.Cached {
		t.Error("entry older than ttl should be recomputed")
	}
}

func TestShoppingSuggestionsNoRecipes(t *testing.T) {
	f := newShoppingFixture(t)

	got := f.suggestions(t, "/api/shopping/suggestions")
	if got.Suggestions == nil || len(got.Suggestions) != 0 {
		t.Errorf("suggestions = %v, want empty list", got.Suggestions)
	}
}

func TestShoppingSuggestionsUsePreferences(t *testing.T) {
	f := newShoppingFixture(t)
	if _, err := store.NewUserStore(f.db).UpdateProfile(f.ac.UserID, "alice", []string{"italian"}, nil); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	rs := store.NewRecipeStore(f.db)
	old := f.now.AddDate(0, 0, -30)
	if _, err := rs.Create(f.ac.UserID, "Italian Risotto", "", []string{"arborio rice"}, old); err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if _, err := rs.Create(f.ac.UserID, "Chili", "", []string{"kidney beans"}, old); err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	got := f.suggestions(t, "/api/shopping/suggestions")
	if len(got.Suggestions) != 2 {
		t.Fatalf("suggestions = %+v", got.Suggestions)
	}
	top := got.Suggestions[0]
	if top.Name != "arborio rice" || top.Score != 3 || top.Reason != "Matches your cuisine preference" {
		t.Errorf("top = %+v, want arborio rice boosted by cuisine", top)
	}
}
