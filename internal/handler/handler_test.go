package handler

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/majidsadri/mireva/internal/auth"
	"github.com/majidsadri/mireva/internal/database"
	"github.com/majidsadri/mireva/internal/model"
	"github.com/majidsadri/mireva/internal/store"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedAccount creates a user who owns a pantry and has a session bound to it.
func seedAccount(t *testing.T, db *sql.DB, email string) auth.AuthContext {
	t.Helper()
	u, err := store.NewUserStore(db).Create(email, strings.SplitN(email, "@", 2)[0], "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	p, err := store.NewPantryStore(db).Create(u.Name+"'s Pantry", u.ID)
	if err != nil {
		t.Fatalf("create pantry: %v", err)
	}
	sess, err := store.NewSessionStore(db).Create(u.ID, p.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return auth.AuthContext{UserID: u.ID, PantryID: p.ID, Role: model.RoleOwner, SessionID: sess.ID}
}

// newRequest builds a request carrying ac, or no caller when ac is nil.
func newRequest(method, target, body string, ac *auth.AuthContext) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if ac != nil {
		req = req.WithContext(auth.WithAuth(req.Context(), *ac))
	}
	return req
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusTeapot, "short and stout")

	assertStatus(t, rec, http.StatusTeapot)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := decodeResponse[map[string]string](t, rec)
	if body["error"] != "short and stout" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	rec := httptest.NewRecorder()
	if err := decodeJSON(rec, newRequest(http.MethodPost, "/", `{"name":"rice"}`, nil), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Name != "rice" {
		t.Errorf("name = %q", v.Name)
	}

	if err := decodeJSON(rec, newRequest(http.MethodPost, "/", "", nil), &v); err != nil {
		t.Errorf("empty body should decode cleanly, got %v", err)
	}
	if err := decodeJSON(rec, newRequest(http.MethodPost, "/", `{"name":`, nil), &v); err == nil {
		t.Error("expected error for truncated JSON")
	}

	big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	if err := decodeJSON(rec, newRequest(http.MethodPost, "/", big, nil), &v); err == nil {
		t.Error("expected error for oversized body")
	}
}
