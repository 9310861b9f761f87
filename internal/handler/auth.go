package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/majidsadri/mireva/internal/auth"
	"github.com/majidsadri/mireva/internal/model"
	"github.com/majidsadri/mireva/internal/store"
)

const minPasswordLength = 6

type AuthHandler struct {
	userStore       *store.UserStore
	pantryStore     *store.PantryStore
	sessionStore    *store.SessionStore
	suggestionCache *store.SuggestionCache
	bcryptCost      int
	logger          *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ps *store.PantryStore, ss *store.SessionStore, sc *store.SuggestionCache, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:       us,
		pantryStore:     ps,
		sessionStore:    ss,
		suggestionCache: sc,
		bcryptCost:      bcrypt.DefaultCost,
		logger:          logger,
	}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (h *AuthHandler) WithBcryptCost(cost int) *AuthHandler {
	h.bcryptCost = cost
	return h
}

type signupRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	PantryName string `json:"pantry_name"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string        `json:"token"`
	User   *model.User   `json:"user"`
	Pantry *model.Pantry `json:"pantry"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	email := store.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	existing, err := h.userStore.GetByEmail(email)
	if err != nil {
		h.logger.Error("signup lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	user, err := h.userStore.Create(email, name, string(hash))
	if errors.Is(err, store.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "an account with this email already exists")
		return
	}
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	pantryName := strings.TrimSpace(req.PantryName)
	if pantryName == "" {
		pantryName = name + "'s Pantry"
	}
	pantry, err := h.pantryStore.Create(pantryName, user.ID)
	if err != nil {
		h.logger.Error("create pantry", "error", err, "user_id", user.ID)
		h.discardAccount(user.ID)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	sess, err := h.sessionStore.Create(user.ID, pantry.ID)
	if err != nil {
		h.logger.Error("create session", "error", err, "user_id", user.ID)
		h.discardAccount(user.ID)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.logger.Info("account created", "user_id", user.ID, "pantry_id", pantry.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: sess.Token, User: user, Pantry: pantry})
}

// discardAccount deletes a half-created account. The user's pantry and
// membership go with it through ON DELETE CASCADE.
func (h *AuthHandler) discardAccount(userID int64) {
	if err := h.userStore.Delete(userID); err != nil {
		h.logger.Error("roll back user", "error", err, "user_id", userID)
	}
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("signin lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	pantries, err := h.pantryStore.ListForUser(user.ID)
	if err != nil {
		h.logger.Error("list pantries", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	var pantry *model.Pantry
	if len(pantries) > 0 {
		pantry = &pantries[0]
	} else {
		// sessions are always bound to a pantry
		pantry, err = h.pantryStore.Create(user.Name+"'s Pantry", user.ID)
		if err != nil {
			h.logger.Error("create pantry", "error", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "failed to sign in")
			return
		}
	}

	sess, err := h.sessionStore.Create(user.ID, pantry.ID)
	if err != nil {
		h.logger.Error("create session", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: sess.Token, User: user, Pantry: pantry})
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if err := h.sessionStore.Delete(ac.SessionID); err != nil {
		h.logger.Error("delete session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type profileRequest struct {
	Name     *string  `json:"name"`
	Cuisines []string `json:"cuisines"`
	Diets    []string `json:"diets"`
}

type profileResponse struct {
	User   *model.User   `json:"user"`
	Pantry *model.Pantry `json:"pantry"`
	Role   string        `json:"role"`
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	user, err := h.userStore.GetByID(ac.UserID)
	if err != nil || user == nil {
		h.logger.Error("get user", "error", err, "user_id", ac.UserID)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	pantry, err := h.pantryStore.GetByID(ac.PantryID)
	if err != nil {
		h.logger.Error("get pantry", "error", err, "pantry_id", ac.PantryID)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: user, Pantry: pantry, Role: ac.Role})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	existing, err := h.userStore.GetByID(ac.UserID)
	if err != nil || existing == nil {
		h.logger.Error("get user", "error", err, "user_id", ac.UserID)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	name := existing.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
	}
	cuisines := existing.Cuisines
	if req.Cuisines != nil {
		cuisines = cleanList(req.Cuisines)
	}
	diets := existing.Diets
	if req.Diets != nil {
		diets = cleanList(req.Diets)
	}

	user, err := h.userStore.UpdateProfile(ac.UserID, name, cuisines, diets)
	if err != nil {
		h.logger.Error("update profile", "error", err, "user_id", ac.UserID)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if err := h.suggestionCache.Invalidate(ac.UserID); err != nil {
		h.logger.Warn("invalidate suggestions", "error", err, "user_id", ac.UserID)
	}
	writeJSON(w, http.StatusOK, user)
}

// cleanList trims entries and drops blanks and case-insensitive repeats.
func cleanList(in []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
