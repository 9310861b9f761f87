package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/majidsadri/mireva/internal/auth"
	"github.com/majidsadri/mireva/internal/store"
	"github.com/majidsadri/mireva/internal/suggest"
)

type RecipeHandler struct {
	recipeStore     *store.RecipeStore
	suggestionCache *store.SuggestionCache
	now             func() time.Time
	logger          *slog.Logger
}

func NewRecipeHandler(rs *store.RecipeStore, sc *store.SuggestionCache, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipeStore: rs, suggestionCache: sc, now: time.Now, logger: logger}
}

type recipeRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	SavedAt     *string  `json:"saved_at"`
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// Create saves a recipe. A missing saved_at means now; one that cannot be
// parsed is stored as unknown.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req recipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	savedAt := h.now().UTC()
	if req.SavedAt != nil {
		savedAt = suggest.ParseTimestamp(*req.SavedAt)
	}

	ingredients := make([]string, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			ingredients = append(ingredients, ing)
		}
	}

	recipe, err := h.recipeStore.Create(userID, req.Name, strings.TrimSpace(req.Description), ingredients, savedAt)
	if errors.Is(err, store.ErrDuplicateRecipe) {
		writeError(w, http.StatusConflict, "recipe already saved")
		return
	}
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save recipe")
		return
	}

	h.invalidate(userID)
	writeJSON(w, http.StatusCreated, recipe)
}

// Delete removes a recipe by id or by name.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	key := strings.TrimSpace(r.PathValue("id"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	found, err := h.recipeStore.Delete(userID, key)
	if err != nil {
		h.logger.Error("delete recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	h.invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) invalidate(userID int64) {
	if err := h.suggestionCache.Invalidate(userID); err != nil {
		h.logger.Warn("invalidate suggestions", "error", err, "user_id", userID)
	}
}
