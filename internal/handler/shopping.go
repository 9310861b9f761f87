package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/majidsadri/mireva/internal/auth"
	"github.com/majidsadri/mireva/internal/food"
	"github.com/majidsadri/mireva/internal/model"
	"github.com/majidsadri/mireva/internal/store"
	"github.com/majidsadri/mireva/internal/suggest"
	ws "github.com/majidsadri/mireva/internal/websocket"
)

// DefaultSuggestionTTL is how long a computed suggestion list is served
// from cache.
const DefaultSuggestionTTL = 30 * time.Minute

type ShoppingHandler struct {
	shoppingStore   *store.ShoppingStore
	pantryItemStore *store.PantryItemStore
	recipeStore     *store.RecipeStore
	userStore       *store.UserStore
	suggestionCache *store.SuggestionCache
	matcher         *food.Matcher
	scorer          *suggest.Scorer
	suggestionTTL   time.Duration
	hub             *ws.Hub
	now             func() time.Time
	logger          *slog.Logger
}

func NewShoppingHandler(
	ss *store.ShoppingStore,
	pis *store.PantryItemStore,
	rs *store.RecipeStore,
	us *store.UserStore,
	sc *store.SuggestionCache,
	matcher *food.Matcher,
	suggestionTTL time.Duration,
	hub *ws.Hub,
	logger *slog.Logger,
) *ShoppingHandler {
	if suggestionTTL <= 0 {
		suggestionTTL = DefaultSuggestionTTL
	}
	return &ShoppingHandler{
		shoppingStore:   ss,
		pantryItemStore: pis,
		recipeStore:     rs,
		userStore:       us,
		suggestionCache: sc,
		matcher:         matcher,
		scorer:          suggest.New(matcher.Categorize),
		suggestionTTL:   suggestionTTL,
		hub:             hub,
		now:             time.Now,
		logger:          logger,
	}
}

type shoppingItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Source   string `json:"source"`
}

func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.shoppingStore.ListByPantry(auth.PantryID(r.Context()))
	if err != nil {
		h.logger.Error("list shopping items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Create adds an item to the list. Adding a name that is already on the
// list unchecked returns the existing item with 200.
func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req shoppingItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	switch req.Source {
	case "":
		req.Source = model.SourceManual
	case model.SourceManual, model.SourceSuggestion:
	default:
		writeError(w, http.StatusBadRequest, "source must be manual or suggestion")
		return
	}

	existing, err := h.shoppingStore.FindOpenByName(ac.PantryID, req.Name)
	if err != nil {
		h.logger.Error("find shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, existing)
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = h.matcher.Categorize(req.Name)
	}

	item, err := h.shoppingStore.Create(ac.PantryID, req.Name, category, h.matcher.Icon(req.Name), req.Source, &ac.UserID)
	if err != nil {
		h.logger.Error("create shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.hub.Broadcast(ac.PantryID, ws.NewMessage("shopping_item", "created", item.ID, map[string]any{"name": item.Name}))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShoppingHandler) loadItem(w http.ResponseWriter, r *http.Request) (*model.ShoppingItem, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	item, err := h.shoppingStore.GetByID(id)
	if err != nil {
		h.logger.Error("get shopping item", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil || item.PantryID != auth.PantryID(r.Context()) {
		writeError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	if err := h.shoppingStore.Delete(item.ID); err != nil {
		h.logger.Error("delete shopping item", "error", err, "id", item.ID)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(item.PantryID, ws.NewMessage("shopping_item", "deleted", item.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) ToggleChecked(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	userID := auth.UserID(r.Context())
	updated, err := h.shoppingStore.ToggleChecked(item.ID, &userID)
	if err != nil {
		h.logger.Error("toggle shopping item", "error", err, "id", item.ID)
		writeError(w, http.StatusInternalServerError, "failed to toggle item")
		return
	}

	h.hub.Broadcast(item.PantryID, ws.NewMessage("shopping_item", "checked", item.ID, map[string]any{"checked": updated.Checked}))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ShoppingHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	pantryID := auth.PantryID(r.Context())
	count, err := h.shoppingStore.ClearChecked(pantryID)
	if err != nil {
		h.logger.Error("clear checked", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear checked items")
		return
	}

	h.hub.Broadcast(pantryID, ws.NewMessage("shopping_item", "cleared", 0, map[string]any{"count": count}))
	writeJSON(w, http.StatusOK, map[string]int64{"cleared": count})
}

// Purchase moves the item into the pantry with an estimated expiry date.
func (h *ShoppingHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	userID := auth.UserID(r.Context())
	expiry := food.EstimateExpiry(item.Name, h.now()).UTC()

	pantryItemID, err := h.shoppingStore.Purchase(item.ID, expiry, &userID)
	if err != nil {
		h.logger.Error("purchase shopping item", "error", err, "id", item.ID)
		writeError(w, http.StatusInternalServerError, "failed to move item to pantry")
		return
	}
	if pantryItemID == 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	pantryItem, err := h.pantryItemStore.GetByID(pantryItemID)
	if err != nil || pantryItem == nil {
		h.logger.Error("get purchased item", "error", err, "id", pantryItemID)
		writeError(w, http.StatusInternalServerError, "failed to move item to pantry")
		return
	}

	h.hub.Broadcast(item.PantryID, ws.NewMessage("shopping_item", "deleted", item.ID, nil))
	h.hub.Broadcast(item.PantryID, ws.NewMessage("pantry_item", "created", pantryItem.ID, map[string]any{"name": pantryItem.Name}))
	writeJSON(w, http.StatusCreated, pantryItem)
}

type suggestionsResponse struct {
	Suggestions []suggest.Suggestion `json:"suggestions"`
	GeneratedAt time.Time            `json:"generated_at"`
	ExpiresAt   time.Time            `json:"expires_at"`
	Cached      bool                 `json:"cached"`
}

// Suggestions ranks ingredients from the user's saved recipes. Results are
// cached per user; ?refresh=true recomputes.
func (h *ShoppingHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	now := h.now().UTC()

	if r.URL.Query().Get("refresh") != "true" {
		cached, generatedAt, err := h.suggestionCache.Get(userID)
		if err != nil {
			h.logger.Warn("read suggestion cache", "error", err, "user_id", userID)
		}
		if cached != nil && now.Sub(generatedAt) < h.suggestionTTL {
			writeJSON(w, http.StatusOK, suggestionsResponse{
				Suggestions: cached,
				GeneratedAt: generatedAt,
				ExpiresAt:   generatedAt.Add(h.suggestionTTL),
				Cached:      true,
			})
			return
		}
	}

	user, err := h.userStore.GetByID(userID)
	if err != nil || user == nil {
		h.logger.Error("get user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute suggestions")
		return
	}
	saved, err := h.recipeStore.ListByUser(userID)
	if err != nil {
		h.logger.Error("list recipes", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute suggestions")
		return
	}

	recipes := make([]suggest.Recipe, 0, len(saved))
	for _, s := range saved {
		recipes = append(recipes, suggest.Recipe{
			Name:        s.Name,
			Description: s.Description,
			Ingredients: s.Ingredients,
			SavedAt:     s.SavedAt,
		})
	}
	prefs := suggest.Preferences{Cuisines: user.Cuisines, Diets: user.Diets}
	list := h.scorer.Score(recipes, prefs, now)

	if err := h.suggestionCache.Put(userID, list, now); err != nil {
		h.logger.Warn("write suggestion cache", "error", err, "user_id", userID)
	}
	h.logger.Debug("computed suggestions", "user_id", userID, "recipes", len(recipes), "suggestions", len(list))

	writeJSON(w, http.StatusOK, suggestionsResponse{
		Suggestions: list,
		GeneratedAt: now,
		ExpiresAt:   now.Add(h.suggestionTTL),
	})
}
