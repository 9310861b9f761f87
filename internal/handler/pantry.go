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

// ExpiredGroup is the grouped-view bucket holding items past their expiry.
const ExpiredGroup = "Expired"

type PantryHandler struct {
	itemStore *store.PantryItemStore
	matcher   *food.Matcher
	hub       *ws.Hub
	now       func() time.Time
	logger    *slog.Logger
}

func NewPantryHandler(is *store.PantryItemStore, matcher *food.Matcher, hub *ws.Hub, logger *slog.Logger) *PantryHandler {
	return &PantryHandler{itemStore: is, matcher: matcher, hub: hub, now: time.Now, logger: logger}
}

type pantryItemRequest struct {
	Name       string  `json:"name"`
	Amount     string  `json:"amount"`
	Unit       string  `json:"unit"`
	Category   string  `json:"category"`
	ExpiryDate *string `json:"expiry_date"`
}

// parseExpiry reads an optional expiry date. A nil or blank value reports
// ok with a nil time.
func parseExpiry(v *string) (*time.Time, bool) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, true
	}
	t := suggest.ParseTimestamp(*v)
	if t.IsZero() {
		return nil, false
	}
	return &t, true
}

func (h *PantryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemStore.ListByPantry(auth.PantryID(r.Context()))
	if err != nil {
		h.logger.Error("list pantry items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.PantryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PantryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req pantryItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	expiry, ok := parseExpiry(req.ExpiryDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid expiry_date")
		return
	}
	if expiry == nil {
		est := food.EstimateExpiry(req.Name, h.now()).UTC()
		expiry = &est
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = h.matcher.Categorize(req.Name)
	}

	item, err := h.itemStore.Create(model.PantryItem{
		PantryID:   ac.PantryID,
		Name:       req.Name,
		Amount:     strings.TrimSpace(req.Amount),
		Unit:       strings.TrimSpace(req.Unit),
		Category:   category,
		Icon:       h.matcher.Icon(req.Name),
		ExpiryDate: expiry,
		AddedBy:    &ac.UserID,
	})
	if err != nil {
		h.logger.Error("create pantry item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.hub.Broadcast(ac.PantryID, ws.NewMessage("pantry_item", "created", item.ID, map[string]any{"name": item.Name}))
	writeJSON(w, http.StatusCreated, item)
}

// loadItem fetches an item of the caller's pantry, writing 400/404/500 itself.
func (h *PantryHandler) loadItem(w http.ResponseWriter, r *http.Request) (*model.PantryItem, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	item, err := h.itemStore.GetByID(id)
	if err != nil {
		h.logger.Error("get pantry item", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil || item.PantryID != auth.PantryID(r.Context()) {
		writeError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

func (h *PantryHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadItem(w, r)
	if !ok {
		return
	}

	var req pantryItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	updated := *existing
	if req.ExpiryDate != nil {
		expiry, ok := parseExpiry(req.ExpiryDate)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid expiry_date")
			return
		}
		updated.ExpiryDate = expiry
	}
	if !strings.EqualFold(req.Name, existing.Name) {
		updated.Icon = h.matcher.Icon(req.Name)
		if strings.TrimSpace(req.Category) == "" {
			updated.Category = h.matcher.Categorize(req.Name)
		}
	}
	if c := strings.TrimSpace(req.Category); c != "" {
		updated.Category = c
	}
	updated.Name = req.Name
	updated.Amount = strings.TrimSpace(req.Amount)
	updated.Unit = strings.TrimSpace(req.Unit)

	item, err := h.itemStore.Update(updated)
	if err != nil {
		h.logger.Error("update pantry item", "error", err, "id", existing.ID)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.hub.Broadcast(item.PantryID, ws.NewMessage("pantry_item", "updated", item.ID, map[string]any{"name": item.Name}))
	writeJSON(w, http.StatusOK, item)
}

func (h *PantryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	if err := h.itemStore.Delete(item.ID); err != nil {
		h.logger.Error("delete pantry item", "error", err, "id", item.ID)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(item.PantryID, ws.NewMessage("pantry_item", "deleted", item.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Grouped returns items bucketed by category in table order, with expired
// items pulled into a leading "Expired" group. Empty groups are omitted.
func (h *PantryHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemStore.ListByPantry(auth.PantryID(r.Context()))
	if err != nil {
		h.logger.Error("list pantry items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, groupItems(items, h.matcher.Categories(), h.now()))
}

func groupItems(items []model.PantryItem, order []string, now time.Time) []model.PantryGroup {
	expired := []model.PantryItem{}
	byCategory := make(map[string][]model.PantryItem)
	var extra []string
	known := make(map[string]bool, len(order))
	for _, c := range order {
		known[c] = true
	}

	for _, item := range items {
		if item.Expired(now) {
			expired = append(expired, item)
			continue
		}
		if !known[item.Category] {
			if _, seen := byCategory[item.Category]; !seen {
				extra = append(extra, item.Category)
			}
		}
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	groups := []model.PantryGroup{}
	if len(expired) > 0 {
		groups = append(groups, model.PantryGroup{Category: ExpiredGroup, Icon: food.CategoryIcon(ExpiredGroup), Items: expired})
	}
	for _, c := range append(order, extra...) {
		if list := byCategory[c]; len(list) > 0 {
			groups = append(groups, model.PantryGroup{Category: c, Icon: food.CategoryIcon(c), Items: list})
		}
	}
	return groups
}
