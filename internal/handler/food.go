package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/majidsadri/mireva/internal/food"
)

type FoodHandler struct {
	matcher *food.Matcher
	now     func() time.Time
}

func NewFoodHandler(matcher *food.Matcher) *FoodHandler {
	return &FoodHandler{matcher: matcher, now: time.Now}
}

type lookupResponse struct {
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Icon       string    `json:"icon"`
	ExpiryDate time.Time `json:"expiry_date"`
}

func (h *FoodHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{
		Name:       name,
		Category:   h.matcher.Categorize(name),
		Icon:       h.matcher.Icon(name),
		ExpiryDate: food.EstimateExpiry(name, h.now()).UTC(),
	})
}

type categoryResponse struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (h *FoodHandler) Categories(w http.ResponseWriter, r *http.Request) {
	names := h.matcher.Categories()
	out := make([]categoryResponse, 0, len(names))
	for _, n := range names {
		out = append(out, categoryResponse{Name: n, Icon: food.CategoryIcon(n)})
	}
	writeJSON(w, http.StatusOK, out)
}
