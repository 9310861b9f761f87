// Package suggest ranks ingredients from a user's saved recipes as shopping
// suggestions.
package suggest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/majidsadri/mireva/internal/food"
)

const (
	// MaxSuggestions caps the length of a suggestion list.
	MaxSuggestions = 15

	recentWindowDays = 3

	baseWeight   = 1
	recentBonus  = 3
	cuisineBonus = 2
	dietBonus    = 2
	highPriority = 5
	medPriority  = 10
)

// Recipe is the part of a saved recipe the scorer reads.
type Recipe struct {
	Name        string
	Description string
	Ingredients []string
	SavedAt     time.Time
}

// Preferences are the user's favourite cuisines and dietary labels.
type Preferences struct {
	Cuisines []string `json:"cuisines"`
	Diets    []string `json:"diets"`
}

// Suggestion is a ranked ingredient to buy.
type Suggestion struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Reason      string `json:"reason"`
	Priority    string `json:"priority"`
	Score       int    `json:"score"`
	RecipeCount int    `json:"recipe_count"`
	Category    string `json:"category"`
}

type ingredientScore struct {
	key          string
	name         string
	score        int
	recipeCount  int
	sources      []string
	isRecent     bool
	cuisineMatch bool
	dietMatch    bool
}

// Scorer computes suggestions. The zero value is not usable; use New.
type Scorer struct {
	categorize func(string) string
}

// New returns a Scorer that labels entries with the given categorizer.
// A nil categorizer falls back to food.Categorize.
func New(categorize func(string) string) *Scorer {
	if categorize == nil {
		categorize = food.Categorize
	}
	return &Scorer{categorize: categorize}
}

// Score ranks suggestions with the default food tables.
func Score(recipes []Recipe, prefs Preferences, now time.Time) []Suggestion {
	return New(nil).Score(recipes, prefs, now)
}

// Score aggregates ingredients across recipes, weighting each recipe by
// recency and preference matches, and returns at most MaxSuggestions
// entries ordered by score, recipe count, then name.
func (s *Scorer) Score(recipes []Recipe, prefs Preferences, now time.Time) []Suggestion {
	cutoff := now.AddDate(0, 0, -recentWindowDays)
	byKey := make(map[string]*ingredientScore)
	var order []*ingredientScore

	for _, r := range recipes {
		isRecent := !r.SavedAt.IsZero() && !r.SavedAt.Before(cutoff)
		cuisineMatch := matchesAny(r, prefs.Cuisines)
		dietMatch := matchesAny(r, prefs.Diets)

		weight := baseWeight
		if isRecent {
			weight += recentBonus
		}
		if cuisineMatch {
			weight += cuisineBonus
		}
		if dietMatch {
			weight += dietBonus
		}

		for _, raw := range r.Ingredients {
			name := CleanIngredient(raw)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)

			agg, ok := byKey[key]
			if !ok {
				agg = &ingredientScore{key: key, name: name}
				byKey[key] = agg
				order = append(order, agg)
			}
			agg.score += weight
			agg.recipeCount++
			agg.addSource(r.Name)
			agg.isRecent = agg.isRecent || isRecent
			agg.cuisineMatch = agg.cuisineMatch || cuisineMatch
			agg.dietMatch = agg.dietMatch || dietMatch
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.recipeCount != b.recipeCount {
			return a.recipeCount > b.recipeCount
		}
		return a.key < b.key
	})
	if len(order) > MaxSuggestions {
		order = order[:MaxSuggestions]
	}

	out := make([]Suggestion, 0, len(order))
	for rank, agg := range order {
		out = append(out, Suggestion{
			Name:        agg.name,
			Source:      agg.sourceText(),
			Reason:      agg.reason(),
			Priority:    priorityForRank(rank),
			Score:       agg.score,
			RecipeCount: agg.recipeCount,
			Category:    s.categorize(agg.name),
		})
	}
	return out
}

func (a *ingredientScore) addSource(name string) {
	for _, s := range a.sources {
		if s == name {
			return
		}
	}
	a.sources = append(a.sources, name)
}

func (a *ingredientScore) sourceText() string {
	switch len(a.sources) {
	case 0:
		return ""
	case 1:
		return "Recipe: " + a.sources[0]
	case 2:
		return fmt.Sprintf("2 recipes (%s, %s)", a.sources[0], a.sources[1])
	}
	return fmt.Sprintf("%d recipes (%s, %s...)", len(a.sources), a.sources[0], a.sources[1])
}

func (a *ingredientScore) reason() string {
	switch {
	case a.isRecent:
		return "From recent recipes"
	case a.cuisineMatch:
		return "Matches your cuisine preference"
	case a.dietMatch:
		return "Matches your dietary preference"
	}
	return "From your saved recipes"
}

func priorityForRank(rank int) string {
	switch {
	case rank < highPriority:
		return "high"
	case rank < medPriority:
		return "medium"
	}
	return "low"
}

// matchesAny reports whether any non-empty preference is a case-insensitive
// substring of the recipe's name or description.
func matchesAny(r Recipe, prefs []string) bool {
	name := strings.ToLower(r.Name)
	desc := strings.ToLower(r.Description)
	for _, p := range prefs {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.Contains(name, p) || strings.Contains(desc, p) {
			return true
		}
	}
	return false
}
