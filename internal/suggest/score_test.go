package suggest

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func TestScoreEmpty(t *testing.T) {
	got := Score(nil, Preferences{}, testNow)
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected 0 suggestions, got %d", len(got))
	}

	got = Score([]Recipe{{Name: "Empty", SavedAt: testNow}}, Preferences{}, testNow)
	if len(got) != 0 {
		t.Errorf("expected 0 suggestions for recipe without ingredients, got %d", len(got))
	}
}

func TestScoreRecentAndSharedIngredients(t *testing.T) {
	recipes := []Recipe{
		{Name: "Tomato Soup", Ingredients: []string{"2 cups chopped tomato", "1 onion"}, SavedAt: testNow},
		{Name: "Pasta", Ingredients: []string{"1 onion", "200g pasta"}, SavedAt: daysAgo(10)},
	}

	got := Score(recipes, Preferences{}, testNow)
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d: %+v", len(got), got)
	}

	wantNames := []string{"onion", "tomato", "pasta"}
	wantScores := []int{5, 4, 1}
	for i := range wantNames {
		if got[i].Name != wantNames[i] {
			t.Errorf("suggestion[%d].Name = %q, want %q", i, got[i].Name, wantNames[i])
		}
		if got[i].Score != wantScores[i] {
			t.Errorf("suggestion[%d].Score = %d, want %d", i, got[i].Score, wantScores[i])
		}
	}

	onion := got[0]
	if onion.RecipeCount != 2 {
		t.Errorf("onion recipe count = %d, want 2", onion.RecipeCount)
	}
	if onion.Reason != "From recent recipes" {
		t.Errorf("onion reason = %q", onion.Reason)
	}
	if onion.Source != "2 recipes (Tomato Soup, Pasta)" {
		t.Errorf("onion source = %q", onion.Source)
	}
	if onion.Category != "Fruits & Vegetables" {
		t.Errorf("onion category = %q", onion.Category)
	}

	pasta := got[2]
	if pasta.Reason != "From your saved recipes" {
		t.Errorf("pasta reason = %q", pasta.Reason)
	}
	if pasta.Source != "Recipe: Pasta" {
		t.Errorf("pasta source = %q", pasta.Source)
	}
	if pasta.Category != "Grains & Pantry" {
		t.Errorf("pasta category = %q", pasta.Category)
	}
}

func TestScoreTieBreaks(t *testing.T) {
	recipes := []Recipe{
		{Name: "Italian Risotto", Ingredients: []string{"saffron"}, SavedAt: daysAgo(30)},
		{Name: "Chili", Ingredients: []string{"cumin"}, SavedAt: daysAgo(30)},
		{Name: "Curry", Ingredients: []string{"cumin"}, SavedAt: daysAgo(30)},
		{Name: "Tacos", Ingredients: []string{"cumin"}, SavedAt: daysAgo(30)},
		{Name: "Salad", Ingredients: []string{"basil", "apple"}, SavedAt: daysAgo(30)},
	}
	prefs := Preferences{Cuisines: []string{"Italian"}}

	got := Score(recipes, prefs, testNow)

	want := []struct {
		name   string
		score  int
		count  int
		reason string
	}{
		{"cumin", 3, 3, "From your saved recipes"},
		{"saffron", 3, 1, "Matches your cuisine preference"},
		{"apple", 1, 1, "From your saved recipes"},
		{"basil", 1, 1, "From your saved recipes"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d suggestions, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Name != w.name || got[i].Score != w.score || got[i].RecipeCount != w.count {
			t.Errorf("suggestion[%d] = {%s %d %d}, want {%s %d %d}",
				i, got[i].Name, got[i].Score, got[i].RecipeCount, w.name, w.score, w.count)
		}
		if got[i].Reason != w.reason {
			t.Errorf("suggestion[%d].Reason = %q, want %q", i, got[i].Reason, w.reason)
		}
	}
	if got[0].Source != "3 recipes (Chili, Curry...)" {
		t.Errorf("cumin source = %q", got[0].Source)
	}
}

func TestScoreDietMatch(t *testing.T) {
	recipes := []Recipe{
		{Name: "Lentil Stew", Description: "A hearty VEGAN stew", Ingredients: []string{"red lentils"}, SavedAt: daysAgo(30)},
	}
	got := Score(recipes, Preferences{Diets: []string{"vegan", ""}}, testNow)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if got[0].Score != 3 {
		t.Errorf("score = %d, want 3", got[0].Score)
	}
	if got[0].Reason != "Matches your dietary preference" {
		t.Errorf("reason = %q", got[0].Reason)
	}
}

func TestScoreEmptyPreferenceMatchesNothing(t *testing.T) {
	recipes := []Recipe{{Name: "Toast", Ingredients: []string{"bread"}, SavedAt: daysAgo(30)}}
	got := Score(recipes, Preferences{Cuisines: []string{"  "}}, testNow)
	if got[0].Score != 1 {
		t.Errorf("score = %d, want 1", got[0].Score)
	}
}

func TestScoreRecentWindowBoundary(t *testing.T) {
	tests := []struct {
		name    string
		savedAt time.Time
		want    int
	}{
		{"exactly three days", daysAgo(3), 4},
		{"just outside window", daysAgo(3).Add(-time.Second), 1},
		{"unknown date", time.Time{}, 1},
		{"future date", testNow.Add(time.Hour), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score([]Recipe{{Name: "R", Ingredients: []string{"garlic"}, SavedAt: tt.savedAt}}, Preferences{}, testNow)
			if len(got) != 1 {
				t.Fatalf("expected 1 suggestion, got %d", len(got))
			}
			if got[0].Score != tt.want {
				t.Errorf("score = %d, want %d", got[0].Score, tt.want)
			}
		})
	}
}

func TestScoreCapAndPriorityTiers(t *testing.T) {
	var recipes []Recipe
	for i := 0; i < 20; i++ {
		recipes = append(recipes, Recipe{
			Name:        fmt.Sprintf("Recipe %d", i),
			Ingredients: []string{fmt.Sprintf("spice%02d", i)},
			SavedAt:     daysAgo(30),
		})
	}

	got := Score(recipes, Preferences{}, testNow)
	if len(got) != MaxSuggestions {
		t.Fatalf("expected %d suggestions, got %d", MaxSuggestions, len(got))
	}
	for i, s := range got {
		want := "low"
		if i < 5 {
			want = "high"
		} else if i < 10 {
			want = "medium"
		}
		if s.Priority != want {
			t.Errorf("suggestion[%d].Priority = %q, want %q", i, s.Priority, want)
		}
		if wantName := fmt.Sprintf("spice%02d", i); s.Name != wantName {
			t.Errorf("suggestion[%d].Name = %q, want %q", i, s.Name, wantName)
		}
	}
}

func TestScoreCaseInsensitiveAggregation(t *testing.T) {
	recipes := []Recipe{
		{Name: "A", Ingredients: []string{"Garlic"}, SavedAt: daysAgo(30)},
		{Name: "B", Ingredients: []string{"2 cloves garlic"}, SavedAt: daysAgo(30)},
		{Name: "B", Ingredients: []string{"garlic"}, SavedAt: daysAgo(30)},
	}
	got := Score(recipes, Preferences{}, testNow)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d: %+v", len(got), got)
	}
	if got[0].Name != "Garlic" {
		t.Errorf("name = %q, want first-seen spelling %q", got[0].Name, "Garlic")
	}
	if got[0].RecipeCount != 3 {
		t.Errorf("recipe count = %d, want 3", got[0].RecipeCount)
	}
	if got[0].Source != "2 recipes (A, B)" {
		t.Errorf("source = %q", got[0].Source)
	}
}

func TestScoreNameTieBreakIgnoresCase(t *testing.T) {
	recipes := []Recipe{
		{Name: "Ratatouille", Ingredients: []string{"Zucchini", "apple", "Basil"}, SavedAt: daysAgo(30)},
	}
	got := Score(recipes, Preferences{}, testNow)
	want := []string{"apple", "Basil", "Zucchini"}
	if len(got) != len(want) {
		t.Fatalf("expected %d suggestions, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("suggestion[%d].Name = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	recipes := []Recipe{
		{Name: "One", Ingredients: []string{"salt", "pepper", "oil", "lemon"}, SavedAt: testNow},
		{Name: "Two", Ingredients: []string{"oil", "lemon", "rice"}, SavedAt: daysAgo(1)},
		{Name: "Three", Ingredients: []string{"rice", "salt", "beans"}, SavedAt: daysAgo(20)},
	}
	prefs := Preferences{Cuisines: []string{"one"}, Diets: []string{"three"}}

	first := Score(recipes, prefs, testNow)
	for i := 0; i < 10; i++ {
		again := Score(recipes, prefs, testNow)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestScorerCustomCategorizer(t *testing.T) {
	s := New(func(string) string { return "Custom" })
	got := s.Score([]Recipe{{Name: "R", Ingredients: []string{"milk"}}}, Preferences{}, testNow)
	if len(got) != 1 || got[0].Category != "Custom" {
		t.Fatalf("got %+v, want one entry in category Custom", got)
	}
}
