package food

import "strings"

// DefaultIcon is the plate glyph used when nothing matches.
const DefaultIcon = "🍽️"

var containerPrefixes = []string{
	"bunch of", "bundle of", "pack of", "bag of", "box of", "can of", "bottle of", "jar of",
}

// Fallback glyphs when no food entry matches, checked in this order against
// the item name.
var categoryIcons = []struct {
	category string
	icon     string
}{
	{"Fruits & Vegetables", "🥬"},
	{"Proteins", "🥩"},
	{"Dairy", "🥛"},
	{"Grains & Pantry", "🌾"},
	{"Beverages", "🥤"},
	{"Frozen", "🧊"},
	{"Condiments", "🧂"},
}

// Match priorities; lower wins.
const (
	matchExact = iota + 1
	matchItemPrefix
	matchKeyPrefix
	matchWholeWord
	noMatch
)

// Icon returns the display glyph for an item name using the default tables.
func Icon(itemName string) string {
	return Default().Icon(itemName)
}

// Icon returns the glyph of the most specific food entry matching the item
// name. Among equally specific entries the first in table order wins.
func (m *Matcher) Icon(itemName string) string {
	name := stripContainer(normalize(itemName))
	if name == "" {
		return DefaultIcon
	}

	best, bestIcon := noMatch, ""
	for _, cat := range m.icons {
		for _, f := range cat.foods {
			if p := matchPriority(name, f.food); p < best {
				best, bestIcon = p, f.icon
				if best == matchExact {
					return bestIcon
				}
			}
		}
	}
	if best != noMatch {
		return bestIcon
	}

	for _, c := range categoryIcons {
		if strings.Contains(name, strings.ToLower(c.category)) {
			return c.icon
		}
	}
	return DefaultIcon
}

// CategoryIcon returns the tab glyph for a category name.
func CategoryIcon(category string) string {
	if category == "All" {
		return DefaultIcon
	}
	for _, c := range categoryIcons {
		if c.category == category {
			return c.icon
		}
	}
	return "📦"
}

func stripContainer(name string) string {
	for _, prefix := range containerPrefixes {
		if strings.HasPrefix(name, prefix+" ") {
			name = strings.TrimSpace(name[len(prefix)+1:])
		}
	}
	return name
}

func matchPriority(name, food string) int {
	switch {
	case food == "":
		return noMatch
	case name == food:
		return matchExact
	case strings.HasPrefix(name, food+" ") || strings.HasPrefix(name, food+"s"):
		return matchItemPrefix
	case strings.HasPrefix(food, name+" ") || strings.HasPrefix(food, name+"s"):
		return matchKeyPrefix
	case strings.Contains(name, " "+food) || strings.Contains(name, food+" "):
		return matchWholeWord
	}
	return noMatch
}
