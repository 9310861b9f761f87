package food

import "strings"

// Categorize returns the pantry category for the given item name using the
// default tables.
func Categorize(itemName string) string {
	return Default().Categorize(itemName)
}

// Categorize returns the first category, in table order, with a keyword that
// is a substring of the lowercased item name. Falls back to DefaultCategory.
func (m *Matcher) Categorize(itemName string) string {
	name := normalize(itemName)
	if name == "" {
		return DefaultCategory
	}

	for _, c := range m.categories {
		for _, kw := range c.keywords {
			if strings.Contains(name, kw) {
				return c.name
			}
		}
	}

	return DefaultCategory
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
