package suggest

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	leadingDecimal  = regexp.MustCompile(`^\d+(\.\d+)?\s*`)
	leadingFraction = regexp.MustCompile(`^\d*/\d+\s*`)
	leadingMixed    = regexp.MustCompile(`^\d+\s+\d+/\d+\s*`)

	unitWords = regexp.MustCompile(`(?i)\b(cups?|tbsp|tablespoons?|tsp|teaspoons?|oz|ounces?|lbs?|pounds?|kg|grams?|g|ml|liters?|l|pints?|quarts?|gallons?|cloves?|slices?|pieces?|cans?|bottles?)\b`)
	fillerWords = regexp.MustCompile(`(?i)\b(of|fresh|chopped|diced|sliced|minced|large|small|medium|whole|ground|grated)\b`)

	punctuation = regexp.MustCompile(`[,()/]`)
	spaces      = regexp.MustCompile(`\s+`)
	digitsOnly  = regexp.MustCompile(`^\d+$`)
)

// CleanIngredient reduces a recipe ingredient line such as "2 cups chopped
// tomato" to the ingredient name. It returns "" when what remains is too
// short or purely numeric.
func CleanIngredient(raw string) string {
	s := strings.TrimSpace(raw)

	s = leadingDecimal.ReplaceAllString(s, "")
	s = leadingFraction.ReplaceAllString(s, "")
	s = leadingMixed.ReplaceAllString(s, "")

	s = unitWords.ReplaceAllString(s, "")
	s = fillerWords.ReplaceAllString(s, "")

	s = punctuation.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))

	if utf8.RuneCountInString(s) <= 2 || digitsOnly.MatchString(s) {
		return ""
	}
	return s
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Anything unparseable yields
// the zero time, which never counts as recent.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
