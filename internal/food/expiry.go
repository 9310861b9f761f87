package food

import (
	"strings"
	"time"
)

var shelfLife = []struct {
	keywords []string
	life     time.Duration
}{
	{[]string{"milk", "cheese", "yogurt", "cream"}, 10 * 24 * time.Hour},
	{[]string{"apple", "banana", "orange", "grape", "fruit"}, 2 * 7 * 24 * time.Hour},
	{[]string{"dressing", "sauce", "ketchup", "mustard", "mayo"}, 8 * 7 * 24 * time.Hour},
	{[]string{"flour", "sugar", "rice", "pasta", "grain"}, 52 * 7 * 24 * time.Hour},
}

const defaultShelfLife = 3 * 7 * 24 * time.Hour

// EstimateExpiry guesses when a freshly bought item will expire.
func EstimateExpiry(itemName string, now time.Time) time.Time {
	name := normalize(itemName)
	for _, s := range shelfLife {
		for _, kw := range s.keywords {
			if strings.Contains(name, kw) {
				return now.Add(s.life)
			}
		}
	}
	return now.Add(defaultShelfLife)
}
