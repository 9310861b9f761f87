package food

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

//go:embed data/*.json
var embedded embed.FS

// DefaultCategory is returned by Categorize when no keyword matches.
const DefaultCategory = "Grains & Pantry"

const (
	categoriesFile = "categories.json"
	iconsFile      = "icons.json"
)

type categoryEntry struct {
	name     string
	keywords []string
}

type iconEntry struct {
	food string
	icon string
}

type iconCategory struct {
	name  string
	foods []iconEntry
}

// Matcher holds the immutable category and icon tables. It is safe for
// concurrent use.
type Matcher struct {
	categories []categoryEntry
	icons      []iconCategory
}

var (
	defaultOnce    sync.Once
	defaultMatcher *Matcher
)

// Default returns the matcher built from the embedded tables.
func Default() *Matcher {
	defaultOnce.Do(func() {
		cats, err := embedded.Open("data/" + categoriesFile)
		if err != nil {
			panic(fmt.Sprintf("food: open embedded categories: %v", err))
		}
		defer cats.Close()
		icons, err := embedded.Open("data/" + iconsFile)
		if err != nil {
			panic(fmt.Sprintf("food: open embedded icons: %v", err))
		}
		defer icons.Close()

		m, err := Load(cats, icons)
		if err != nil {
			panic(fmt.Sprintf("food: load embedded tables: %v", err))
		}
		defaultMatcher = m
	})
	return defaultMatcher
}

// Load parses a category table and an icon table. Both are JSON objects;
// key order in the documents is the match order.
func Load(categories, icons io.Reader) (*Matcher, error) {
	cats, err := decodeCategories(categories)
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	hasDefault := false
	for _, c := range cats {
		if c.name == DefaultCategory {
			hasDefault = true
			break
		}
	}
	if !hasDefault {
		return nil, fmt.Errorf("category table is missing %q", DefaultCategory)
	}

	ic, err := decodeIcons(icons)
	if err != nil {
		return nil, fmt.Errorf("decode icons: %w", err)
	}
	return &Matcher{categories: cats, icons: ic}, nil
}

// LoadDir loads categories.json and icons.json from dir.
func LoadDir(dir string) (*Matcher, error) {
	cats, err := os.Open(filepath.Join(dir, categoriesFile))
	if err != nil {
		return nil, fmt.Errorf("open categories: %w", err)
	}
	defer cats.Close()
	icons, err := os.Open(filepath.Join(dir, iconsFile))
	if err != nil {
		return nil, fmt.Errorf("open icons: %w", err)
	}
	defer icons.Close()
	return Load(cats, icons)
}

// Categories returns the category names in table order.
func (m *Matcher) Categories() []string {
	names := make([]string, len(m.categories))
	for i, c := range m.categories {
		names[i] = c.name
	}
	return names
}

func decodeCategories(r io.Reader) ([]categoryEntry, error) {
	dec := json.NewDecoder(r)
	var out []categoryEntry
	err := readObject(dec, func(key string) error {
		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		kept := keywords[:0]
		for _, k := range keywords {
			if k = normalize(k); k != "" {
				kept = append(kept, k)
			}
		}
		out = append(out, categoryEntry{name: key, keywords: kept})
		return nil
	})
	return out, err
}

func decodeIcons(r io.Reader) ([]iconCategory, error) {
	dec := json.NewDecoder(r)
	var out []iconCategory
	err := readObject(dec, func(category string) error {
		cat := iconCategory{name: category}
		err := readObject(dec, func(food string) error {
			var icon string
			if err := dec.Decode(&icon); err != nil {
				return fmt.Errorf("icon %q/%q: %w", category, food, err)
			}
			cat.foods = append(cat.foods, iconEntry{food: normalize(food), icon: icon})
			return nil
		})
		if err != nil {
			return err
		}
		out = append(out, cat)
		return nil
	})
	return out, err
}

// readObject walks a JSON object in document order, calling fn for each key
// with the decoder positioned at the value.
func readObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("expected JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	// closing '}'
	_, err = dec.Token()
	return err
}
