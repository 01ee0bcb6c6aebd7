package domain

import (
	"fmt"
	"strings"
)

// Category selects between normal, StatTrak and souvenir variants.
type Category string

const (
	CategoryNormal   Category = "normal"
	CategoryStatTrak Category = "stattrak"
	CategorySouvenir Category = "souvenir"
)

// Upstream category codes. CategoryAny disables category filtering.
const (
	CategoryAny          = 0
	CategoryCodeNormal   = 1
	CategoryCodeStatTrak = 2
	CategoryCodeSouvenir = 3
)

// Code maps a category to the marketplace's numeric filter. The empty
// category maps to CategoryAny.
func (c Category) Code() int {
	switch c {
	case CategoryNormal:
		return CategoryCodeNormal
	case CategoryStatTrak:
		return CategoryCodeStatTrak
	case CategorySouvenir:
		return CategoryCodeSouvenir
	default:
		return CategoryAny
	}
}

func (c Category) Valid() bool {
	return c == CategoryNormal || c == CategoryStatTrak || c == CategorySouvenir
}

// Opposite returns the normal/StatTrak sibling. Souvenir and the empty
// category have none.
func (c Category) Opposite() (Category, bool) {
	switch c {
	case CategoryNormal:
		return CategoryStatTrak, true
	case CategoryStatTrak:
		return CategoryNormal, true
	default:
		return "", false
	}
}

// ParseCategory accepts normal, stattrak or souvenir in any case. An empty
// string yields an empty category and no error.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unsupported category %q (want normal, stattrak or souvenir)", s)
	}
	return c, nil
}

// CategoryCodeFromFlags derives the category code of a concrete item.
func CategoryCodeFromFlags(isStatTrak, isSouvenir bool) int {
	switch {
	case isSouvenir:
		return CategoryCodeSouvenir
	case isStatTrak:
		return CategoryCodeStatTrak
	default:
		return CategoryCodeNormal
	}
}
