package marketname

import (
	"strings"

	"floatwatch/internal/domain"
)

// nonFloatKeywords mark families whose items carry no float value.
var nonFloatKeywords = []string{
	"music kit", "sticker", "patch", "agent", "graffiti",
	"case", "collectible", "pin", "key", "viewer pass", "souvenir package",
	"charm", "gift",
}

// SupportsFloat reports whether items named name carry a float value. Any
// keyword match disables wear filtering regardless of the requested wear.
func SupportsFloat(name string) bool {
	low := strings.ToLower(name)
	for _, k := range nonFloatKeywords {
		if strings.Contains(low, k) {
			return false
		}
	}
	return true
}

// EffectiveCategory returns the category actually applied to a name of the
// given family. Disallowed or empty categories collapse to normal.
func EffectiveCategory(fam FamilyRules, c domain.Category) domain.Category {
	switch c {
	case domain.CategoryStatTrak:
		if fam.AllowsStatTrak {
			return c
		}
	case domain.CategorySouvenir:
		if fam.AllowsSouvenir {
			return c
		}
	}
	return domain.CategoryNormal
}

func alreadyPrefixed(name string) bool {
	low := strings.ToLower(strings.TrimSpace(name))
	return strings.HasPrefix(low, "stattrak") ||
		strings.HasPrefix(low, "souvenir") ||
		strings.HasPrefix(low, Star)
}

func hasMarker(name, marker string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(marker))
}

func hasParentheses(name string) bool {
	return strings.Contains(name, "(") && strings.Contains(name, ")")
}

// Build composes the market hash name for baseName with the given wear and
// category. Both may be empty. Names that are already canonical only get the
// parts they are missing, so Build(Build(x, w, c), w, c) == Build(x, w, c).
func Build(baseName string, wear domain.WearKey, category domain.Category) string {
	name := strings.TrimSpace(baseName)
	if name == "" {
		return ""
	}
	fam := Classify(name)
	cat := EffectiveCategory(fam, category)

	if fam.HasStarPrefix {
		if !strings.HasPrefix(name, Star+" ") {
			name = Star + " " + strings.TrimSpace(strings.TrimPrefix(name, Star))
		}
		switch {
		case cat == domain.CategoryStatTrak && !strings.Contains(name, StatTrak):
			name = strings.Replace(name, Star+" ", Star+" "+StatTrak+" ", 1)
		case cat != domain.CategoryStatTrak && strings.Contains(name, StatTrak):
			name = strings.Replace(name, Star+" "+StatTrak+" ", Star+" ", 1)
		}
	} else if !alreadyPrefixed(name) {
		switch cat {
		case domain.CategoryStatTrak:
			name = StatTrak + " " + name
		case domain.CategorySouvenir:
			name = Souvenir + " " + name
		}
	} else {
		hasST := hasMarker(name, "stattrak")
		hasSV := hasMarker(name, Souvenir)
		if cat == domain.CategoryStatTrak && !hasST && !hasSV {
			name = StatTrak + " " + name
		}
		if cat == domain.CategorySouvenir && !hasSV && !hasST {
			name = Souvenir + " " + name
		}
	}

	if fam.SupportsWear && wear.Valid() && !hasParentheses(name) {
		name = name + " (" + wear.DisplayName() + ")"
	}
	return name
}
