// Package marketname turns loosely written item names into the canonical
// market hash names the marketplace indexes listings by.
package marketname

import "strings"

const (
	Star     = "★"
	StatTrak = "StatTrak™"
	Souvenir = "Souvenir"
)

// Family identifies an item family.
type Family string

const (
	FamilyKnife       Family = "knife"
	FamilyGloves      Family = "gloves"
	FamilyWeapon      Family = "weapon"
	FamilyMusicKit    Family = "music_kit"
	FamilySticker     Family = "sticker"
	FamilyPatch       Family = "patch"
	FamilyAgent       Family = "agent"
	FamilyGraffiti    Family = "graffiti"
	FamilyCharm       Family = "charm"
	FamilyCollectible Family = "collectible"
	FamilyCase        Family = "case"
	FamilySouvenirPkg Family = "souvenir_pkg"
	FamilyTool        Family = "tool"
	FamilyPass        Family = "pass"
	FamilyGift        Family = "gift"
)

// FamilyRules describes which name decorations a family accepts.
type FamilyRules struct {
	Family         Family `json:"family"`
	SupportsWear   bool   `json:"supports_wear"`
	AllowsStatTrak bool   `json:"allows_stattrak"`
	AllowsSouvenir bool   `json:"allows_souvenir"`
	HasStarPrefix  bool   `json:"has_star_prefix"`
}

var families = map[Family]FamilyRules{
	FamilyKnife:       {FamilyKnife, true, true, false, true},
	FamilyGloves:      {FamilyGloves, true, false, false, true},
	FamilyWeapon:      {FamilyWeapon, true, true, true, false},
	FamilyMusicKit:    {FamilyMusicKit, false, true, false, false},
	FamilySticker:     {FamilySticker, false, false, false, false},
	FamilyPatch:       {FamilyPatch, false, false, false, false},
	FamilyAgent:       {FamilyAgent, false, false, false, false},
	FamilyGraffiti:    {FamilyGraffiti, false, false, false, false},
	FamilyCharm:       {FamilyCharm, false, false, false, false},
	FamilyCollectible: {FamilyCollectible, false, false, false, false},
	FamilyCase:        {FamilyCase, false, false, false, false},
	FamilySouvenirPkg: {FamilySouvenirPkg, false, false, false, false},
	FamilyTool:        {FamilyTool, false, false, false, false},
	FamilyPass:        {FamilyPass, false, false, false, false},
	FamilyGift:        {FamilyGift, false, false, false, false},
}

// Rules returns the rules for f, falling back to weapon rules for unknown
// families.
func Rules(f Family) FamilyRules {
	if r, ok := families[f]; ok {
		return r
	}
	return families[FamilyWeapon]
}

var knifeNames = map[string]struct{}{
	"Karambit": {}, "Bayonet": {}, "M9 Bayonet": {}, "Flip Knife": {}, "Gut Knife": {},
	"Huntsman Knife": {}, "Falchion Knife": {}, "Shadow Daggers": {}, "Bowie Knife": {},
	"Ursus Knife": {}, "Navaja Knife": {}, "Stiletto Knife": {}, "Talon Knife": {},
	"Skeleton Knife": {}, "Paracord Knife": {}, "Survival Knife": {}, "Nomad Knife": {},
	"Classic Knife": {}, "Kukri Knife": {},
}

var gloveNames = map[string]struct{}{
	"Sport Gloves": {}, "Moto Gloves": {}, "Specialist Gloves": {}, "Driver Gloves": {},
	"Hand Wraps": {}, "Hydra Gloves": {}, "Bloodhound Gloves": {},
}

var agentTokens = []string{"swat", "fbi", "phoenix", "cmdr.", "marshal", "soldier", "the professionals"}

// signal is one name test. Signals are tried in order and the signal
// strings overlap, so the first match wins.
type signal struct {
	family Family
	match  func(low string) bool
}

var signals = []signal{
	{FamilyMusicKit, func(low string) bool {
		return strings.HasPrefix(low, "music kit |") || strings.HasPrefix(low, "stattrak™ music kit |")
	}},
	{FamilySticker, func(low string) bool { return strings.HasPrefix(low, "sticker |") }},
	{FamilyPatch, func(low string) bool { return strings.HasPrefix(low, "patch |") }},
	{FamilyGraffiti, func(low string) bool {
		return strings.HasPrefix(low, "sealed graffiti |") || strings.HasPrefix(low, "graffiti |")
	}},
	{FamilyCharm, func(low string) bool { return strings.HasPrefix(low, "charm |") }},
	{FamilySouvenirPkg, func(low string) bool { return strings.Contains(low, "souvenir package") }},
	{FamilyCase, func(low string) bool {
		return strings.HasSuffix(low, " case") || strings.HasSuffix(low, " case (old)")
	}},
	{FamilyCollectible, func(low string) bool {
		return strings.Contains(low, " pin") || strings.Contains(low, "collectible")
	}},
	{FamilyPass, func(low string) bool {
		return strings.Contains(low, " viewer pass") || strings.HasSuffix(low, " pass")
	}},
	{FamilyGift, func(low string) bool { return strings.Contains(low, " gift") }},
}

// stripMarkers removes leading star, StatTrak and Souvenir tokens so the
// bare item name can be looked up.
func stripMarkers(name string) string {
	n := strings.TrimSpace(name)
	for {
		switch {
		case strings.HasPrefix(n, Star):
			n = strings.TrimSpace(strings.TrimPrefix(n, Star))
		case hasPrefixFold(n, StatTrak):
			n = strings.TrimSpace(n[len(StatTrak):])
		case hasPrefixFold(n, "stattrak "):
			n = strings.TrimSpace(n[len("stattrak "):])
		case hasPrefixFold(n, Souvenir+" "):
			n = strings.TrimSpace(n[len(Souvenir)+1:])
		default:
			return n
		}
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// lhs returns the left side of an "A | B" name, trimmed.
func lhs(name string) string {
	if i := strings.Index(name, "|"); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}

// Classify maps a base name to exactly one family. Every input, including
// the empty string, yields a result.
func Classify(baseName string) FamilyRules {
	n := strings.TrimSpace(baseName)
	low := strings.ToLower(n)

	for _, s := range signals {
		if s.match(low) {
			return families[s.family]
		}
	}

	// Gloves carry the star too, so they are checked before the star rule.
	// Build emits "★ Sport Gloves | ..." and must classify its own output as
	// gloves again to stay idempotent.
	left := lhs(stripMarkers(n))
	if _, ok := gloveNames[left]; ok {
		return families[FamilyGloves]
	}
	if strings.HasPrefix(n, Star) {
		return families[FamilyKnife]
	}
	if _, ok := knifeNames[left]; ok || strings.HasSuffix(left, " Knife") {
		return families[FamilyKnife]
	}

	if strings.Contains(n, " | ") {
		for _, tok := range agentTokens {
			if strings.Contains(low, tok) {
				return families[FamilyAgent]
			}
		}
	}

	return families[FamilyWeapon]
}
