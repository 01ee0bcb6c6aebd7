package domain

import (
	"fmt"
	"strings"
)

// WearKey is the short code for a wear tier.
type WearKey string

const (
	WearFactoryNew    WearKey = "fn"
	WearMinimalWear   WearKey = "mw"
	WearFieldTested   WearKey = "ft"
	WearWellWorn      WearKey = "ww"
	WearBattleScarred WearKey = "bs"
)

// AllWears lists the wear tiers from lowest to highest float.
var AllWears = []WearKey{
	WearFactoryNew,
	WearMinimalWear,
	WearFieldTested,
	WearWellWorn,
	WearBattleScarred,
}

// FloatRange is a [Min, Max) interval over the float value. The range ending
// at 1.0 also contains 1.0 itself.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v falls within the range.
func (r FloatRange) Contains(v float64) bool {
	if v < r.Min {
		return false
	}
	if v < r.Max {
		return true
	}
	return r.Max >= 1.0 && v == r.Max
}

func (r FloatRange) String() string {
	return fmt.Sprintf("%.2f-%.2f", r.Min, r.Max)
}

var wearRanges = map[WearKey]FloatRange{
	WearFactoryNew:    {Min: 0.00, Max: 0.07},
	WearMinimalWear:   {Min: 0.07, Max: 0.15},
	WearFieldTested:   {Min: 0.15, Max: 0.38},
	WearWellWorn:      {Min: 0.38, Max: 0.45},
	WearBattleScarred: {Min: 0.45, Max: 1.00},
}

var wearNames = map[WearKey]string{
	WearFactoryNew:    "Factory New",
	WearMinimalWear:   "Minimal Wear",
	WearFieldTested:   "Field-Tested",
	WearWellWorn:      "Well-Worn",
	WearBattleScarred: "Battle-Scarred",
}

// Range returns the float interval for a wear tier.
func (w WearKey) Range() FloatRange {
	return wearRanges[w]
}

// DisplayName is the wear label used in market hash names.
func (w WearKey) DisplayName() string {
	return wearNames[w]
}

// Valid reports whether w is one of the five known tiers.
func (w WearKey) Valid() bool {
	_, ok := wearRanges[w]
	return ok
}

// ParseWear accepts a short wear key in any case. An empty string yields an
// empty key and no error.
func ParseWear(s string) (WearKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	w := WearKey(s)
	if !w.Valid() {
		return "", fmt.Errorf("unsupported wear %q (want fn, mw, ft, ww or bs)", s)
	}
	return w, nil
}
