package service

import "floatwatch/internal/domain"

const cheapestSortBy = "lowest_price"

// Stage labels reported in Snapshot.Source.
const (
	StageStrict   = "strict"
	StageNoWear   = "no_wear"
	StageNoCat    = "no_cat"
	StageNameOnly = "name_only"
)

// CascadeStage is one cheapest-offer query of the fallback cascade.
type CascadeStage struct {
	Label    string
	SortBy   string
	Category int
	Wear     *domain.FloatRange
}

// Cascade lists the stages tried for a name, strictest first. The no_wear
// stage only exists when a wear filter is active and no_cat only when a
// category filter is active. wear must already be nil for names without
// float values.
func Cascade(category int, wear *domain.FloatRange) []CascadeStage {
	stages := []CascadeStage{{Label: StageStrict, SortBy: cheapestSortBy, Category: category, Wear: wear}}
	if wear != nil {
		stages = append(stages, CascadeStage{Label: StageNoWear, SortBy: cheapestSortBy, Category: category})
	}
	if category != domain.CategoryAny {
		stages = append(stages, CascadeStage{Label: StageNoCat, SortBy: cheapestSortBy, Wear: wear})
	}
	return append(stages, CascadeStage{Label: StageNameOnly, SortBy: cheapestSortBy})
}

// HighestBid returns the best valid bid in USD and the quantity summed over
// all orders at that price.
func HighestBid(orders []domain.BuyOrder) (float64, int, bool) {
	var (
		top   int64
		qty   int
		found bool
	)
	for _, o := range orders {
		if !o.Valid {
			continue
		}
		switch {
		case !found || o.PriceCents > top:
			top, qty, found = o.PriceCents, o.Qty, true
		case o.PriceCents == top:
			qty += o.Qty
		}
	}
	if !found {
		return 0, 0, false
	}
	return float64(top) / 100.0, qty, true
}
