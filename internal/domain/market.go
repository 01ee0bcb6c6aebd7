package domain

import "time"

// Offer is one active sell listing.
type Offer struct {
	ID             string   `json:"id,omitempty"`
	MarketHashName string   `json:"market_hash_name"`
	PriceUSD       float64  `json:"price_usd"`
	FloatValue     *float64 `json:"float_value,omitempty"`
	State          string   `json:"state,omitempty"`
	PaintSeed      *int     `json:"paint_seed,omitempty"`
}

// BuyOrder is a standing bid. Valid is false when the upstream price was
// missing or not numeric.
type BuyOrder struct {
	PriceCents int64 `json:"price_cents"`
	Qty        int   `json:"qty"`
	Valid      bool  `json:"-"`
}

// SaleEvent is one entry of an item's recent sale history.
type SaleEvent struct {
	SoldAt     *time.Time `json:"sold_at,omitempty"`
	PriceCents int64      `json:"price_cents"`
	State      string     `json:"state,omitempty"`
	FloatValue *float64   `json:"float_value,omitempty"`
	IsStatTrak bool       `json:"is_stattrak"`
	IsSouvenir bool       `json:"is_souvenir"`
}

// Snapshot values emitted when no stage produced a listing.
const SourceNone = "n/a"

// Snapshot is one point-in-time read of market state for an item query.
type Snapshot struct {
	MarketHashName  string      `json:"market_hash_name"`
	Source          string      `json:"source"`
	LowestAsk       float64     `json:"lowest_ask"`
	LowestAskID     string      `json:"lowest_ask_id"`
	HighestBid      *float64    `json:"highest_bid"`
	HighestBidQty   *int        `json:"highest_bid_qty"`
	Vol24h          int         `json:"vol24h"`
	ASP24h          float64     `json:"asp24h"`
	UsedCategory    int         `json:"used_category,omitempty"`
	UsedWear        *FloatRange `json:"used_wear,omitempty"`
	IsFloatable     bool        `json:"is_floatable"`
	UsedNameVariant string      `json:"used_name_variant,omitempty"`
}

// Empty reports whether neither an ask nor any recent sale was found.
func (s *Snapshot) Empty() bool {
	return s.LowestAsk <= 0 && s.Vol24h <= 0
}

// DepthQuote summarises the prices of several pages of listings.
type DepthQuote struct {
	MarketHashName string  `json:"market_hash_name"`
	Count          int     `json:"count"`
	Pages          int     `json:"pages"`
	Min            float64 `json:"min"`
	Median         float64 `json:"median"`
	TrimmedMean    float64 `json:"trimmed_mean"`
}

// OfferQuery filters one page of the listings endpoint. Zero values disable
// the corresponding filter.
type OfferQuery struct {
	Name     string
	SortBy   string
	Limit    int
	Category int
	MinFloat *float64
	MaxFloat *float64
	Cursor   string
}

// WithWear sets the float filters from a wear range.
func (q OfferQuery) WithWear(r *FloatRange) OfferQuery {
	if r == nil {
		q.MinFloat, q.MaxFloat = nil, nil
		return q
	}
	lo, hi := r.Min, r.Max
	q.MinFloat, q.MaxFloat = &lo, &hi
	return q
}

// OfferPage is one page of listings plus the cursor for the next page.
type OfferPage struct {
	Offers     []Offer
	NextCursor string
}
