package provider

import (
	"strconv"
	"strings"
	"time"

	"floatwatch/internal/domain"

	"github.com/tidwall/gjson"
)

// Container keys checked in order when a payload is an object rather than a
// bare array.
var (
	offerRowKeys   = []string{"listings", "results", "data", "items", "rows"}
	historyRowKeys = []string{"results", "data", "items", "events"}
	priceKeys      = []string{"price", "usd_price_cents", "price_cents", "listed_price"}
)

// extractRows returns the rows of a payload: the array itself, or the first
// array found under one of keys.
func extractRows(body []byte, keys []string) []gjson.Result {
	if !gjson.ValidBytes(body) {
		return nil
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root.Array()
	}
	if !root.IsObject() {
		return nil
	}
	for _, key := range keys {
		if v := root.Get(key); v.IsArray() {
			return v.Array()
		}
	}
	return nil
}

// firstPresent returns the first path that exists and is not null.
func firstPresent(row gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := row.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// asInt reads an integer from a number or numeric string.
func asInt(v gjson.Result) (int64, bool) {
	switch v.Type {
	case gjson.Number:
		return int64(v.Num), true
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

// asFloat reads a float from a number or numeric string.
func asFloat(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.String:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// priceCents takes the first present price key. A present but non-numeric
// price reads as zero.
func priceCents(row gjson.Result) int64 {
	for _, key := range priceKeys {
		v := row.Get(key)
		if v.Type != gjson.Number && v.Type != gjson.String {
			continue
		}
		n, _ := asInt(v)
		return n
	}
	return 0
}

func offerFromRow(row gjson.Result) domain.Offer {
	offer := domain.Offer{
		PriceUSD: float64(priceCents(row)) / 100.0,
	}
	if offer.PriceUSD < 0 {
		offer.PriceUSD = 0
	}
	if id := row.Get("id"); id.Exists() && id.Type != gjson.Null {
		offer.ID = id.String()
	}
	offer.MarketHashName = firstPresent(row, "item.market_hash_name", "market_hash_name").String()
	if f, ok := asFloat(firstPresent(row, "float_value", "item.float_value")); ok {
		offer.FloatValue = &f
	}
	if n, ok := asInt(firstPresent(row, "paint_seed", "item.paint_seed")); ok {
		seed := int(n)
		offer.PaintSeed = &seed
	}
	offer.State = firstPresent(row, "state", "item.state").String()
	return offer
}

func buyOrderFromRow(row gjson.Result) domain.BuyOrder {
	order := domain.BuyOrder{}
	if cents, ok := asInt(row.Get("price")); ok {
		order.PriceCents = cents
		order.Valid = true
	}
	if qty, ok := asInt(row.Get("qty")); ok {
		order.Qty = int(qty)
	}
	return order
}

func saleEventFromRow(row gjson.Result) domain.SaleEvent {
	event := domain.SaleEvent{
		PriceCents: priceCents(row),
		State:      row.Get("state").String(),
		IsStatTrak: row.Get("item.is_stattrak").Bool(),
		IsSouvenir: row.Get("item.is_souvenir").Bool(),
	}
	if ts, ok := parseTimestamp(row.Get("sold_at")); ok {
		event.SoldAt = &ts
	} else if ts, ok := parseTimestamp(row.Get("created_at")); ok {
		event.SoldAt = &ts
	}
	if f, ok := asFloat(row.Get("item.float_value")); ok {
		event.FloatValue = &f
	}
	return event
}

// parseTimestamp accepts RFC 3339 strings. Timestamps without a zone are
// rejected.
func parseTimestamp(v gjson.Result) (time.Time, bool) {
	if v.Type != gjson.String {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v.Str))
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
