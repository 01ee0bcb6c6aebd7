package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"floatwatch/internal/config"
	"floatwatch/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     header,
	}
}

func newTestProvider(t *testing.T, rt roundTripFunc) *CSFloatProvider {
	t.Helper()
	p, err := NewCSFloatProvider(
		trace.NewNoopTracerProvider().Tracer("test"),
		"secret-key",
		WithBaseURL("http://example/api/v1/"),
		WithTransport(rt),
		WithRateLimiter(NewRateLimiter(100, time.Millisecond)),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return p
}

func TestNewCSFloatProviderRequiresKey(t *testing.T) {
	_, err := NewCSFloatProvider(trace.NewNoopTracerProvider().Tracer("test"), "  ")
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestListOffersQueryAndParsing(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v1/listings" {
			t.Errorf("unexpected path: %s", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "secret-key" {
			t.Errorf("expected raw key in Authorization, got %q", got)
		}
		q := req.URL.Query()
		if q.Get("market_hash_name") != "AK-47 | Redline (Field-Tested)" {
			t.Errorf("unexpected name: %q", q.Get("market_hash_name"))
		}
		if q.Get("limit") != "50" || q.Get("sort_by") != "lowest_price" || q.Get("category") != "2" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("min_float") != "0.15" || q.Get("max_float") != "0.38" {
			t.Errorf("unexpected float filter: %v", q)
		}
		if q.Get("cursor") != "abc" {
			t.Errorf("expected cursor, got %q", q.Get("cursor"))
		}
		body := `{"data":[
			{"id":12345678901234567,"price":1234,"item":{"market_hash_name":"StatTrak™ AK-47 | Redline (Field-Tested)","float_value":0.2,"paint_seed":"77"},"state":"listed"},
			{"id":"x2","usd_price_cents":"999","float_value":"0.31","item":{"float_value":0.9}},
			"junk"
		]}`
		h := http.Header{}
		h.Set("X-Next-Cursor", "next-1")
		return jsonResponse(http.StatusOK, body, h), nil
	})

	q := domain.OfferQuery{
		Name:     "AK-47 | Redline (Field-Tested)",
		Limit:    200,
		Category: domain.CategoryCodeStatTrak,
		Cursor:   "abc",
	}
	r := domain.WearFieldTested.Range()
	page, err := p.ListOffers(context.Background(), q.WithWear(&r))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextCursor != "next-1" {
		t.Fatalf("expected next cursor, got %q", page.NextCursor)
	}
	if len(page.Offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(page.Offers))
	}

	first := page.Offers[0]
	if first.ID != "12345678901234567" || first.PriceUSD != 12.34 || first.State != "listed" {
		t.Fatalf("unexpected first offer: %+v", first)
	}
	if first.MarketHashName != "StatTrak™ AK-47 | Redline (Field-Tested)" {
		t.Fatalf("unexpected name: %s", first.MarketHashName)
	}
	if first.FloatValue == nil || *first.FloatValue != 0.2 || first.PaintSeed == nil || *first.PaintSeed != 77 {
		t.Fatalf("expected float and paint seed from item, got %+v", first)
	}

	second := page.Offers[1]
	if second.PriceUSD != 9.99 {
		t.Fatalf("expected fallback price key, got %v", second.PriceUSD)
	}
	if second.FloatValue == nil || *second.FloatValue != 0.31 {
		t.Fatalf("row float should win over item float, got %v", second.FloatValue)
	}
	if second.PaintSeed != nil {
		t.Fatalf("expected no paint seed, got %v", *second.PaintSeed)
	}
}

func TestListOffersBareArrayAndMalformed(t *testing.T) {
	t.Parallel()

	bodies := []string{`[{"price":100}]`, `not json`}
	var call int32
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		i := atomic.AddInt32(&call, 1) - 1
		return jsonResponse(http.StatusOK, bodies[i], nil), nil
	})

	page, err := p.ListOffers(context.Background(), domain.OfferQuery{Name: "x"})
	if err != nil || len(page.Offers) != 1 || page.Offers[0].PriceUSD != 1 {
		t.Fatalf("unexpected bare array result: %+v, %v", page, err)
	}

	page, err = p.ListOffers(context.Background(), domain.OfferQuery{Name: "x"})
	if err != nil {
		t.Fatalf("malformed payload should not error, got %v", err)
	}
	if len(page.Offers) != 0 {
		t.Fatalf("expected no offers, got %d", len(page.Offers))
	}
}

func TestGetRetriesRateLimit(t *testing.T) {
	t.Parallel()

	var calls int32
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) <= 3 {
			return jsonResponse(http.StatusTooManyRequests, `{}`, nil), nil
		}
		return jsonResponse(http.StatusOK, `[]`, nil), nil
	})

	if _, err := p.ListOffers(context.Background(), domain.OfferQuery{Name: "x"}); err != nil {
		t.Fatalf("expected success after three retries, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 calls, got %d", calls)
	}
}

func TestGetGivesUpAfterRateLimitRetries(t *testing.T) {
	t.Parallel()

	var calls int32
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusTooManyRequests, `{}`, nil), nil
	})

	_, err := p.ListOffers(context.Background(), domain.OfferQuery{Name: "x"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 1 call plus 3 retries, got %d", calls)
	}
}

func TestGetRetriesServerErrorOnce(t *testing.T) {
	t.Parallel()

	var calls int32
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusBadGateway, `upstream down`, nil), nil
	})

	_, err := p.SaleHistory(context.Background(), "x", 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected APIError 502, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", calls)
	}
}

func TestGetClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls int32
	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusForbidden, `{"message":"bad key"}`, nil), nil
	})

	_, err := p.BuyOrders(context.Background(), "1", 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected APIError 403, got %v", err)
	}
	if !strings.Contains(apiErr.Body, "bad key") {
		t.Fatalf("expected body in error, got %q", apiErr.Body)
	}
	if calls != 1 {
		t.Fatalf("4xx should not be retried, got %d calls", calls)
	}
}

func TestGetHonorsCancelledContextDuringBackoff(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{}`, nil), nil
	})
	p.sleep = sleepContext
	p.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.ListOffers(ctx, domain.OfferQuery{Name: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("backoff sleep should abort on cancellation")
	}
}

func TestBuyOrders(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v1/listings/abc/buy-orders" {
			t.Errorf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("limit") != "10" {
			t.Errorf("unexpected limit: %s", req.URL.Query().Get("limit"))
		}
		return jsonResponse(http.StatusOK, `[{"price":1500,"qty":2},{"price":"n/a","qty":9},{"qty":1}]`, nil), nil
	})

	orders, err := p.BuyOrders(context.Background(), "abc", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if !orders[0].Valid || orders[0].PriceCents != 1500 || orders[0].Qty != 2 {
		t.Fatalf("unexpected first order: %+v", orders[0])
	}
	if orders[1].Valid || orders[2].Valid {
		t.Fatalf("non-numeric or missing prices should be invalid: %+v", orders)
	}
}

func TestSaleHistory(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v1/history/AK-47 | Redline (Field-Tested)/sales" {
			t.Errorf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("limit") != "400" {
			t.Errorf("limit should be clamped to 400, got %s", req.URL.Query().Get("limit"))
		}
		body := `{"events":[
			{"price":2500,"state":"sold","sold_at":"2026-01-02T03:04:05Z","item":{"float_value":0.2,"is_stattrak":true}},
			{"price":1000,"sold_at":"bad","created_at":"2026-01-02T03:04:05+02:00","item":{"is_souvenir":true}},
			{"price":1000,"created_at":"2026-01-02T03:04:05"}
		]}`
		return jsonResponse(http.StatusOK, body, nil), nil
	})

	events, err := p.SaleHistory(context.Background(), "AK-47 | Redline (Field-Tested)", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].SoldAt == nil || events[0].PriceCents != 2500 || !events[0].IsStatTrak || events[0].FloatValue == nil {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].SoldAt == nil || !events[1].IsSouvenir {
		t.Fatalf("expected created_at fallback and souvenir flag: %+v", events[1])
	}
	if events[2].SoldAt != nil {
		t.Fatalf("timestamps without a zone should be rejected, got %v", events[2].SoldAt)
	}
}
