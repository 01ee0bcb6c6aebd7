package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"floatwatch/internal/config"
	"floatwatch/internal/domain"
	"floatwatch/pkg/logging"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrRateLimited is returned when the marketplace keeps answering 429 after
// all retries are used.
var ErrRateLimited = errors.New("csfloat: rate limited")

// APIError is a non-success HTTP answer from the marketplace.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("csfloat: unexpected status %d: %s", e.StatusCode, e.Body)
}

const (
	maxListingLimit     = 50
	defaultSortBy       = "lowest_price"
	maxHistoryLimit     = 400
	listingTimeout      = 20 * time.Second
	historyTimeout      = 30 * time.Second
	maxRateLimitRetries = 3
	defaultBackoff      = 1500 * time.Millisecond
	maxErrorBodyLen     = 256
)

// CSFloatProvider reads listings, buy orders and sale history from the
// CSFloat marketplace API.
type CSFloatProvider struct {
	client  *resty.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
	backoff time.Duration
	log     *logrus.Entry

	sleep func(ctx context.Context, d time.Duration) error
}

// Option customises a CSFloatProvider.
type Option func(*CSFloatProvider)

func WithBaseURL(baseURL string) Option {
	return func(p *CSFloatProvider) {
		if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(p *CSFloatProvider) {
		if d > 0 {
			p.backoff = d
		}
	}
}

func WithRateLimiter(l *RateLimiter) Option {
	return func(p *CSFloatProvider) {
		if l != nil {
			p.limiter = l
		}
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(p *CSFloatProvider) {
		p.log = logging.Component(logger, "csfloat")
	}
}

// WithTransport swaps the HTTP round tripper, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *CSFloatProvider) {
		p.client.SetTransport(rt)
	}
}

// NewCSFloatProvider builds a client authenticated with apiKey. It refuses to
// build without a key.
func NewCSFloatProvider(tracer trace.Tracer, apiKey string, opts ...Option) (*CSFloatProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("new csfloat provider: %w", config.ErrMissingAPIKey)
	}

	client := resty.New()
	client.SetTimeout(historyTimeout)
	client.SetHeader("Authorization", apiKey)
	client.SetHeader("Accept", "application/json")

	p := &CSFloatProvider{
		client:  client,
		baseURL: config.DefaultBaseURL,
		tracer:  tracer,
		limiter: NewPerMinuteLimiter(60),
		backoff: defaultBackoff,
		log:     logging.Component(nil, "csfloat"),
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ListOffers fetches one page of listings.
func (p *CSFloatProvider) ListOffers(ctx context.Context, q domain.OfferQuery) (*domain.OfferPage, error) {
	ctx, span := p.tracer.Start(ctx, "csfloat.list-offers")
	defer span.End()
	span.SetAttributes(
		attribute.String("csfloat.market_hash_name", q.Name),
		attribute.Int("csfloat.category", q.Category),
	)

	limit := q.Limit
	if limit <= 0 || limit > maxListingLimit {
		limit = maxListingLimit
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = defaultSortBy
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort_by", sortBy)
	if q.Name != "" {
		params.Set("market_hash_name", q.Name)
	}
	if q.Category > 0 {
		params.Set("category", strconv.Itoa(q.Category))
	}
	if q.MinFloat != nil {
		params.Set("min_float", strconv.FormatFloat(*q.MinFloat, 'f', -1, 64))
	}
	if q.MaxFloat != nil {
		params.Set("max_float", strconv.FormatFloat(*q.MaxFloat, 'f', -1, 64))
	}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}

	resp, err := p.get(ctx, "/listings", params, listingTimeout)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list offers: %w", err)
	}

	rows := extractRows(resp.Body(), offerRowKeys)
	page := &domain.OfferPage{
		Offers:     make([]domain.Offer, 0, len(rows)),
		NextCursor: strings.TrimSpace(resp.Header().Get("X-Next-Cursor")),
	}
	for _, row := range rows {
		if !row.IsObject() {
			continue
		}
		page.Offers = append(page.Offers, offerFromRow(row))
	}
	span.SetAttributes(attribute.Int("csfloat.offers", len(page.Offers)))
	return page, nil
}

// BuyOrders fetches the standing bids attached to a listing.
func (p *CSFloatProvider) BuyOrders(ctx context.Context, offerID string, limit int) ([]domain.BuyOrder, error) {
	ctx, span := p.tracer.Start(ctx, "csfloat.buy-orders")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	resp, err := p.get(ctx, "/listings/"+url.PathEscape(offerID)+"/buy-orders", params, listingTimeout)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("buy orders for %s: %w", offerID, err)
	}

	rows := extractRows(resp.Body(), nil)
	orders := make([]domain.BuyOrder, 0, len(rows))
	for _, row := range rows {
		if !row.IsObject() {
			continue
		}
		orders = append(orders, buyOrderFromRow(row))
	}
	return orders, nil
}

// SaleHistory fetches recent sales for a market hash name. limit is clamped
// to 1..400.
func (p *CSFloatProvider) SaleHistory(ctx context.Context, name string, limit int) ([]domain.SaleEvent, error) {
	ctx, span := p.tracer.Start(ctx, "csfloat.sale-history")
	defer span.End()
	span.SetAttributes(attribute.String("csfloat.market_hash_name", name))

	if limit < 1 {
		limit = 1
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	resp, err := p.get(ctx, "/history/"+url.PathEscape(name)+"/sales", params, historyTimeout)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("sale history for %s: %w", name, err)
	}

	rows := extractRows(resp.Body(), historyRowKeys)
	events := make([]domain.SaleEvent, 0, len(rows))
	for _, row := range rows {
		if !row.IsObject() {
			continue
		}
		events = append(events, saleEventFromRow(row))
	}
	return events, nil
}

// get issues a paced GET. 429 answers are retried up to three times after a
// fixed backoff; a 5xx answer is retried once.
func (p *CSFloatProvider) get(ctx context.Context, path string, params url.Values, timeout time.Duration) (*resty.Response, error) {
	endpoint := p.baseURL + path
	rateLimited := 0
	serverRetried := false

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := p.client.R().
			SetContext(reqCtx).
			SetQueryParamsFromValues(params).
			Get(endpoint)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}

		status := resp.StatusCode()
		switch {
		case status == http.StatusTooManyRequests:
			if rateLimited >= maxRateLimitRetries {
				return nil, fmt.Errorf("GET %s: %w", path, ErrRateLimited)
			}
			rateLimited++
			p.log.WithFields(logrus.Fields{"path": path, "attempt": rateLimited}).Warn("rate limited, backing off")
		case status >= 500 && !serverRetried:
			serverRetried = true
			p.log.WithFields(logrus.Fields{"path": path, "status": status}).Warn("server error, retrying once")
		case status < 200 || status >= 300:
			return nil, &APIError{StatusCode: status, Body: truncate(resp.String(), maxErrorBodyLen)}
		default:
			return resp, nil
		}

		if err := p.sleep(ctx, p.backoff); err != nil {
			return nil, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
