package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"floatwatch/internal/domain"
	"floatwatch/internal/history"
	"floatwatch/internal/marketname"
	"floatwatch/pkg/logging"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyName is returned for requests without an item name.
var ErrEmptyName = errors.New("item name is required")

const (
	buyOrderLimit      = 10
	defaultCacheTTL    = 60 * time.Second
	defaultMaxPages    = 5
	snapshotKeyPrefix  = "snapshot:"
	cheapestOfferLimit = 50
)

// MarketDataSource is the marketplace surface the resolver reads from.
type MarketDataSource interface {
	ListOffers(ctx context.Context, q domain.OfferQuery) (*domain.OfferPage, error)
	BuyOrders(ctx context.Context, offerID string, limit int) ([]domain.BuyOrder, error)
	SaleHistory(ctx context.Context, name string, limit int) ([]domain.SaleEvent, error)
}

type HistoryAggregator interface {
	Aggregate(ctx context.Context, q history.Query) (history.Metrics, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SnapshotRequest is a loosely specified item query. Wear and Category may be
// empty.
type SnapshotRequest struct {
	BaseName string
	Wear     domain.WearKey
	Category domain.Category
}

func (r SnapshotRequest) cacheKey() string {
	return snapshotKeyPrefix + strings.TrimSpace(r.BaseName) + "|" + string(r.Wear) + "|" + string(r.Category)
}

// SnapshotOptions tunes the resolver. Zero values use the defaults.
type SnapshotOptions struct {
	CacheTTL time.Duration
	MaxPages int
}

// SnapshotService resolves item queries into market snapshots.
type SnapshotService struct {
	tracer   trace.Tracer
	source   MarketDataSource
	history  HistoryAggregator
	redis    RedisClient
	cacheTTL time.Duration
	maxPages int
	log      *logrus.Entry
}

func NewSnapshotService(
	tracer trace.Tracer,
	source MarketDataSource,
	historyAgg HistoryAggregator,
	redisClient RedisClient,
	logger *logrus.Logger,
	opts SnapshotOptions,
) *SnapshotService {
	s := &SnapshotService{
		tracer:   tracer,
		source:   source,
		history:  historyAgg,
		redis:    redisClient,
		cacheTTL: defaultCacheTTL,
		maxPages: defaultMaxPages,
		log:      logging.Component(logger, "resolver"),
	}
	if s.history == nil {
		s.history = history.NewAggregator(source, tracer, logger)
	}
	if opts.CacheTTL > 0 {
		s.cacheTTL = opts.CacheTTL
	}
	if opts.MaxPages > 0 {
		s.maxPages = opts.MaxPages
	}
	return s
}

// MarketName returns the canonical catalog name for a request.
func (s *SnapshotService) MarketName(req SnapshotRequest) (string, error) {
	if strings.TrimSpace(req.BaseName) == "" {
		return "", ErrEmptyName
	}
	return marketname.Build(req.BaseName, req.Wear, req.Category), nil
}

// Resolve runs the fallback cascade for the canonical name and, when nothing
// was found for a normal or StatTrak query, retries once with the sibling
// name and no category filter.
func (s *SnapshotService) Resolve(ctx context.Context, req SnapshotRequest) (*domain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "snapshot-service.resolve")
	defer span.End()

	if strings.TrimSpace(req.BaseName) == "" {
		return nil, ErrEmptyName
	}

	if s.redis != nil {
		cached, err := s.getSnapshotCache(ctx, req.cacheKey())
		if err != nil {
			s.log.WithError(err).Warn("redis cache read error")
		}
		if cached != nil {
			span.SetAttributes(attribute.Bool("snapshot.cache_hit", true))
			return cached, nil
		}
	}

	snap, degraded := s.resolve(ctx, req)
	span.SetAttributes(
		attribute.String("snapshot.name", snap.MarketHashName),
		attribute.String("snapshot.source", snap.Source),
		attribute.Bool("snapshot.degraded", degraded),
	)

	// A snapshot built around failed fetches would hide recovery for the
	// whole TTL.
	if s.redis != nil && !degraded {
		if err := s.setSnapshotCache(ctx, req.cacheKey(), snap); err != nil {
			s.log.WithError(err).Warn("redis cache write error")
		}
	}
	return snap, nil
}

// resolve reports degraded when any upstream fetch failed along the way.
func (s *SnapshotService) resolve(ctx context.Context, req SnapshotRequest) (*domain.Snapshot, bool) {
	name := marketname.Build(req.BaseName, req.Wear, req.Category)
	var wear *domain.FloatRange
	if req.Wear.Valid() && marketname.SupportsFloat(name) {
		r := req.Wear.Range()
		wear = &r
	}

	primary, degraded := s.fetchMetrics(ctx, name, req.Category.Code(), wear)
	if !primary.Empty() {
		return primary, degraded
	}

	alt, ok := req.Category.Opposite()
	if !ok {
		return primary, degraded
	}
	altName := marketname.Build(req.BaseName, req.Wear, alt)
	altWear := wear
	if !marketname.SupportsFloat(altName) {
		altWear = nil
	}
	s.log.WithFields(logrus.Fields{"name": name, "alt": altName}).Debug("primary name empty, trying sibling name")

	altSnap, altDegraded := s.fetchMetrics(ctx, altName, domain.CategoryAny, altWear)
	degraded = degraded || altDegraded
	if altSnap.Empty() {
		return primary, degraded
	}
	altSnap.UsedNameVariant = altName
	return altSnap, degraded
}

// fetchMetrics builds one snapshot for an already canonical name. Sub-fetch
// failures degrade the affected fields and set the second result.
func (s *SnapshotService) fetchMetrics(ctx context.Context, name string, category int, wear *domain.FloatRange) (*domain.Snapshot, bool) {
	floatable := marketname.SupportsFloat(name)
	if !floatable {
		wear = nil
	}

	snap := &domain.Snapshot{
		MarketHashName: name,
		Source:         domain.SourceNone,
		IsFloatable:    floatable,
	}

	var lowest *domain.Offer
	degraded := false
	for _, stage := range Cascade(category, wear) {
		offer, err := s.firstOffer(ctx, name, stage)
		if err != nil {
			degraded = true
			s.log.WithError(err).WithFields(logrus.Fields{"name": name, "stage": stage.Label}).Warn("cascade stage failed")
			continue
		}
		if offer == nil {
			continue
		}
		lowest = offer
		snap.Source = stage.Label
		snap.UsedCategory = stage.Category
		snap.UsedWear = stage.Wear
		break
	}

	if lowest != nil {
		snap.LowestAsk = lowest.PriceUSD
		snap.LowestAskID = lowest.ID
		if lowest.ID != "" {
			orders, err := s.source.BuyOrders(ctx, lowest.ID, buyOrderLimit)
			if err != nil {
				degraded = true
				s.log.WithError(err).WithField("offer_id", lowest.ID).Warn("buy orders unavailable")
			} else if price, qty, ok := HighestBid(orders); ok {
				snap.HighestBid = &price
				snap.HighestBidQty = &qty
			}
		}
	}

	metrics, err := s.history.Aggregate(ctx, history.Query{
		Name:          name,
		Wear:          wear,
		Category:      category,
		LookbackHours: history.DefaultLookbackHours,
		Limit:         history.DefaultLimit,
	})
	if err != nil {
		degraded = true
		s.log.WithError(err).WithField("name", name).Warn("sale history unavailable")
		metrics = history.Metrics{}
	}
	snap.Vol24h = metrics.Volume
	snap.ASP24h = metrics.AvgPriceUSD

	return snap, degraded
}

func (s *SnapshotService) firstOffer(ctx context.Context, name string, stage CascadeStage) (*domain.Offer, error) {
	q := domain.OfferQuery{
		Name:     name,
		SortBy:   stage.SortBy,
		Limit:    cheapestOfferLimit,
		Category: stage.Category,
	}.WithWear(stage.Wear)

	page, err := s.source.ListOffers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stage.Label, err)
	}
	if page == nil || len(page.Offers) == 0 {
		return nil, nil
	}
	offer := page.Offers[0]
	return &offer, nil
}

// DepthQuote walks up to pages pages of the cheapest listings under the
// strict filters and summarises their prices. pages is capped by the
// configured page limit.
func (s *SnapshotService) DepthQuote(ctx context.Context, req SnapshotRequest, pages int) (*domain.DepthQuote, error) {
	ctx, span := s.tracer.Start(ctx, "snapshot-service.depth-quote")
	defer span.End()

	if strings.TrimSpace(req.BaseName) == "" {
		return nil, ErrEmptyName
	}
	if pages <= 0 || pages > s.maxPages {
		pages = s.maxPages
	}

	name := marketname.Build(req.BaseName, req.Wear, req.Category)
	q := domain.OfferQuery{
		Name:     name,
		SortBy:   cheapestSortBy,
		Limit:    cheapestOfferLimit,
		Category: req.Category.Code(),
	}
	if req.Wear.Valid() && marketname.SupportsFloat(name) {
		r := req.Wear.Range()
		q = q.WithWear(&r)
	}

	var prices []float64
	fetched := 0
	for fetched < pages {
		page, err := s.source.ListOffers(ctx, q)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("depth quote for %s: %w", name, err)
		}
		fetched++
		if page == nil || len(page.Offers) == 0 {
			break
		}
		for _, o := range page.Offers {
			prices = append(prices, o.PriceUSD)
		}
		if page.NextCursor == "" {
			break
		}
		q.Cursor = page.NextCursor
	}

	quote := &domain.DepthQuote{MarketHashName: name, Count: len(prices), Pages: fetched}
	if len(prices) > 0 {
		quote.Min = sortedCopy(prices)[0]
		quote.Median = Median(prices)
		quote.TrimmedMean = TrimmedMean(prices, depthTrim)
	}
	span.SetAttributes(attribute.Int("depth.count", quote.Count))
	return quote, nil
}

func (s *SnapshotService) setSnapshotCache(ctx context.Context, key string, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, s.cacheTTL).Err()
}

func (s *SnapshotService) getSnapshotCache(ctx context.Context, key string) (*domain.Snapshot, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
