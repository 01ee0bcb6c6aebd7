// Package history turns recent sale events into 24-hour volume and average
// sale price.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"floatwatch/internal/domain"
	"floatwatch/internal/marketname"
	"floatwatch/pkg/logging"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultLookbackHours = 24
	DefaultLimit         = 400
)

// SaleSource is the subset of the marketplace client used for history.
type SaleSource interface {
	SaleHistory(ctx context.Context, name string, limit int) ([]domain.SaleEvent, error)
}

// Query selects the sales to aggregate. A nil Wear disables float filtering
// and Category domain.CategoryAny accepts every category.
type Query struct {
	Name          string
	Wear          *domain.FloatRange
	Category      int
	LookbackHours int
	Limit         int
}

// Metrics is the aggregate over the kept sales.
type Metrics struct {
	Volume      int     `json:"volume"`
	AvgPriceUSD float64 `json:"avg_price_usd"`
}

type Aggregator struct {
	source SaleSource
	tracer trace.Tracer
	log    *logrus.Entry
	now    func() time.Time
}

func NewAggregator(source SaleSource, tracer trace.Tracer, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		source: source,
		tracer: tracer,
		log:    logging.Component(logger, "history"),
		now:    time.Now,
	}
}

// Aggregate fetches the sale history for q.Name and reduces it to Metrics.
// Wear filtering is dropped for items without float values.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (Metrics, error) {
	ctx, span := a.tracer.Start(ctx, "history.aggregate")
	defer span.End()
	span.SetAttributes(attribute.String("history.name", q.Name))

	if q.LookbackHours <= 0 {
		q.LookbackHours = DefaultLookbackHours
	}
	if q.Limit <= 0 || q.Limit > DefaultLimit {
		q.Limit = DefaultLimit
	}
	if q.Wear != nil && !marketname.SupportsFloat(q.Name) {
		q.Wear = nil
	}

	events, err := a.source.SaleHistory(ctx, q.Name, q.Limit)
	if err != nil {
		span.RecordError(err)
		return Metrics{}, fmt.Errorf("aggregate history for %s: %w", q.Name, err)
	}

	m := Reduce(events, q, a.now())
	a.log.WithFields(logrus.Fields{
		"name":   q.Name,
		"events": len(events),
		"volume": m.Volume,
	}).Debug("history aggregated")
	span.SetAttributes(attribute.Int("history.volume", m.Volume))
	return m, nil
}

// Reduce applies the sale filters to events and computes the metrics as of now.
func Reduce(events []domain.SaleEvent, q Query, now time.Time) Metrics {
	lookback := time.Duration(q.LookbackHours) * time.Hour
	var (
		volume int
		total  float64
	)
	for _, ev := range events {
		if !Keep(ev, q, now, lookback) {
			continue
		}
		volume++
		total += float64(ev.PriceCents) / 100.0
	}
	if volume == 0 {
		return Metrics{}
	}
	return Metrics{Volume: volume, AvgPriceUSD: total / float64(volume)}
}

// Keep reports whether a single sale counts toward the metrics.
func Keep(ev domain.SaleEvent, q Query, now time.Time, lookback time.Duration) bool {
	if state := strings.ToLower(strings.TrimSpace(ev.State)); state != "" && state != "sold" {
		return false
	}
	if ev.SoldAt == nil || now.Sub(*ev.SoldAt) > lookback {
		return false
	}
	if q.Category != domain.CategoryAny && domain.CategoryCodeFromFlags(ev.IsStatTrak, ev.IsSouvenir) != q.Category {
		return false
	}
	if q.Wear != nil && (ev.FloatValue == nil || !q.Wear.Contains(*ev.FloatValue)) {
		return false
	}
	return ev.PriceCents > 0
}
