package job

import (
	"context"
	"time"

	"floatwatch/internal/config"
	"floatwatch/internal/domain"
	"floatwatch/internal/service"
	"floatwatch/pkg/logging"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SnapshotResolver interface {
	Resolve(ctx context.Context, req service.SnapshotRequest) (*domain.Snapshot, error)
}

type SnapshotRecorder interface {
	Write(item string, wear domain.WearKey, category domain.Category, snap *domain.Snapshot) error
}

// SnapshotPoller periodically resolves every watchlist item and records the
// result in the snapshot log.
type SnapshotPoller struct {
	tracer       trace.Tracer
	resolver     SnapshotResolver
	recorder     SnapshotRecorder
	items        []config.WatchItem
	pollInterval time.Duration
	log          *logrus.Entry
}

func NewSnapshotPoller(
	tracer trace.Tracer,
	resolver SnapshotResolver,
	recorder SnapshotRecorder,
	items []config.WatchItem,
	pollIntervalSecs int,
	logger *logrus.Logger,
) *SnapshotPoller {
	if pollIntervalSecs <= 0 {
		pollIntervalSecs = 300
	}
	return &SnapshotPoller{
		tracer:       tracer,
		resolver:     resolver,
		recorder:     recorder,
		items:        items,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
		log:          logging.Component(logger, "poller"),
	}
}

// Start polls immediately and then on every tick. Blocks until ctx is
// cancelled.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if len(p.items) == 0 {
		p.log.Info("watchlist empty, snapshot poller idle")
		<-ctx.Done()
		return
	}
	p.log.WithField("items", len(p.items)).Info("snapshot poller starting")

	p.pollOnce(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("snapshot poller stopped")
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce resolves each item in order. One failing item does not stop the
// rest. It returns the number of snapshots recorded.
func (p *SnapshotPoller) pollOnce(ctx context.Context) int {
	ctx, span := p.tracer.Start(ctx, "snapshot-poller.poll")
	defer span.End()

	recorded := 0
	for _, item := range p.items {
		if ctx.Err() != nil {
			break
		}
		fields := logrus.Fields{"item": item.Name, "wear": item.Wear, "category": item.Category}

		snap, err := p.resolver.Resolve(ctx, service.SnapshotRequest{
			BaseName: item.Name,
			Wear:     item.Wear,
			Category: item.Category,
		})
		if err != nil {
			p.log.WithError(err).WithFields(fields).Warn("snapshot failed")
			continue
		}
		if err := p.recorder.Write(item.Name, item.Wear, item.Category, snap); err != nil {
			p.log.WithError(err).WithFields(fields).Warn("snapshot log write failed")
			continue
		}
		recorded++
		p.log.WithFields(fields).WithFields(logrus.Fields{
			"source":     snap.Source,
			"lowest_ask": snap.LowestAsk,
			"vol24h":     snap.Vol24h,
		}).Debug("snapshot recorded")
	}
	span.SetAttributes(attribute.Int("poller.recorded", recorded))
	return recorded
}
