// Package app assembles the snapshot resolver from configuration. It is
// shared by the CLI, the HTTP server and the MCP server.
package app

import (
	"context"
	"time"

	"floatwatch/internal/cache"
	"floatwatch/internal/config"
	"floatwatch/internal/provider"
	"floatwatch/internal/service"
	"floatwatch/pkg/logging"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// Swappable for tests.
var (
	connectCache = cache.Connect
	newProvider  = func(tracer trace.Tracer, apiKey string, opts ...provider.Option) (service.MarketDataSource, error) {
		return provider.NewCSFloatProvider(tracer, apiKey, opts...)
	}
)

// Resolver is a wired snapshot service plus the resources it holds.
type Resolver struct {
	*service.SnapshotService
	closers []func() error
}

// Close releases the cache connection, if any.
func (r *Resolver) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewResolver builds the marketplace client and snapshot service. A missing
// API key is returned as config.ErrMissingAPIKey before anything connects.
// Redis failures only disable the cache.
func NewResolver(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger *logrus.Logger) (*Resolver, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	source, err := newProvider(tracer, cfg.CSFloatAPIKey,
		provider.WithBaseURL(cfg.CSFloatBaseURL),
		provider.WithBackoff(time.Duration(cfg.BackoffMS)*time.Millisecond),
		provider.WithRateLimiter(provider.NewPerMinuteLimiter(cfg.RatePerMin)),
		provider.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	r := &Resolver{}
	var rc service.RedisClient
	client, err := connectCache(ctx, cfg.RedisURL)
	if err != nil {
		logging.Component(logger, "app").WithError(err).Warn("snapshot cache disabled")
	} else if client != nil {
		rc = client
		r.closers = append(r.closers, client.Close)
	}

	r.SnapshotService = service.NewSnapshotService(tracer, source, nil, rc, logger, service.SnapshotOptions{
		CacheTTL: time.Duration(cfg.SnapshotCacheTTLSecs) * time.Second,
		MaxPages: cfg.MaxPages,
	})
	return r, nil
}
