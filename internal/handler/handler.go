package handler

import (
	"context"

	"floatwatch/internal/domain"
	"floatwatch/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SnapshotAPI is the resolver surface exposed over HTTP.
type SnapshotAPI interface {
	Resolve(ctx context.Context, req service.SnapshotRequest) (*domain.Snapshot, error)
	DepthQuote(ctx context.Context, req service.SnapshotRequest, pages int) (*domain.DepthQuote, error)
	MarketName(req service.SnapshotRequest) (string, error)
}

type Handler struct {
	tracer    trace.Tracer
	snapshots SnapshotAPI
}

func New(tracer trace.Tracer, snapshots SnapshotAPI) *Handler {
	return &Handler{
		tracer:    tracer,
		snapshots: snapshots,
	}
}

// RegisterRoutes mounts the public health check on r and the API routes
// behind the given middleware.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiMiddleware ...gin.HandlerFunc) {
	r.GET("/health", h.Health)

	api := r.Group("/api", apiMiddleware...)
	api.GET("/snapshot", h.GetSnapshot)
	api.GET("/depth", h.GetDepth)
	api.GET("/market-name", h.GetMarketName)
}
