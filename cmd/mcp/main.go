package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"floatwatch/internal/app"
	"floatwatch/internal/config"
	"floatwatch/internal/domain"
	"floatwatch/internal/service"
	"floatwatch/pkg/logging"
	"floatwatch/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const (
	serverName    = "floatwatch"
	serverVersion = "v1.0.0"
)

type resolver interface {
	Resolve(ctx context.Context, req service.SnapshotRequest) (*domain.Snapshot, error)
	MarketName(req service.SnapshotRequest) (string, error)
	Close() error
}

var (
	loadEnvFunc     = godotenv.Load
	loadConfigFunc  = config.Load
	initTracerFunc  = tracing.InitLocalTracer
	newResolverFunc = func(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger *logrus.Logger) (resolver, error) {
		return app.NewResolver(ctx, cfg, tracer, logger)
	}
	runServerFunc = func(ctx context.Context, s *mcp.Server) error {
		return s.Run(ctx, &mcp.StdioTransport{})
	}
	exitFunc = os.Exit
)

// ItemInput is the argument shape shared by both tools.
type ItemInput struct {
	Name     string `json:"name" jsonschema:"base item name, e.g. AK-47 | Redline"`
	Wear     string `json:"wear,omitempty" jsonschema:"optional wear key: fn, mw, ft, ww or bs"`
	Category string `json:"category,omitempty" jsonschema:"optional category: normal, stattrak or souvenir"`
}

func (in ItemInput) request() (service.SnapshotRequest, error) {
	wear, err := domain.ParseWear(in.Wear)
	if err != nil {
		return service.SnapshotRequest{}, err
	}
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return service.SnapshotRequest{}, err
	}
	return service.SnapshotRequest{BaseName: in.Name, Wear: wear, Category: category}, nil
}

type MarketNameOutput struct {
	MarketHashName string `json:"market_hash_name"`
}

type tools struct {
	snapshots resolver
	log       *logrus.Entry
}

func (t *tools) getSnapshot(ctx context.Context, _ *mcp.CallToolRequest, in ItemInput) (*mcp.CallToolResult, domain.Snapshot, error) {
	req, err := in.request()
	if err != nil {
		return nil, domain.Snapshot{}, err
	}
	snap, err := t.snapshots.Resolve(ctx, req)
	if err != nil {
		t.log.WithError(err).WithField("item", in.Name).Warn("get_snapshot failed")
		return nil, domain.Snapshot{}, err
	}
	return nil, *snap, nil
}

func (t *tools) buildMarketName(_ context.Context, _ *mcp.CallToolRequest, in ItemInput) (*mcp.CallToolResult, MarketNameOutput, error) {
	req, err := in.request()
	if err != nil {
		return nil, MarketNameOutput{}, err
	}
	name, err := t.snapshots.MarketName(req)
	if err != nil {
		return nil, MarketNameOutput{}, err
	}
	return nil, MarketNameOutput{MarketHashName: name}, nil
}

func newServer(snapshots resolver, logger *logrus.Logger) *mcp.Server {
	t := &tools{snapshots: snapshots, log: logging.Component(logger, "mcp")}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_snapshot",
		Description: "Resolve the lowest ask, highest bid and 24h sales of a CS2 item on CSFloat",
	}, t.getSnapshot)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_market_name",
		Description: "Build the canonical market_hash_name for an item, wear and category without network calls",
	}, t.buildMarketName)
	return server
}

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	// stdout carries the protocol, so logs go to stderr or LOG_FILE only.
	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	log := logging.Component(logger, "mcp")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx, serverName+"-mcp")
	if err != nil {
		log.WithError(err).Error("failed to initialize tracer")
		exitFunc(1)
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("error shutting down tracer provider")
		}
	}()

	snapshots, err := newResolverFunc(ctx, cfg, tracer, logger)
	if err != nil {
		log.WithError(err).Error("failed to build snapshot resolver")
		exitFunc(2)
		return
	}
	defer snapshots.Close()

	if err := runServerFunc(ctx, newServer(snapshots, logger)); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("mcp server stopped")
	}
}
