package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floatwatch/internal/app"
	"floatwatch/internal/bot"
	"floatwatch/internal/config"
	"floatwatch/internal/handler"
	"floatwatch/internal/job"
	"floatwatch/internal/snapshotlog"
	"floatwatch/pkg/logging"
	"floatwatch/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "floatwatch/docs"
)

const serviceName = "floatwatch"

type resolver interface {
	handler.SnapshotAPI
	Close() error
}

var (
	loadEnvFunc     = godotenv.Load
	loadConfigFunc  = config.Load
	newLoggerFunc   = logging.New
	initTracerFunc  = tracing.InitTracer
	newResolverFunc = func(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger *logrus.Logger) (resolver, error) {
		return app.NewResolver(ctx, cfg, tracer, logger)
	}
	loadWatchlistFunc      = config.LoadWatchlist
	newPollerFunc          = job.NewSnapshotPoller
	startPollerFunc        = func(p *job.SnapshotPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	exitFunc               = os.Exit
)

// @title           floatwatch API
// @version         1.0
// @description     Market snapshots for CS2 items: lowest ask, highest bid and 24h sales.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	logger := newLoggerFunc(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	log := logging.Component(logger, "server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, serviceName)
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

	// Marketplace client, cache and resolver
	snapshots, err := newResolverFunc(ctx, cfg, tracer, logger)
	if err != nil {
		log.WithError(err).Error("failed to build snapshot resolver")
		exitFunc(1)
		return
	}
	defer snapshots.Close()

	// Watchlist poller (stopped by ctx cancel)
	if cfg.WatchlistFile != "" {
		items, err := loadWatchlistFunc(cfg.WatchlistFile)
		if err != nil {
			log.WithError(err).WithField("file", cfg.WatchlistFile).Warn("watchlist not loaded, poller disabled")
		} else {
			recorder := snapshotlog.NewWriter(cfg.SnapshotHistoryPath, cfg.SnapshotLatestPath)
			poller := newPollerFunc(tracer, snapshots, recorder, items, cfg.PollIntervalSecs, logger)
			startPollerFunc(poller, ctx)
		}
	}

	// Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, snapshots, logger)

	// Routes
	h := newHandlerFunc(tracer, snapshots)

	r := newRouterFunc()
	r.Use(gin.Recovery(), handler.RequestID(), handler.AccessLog(logger))
	r.Use(otelgin.Middleware(serviceName))

	h.RegisterRoutes(r, handler.APIKeyAuth(cfg.APIKey))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("listen failed")
			exitFunc(1)
		}
	}()
	log.WithField("addr", srv.Addr).Info("HTTP server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}

	log.Info("Server exiting")
}
