package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"floatwatch/internal/bot"
	"floatwatch/internal/config"
	"floatwatch/internal/domain"
	"floatwatch/internal/job"
	"floatwatch/internal/service"
	"floatwatch/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type stubResolver struct{ closed bool }

func (s *stubResolver) Resolve(context.Context, service.SnapshotRequest) (*domain.Snapshot, error) {
	return &domain.Snapshot{Source: domain.SourceNone}, nil
}

func (s *stubResolver) DepthQuote(context.Context, service.SnapshotRequest, int) (*domain.DepthQuote, error) {
	return &domain.DepthQuote{}, nil
}

func (s *stubResolver) MarketName(req service.SnapshotRequest) (string, error) {
	return req.BaseName, nil
}

func (s *stubResolver) Close() error {
	s.closed = true
	return nil
}

type serverStubs struct {
	resolver      *stubResolver
	pollerStarted bool
	botToken      string
	router        *gin.Engine
	exitCode      int
}

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stubs := stubServerDeps(t, &config.Config{
		CSFloatAPIKey:    "k",
		WatchlistFile:    "watchlist.yaml",
		PollIntervalSecs: 1,
		HTTPPort:         8080,
		TelegramBotToken: "tok",
	}, nil)

	runMain(t)

	if !stubs.resolver.closed {
		t.Error("resolver was not closed on shutdown")
	}
	if !stubs.pollerStarted {
		t.Error("poller was not started")
	}
	if stubs.botToken != "tok" {
		t.Errorf("bot token = %q", stubs.botToken)
	}
	if stubs.router == nil {
		t.Fatal("router not built")
	}
	paths := map[string]bool{}
	for _, route := range stubs.router.Routes() {
		paths[route.Path] = true
	}
	for _, p := range []string{"/health", "/api/snapshot", "/api/depth", "/api/market-name", "/swagger/*any"} {
		if !paths[p] {
			t.Errorf("route %s not registered", p)
		}
	}
}

func TestMainExitsWhenResolverFails(t *testing.T) {
	stubs := stubServerDeps(t, &config.Config{}, config.ErrMissingAPIKey)

	runMain(t)

	if stubs.exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", stubs.exitCode)
	}
	if stubs.router != nil {
		t.Fatal("router built despite resolver failure")
	}
}

func runMain(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps(t *testing.T, cfg *config.Config, resolverErr error) *serverStubs {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origNewLogger := newLoggerFunc
	origInitTracer := initTracerFunc
	origNewResolver := newResolverFunc
	origLoadWatchlist := loadWatchlistFunc
	origStartPoller := startPollerFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc
	origExit := exitFunc

	stubs := &serverStubs{resolver: &stubResolver{}}

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config { return cfg }
	newLoggerFunc = func(logging.Options) *logrus.Logger { return logging.Discard() }
	initTracerFunc = func(ctx context.Context, name string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newResolverFunc = func(context.Context, *config.Config, trace.Tracer, *logrus.Logger) (resolver, error) {
		if resolverErr != nil {
			return nil, resolverErr
		}
		return stubs.resolver, nil
	}
	loadWatchlistFunc = func(string) ([]config.WatchItem, error) {
		return []config.WatchItem{{Name: "Kilowatt Case"}}, nil
	}
	startPollerFunc = func(*job.SnapshotPoller, context.Context) { stubs.pollerStarted = true }
	startTelegramBotFunc = func(token string, _ bot.Resolver, _ *logrus.Logger) { stubs.botToken = token }
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine {
		stubs.router = gin.New()
		return stubs.router
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }
	exitFunc = func(code int) { stubs.exitCode = code }

	t.Cleanup(func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		newLoggerFunc = origNewLogger
		initTracerFunc = origInitTracer
		newResolverFunc = origNewResolver
		loadWatchlistFunc = origLoadWatchlist
		startPollerFunc = origStartPoller
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
		exitFunc = origExit
	})
	return stubs
}
