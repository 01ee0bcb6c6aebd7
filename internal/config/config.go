package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
)

// ErrMissingAPIKey is returned when CSFLOAT_API_KEY is not configured.
var ErrMissingAPIKey = errors.New("CSFLOAT_API_KEY is not set")

const (
	DefaultBaseURL      = "https://csfloat.com/api/v1"
	DefaultItem         = "AK-47 | Redline (Field-Tested)"
	DefaultHistoryPath  = "logs/csfloat_snapshots.csv"
	DefaultLatestPath   = "logs/csfloat_snapshot_latest.csv"
	defaultBackoffMS    = 1500
	defaultMaxPages     = 5
	defaultRatePerMin   = 60
	defaultCacheTTLSecs = 60
	defaultPollSecs     = 300
	defaultHTTPPort     = 8080
)

type Config struct {
	CSFloatAPIKey  string
	CSFloatBaseURL string

	DefaultItem     string
	AnchorBufferPct float64

	SnapshotHistoryPath string
	SnapshotLatestPath  string

	BackoffMS  int
	MaxPages   int
	RatePerMin int

	RedisURL             string
	SnapshotCacheTTLSecs int

	WatchlistFile    string
	PollIntervalSecs int

	HTTPPort         int
	APIKey           string
	TelegramBotToken string

	LogLevel  string
	LogFile   string
	LogFormat string
}

// Load reads configuration from the environment. Invalid numeric values fall
// back to their defaults with a warning.
func Load() *Config {
	cfg := &Config{
		CSFloatAPIKey:    strings.TrimSpace(os.Getenv("CSFLOAT_API_KEY")),
		CSFloatBaseURL:   strings.TrimRight(strings.TrimSpace(os.Getenv("CSFLOAT_BASE_URL")), "/"),
		DefaultItem:      strings.TrimSpace(os.Getenv("DEFAULT_ITEM")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		WatchlistFile:    strings.TrimSpace(os.Getenv("WATCHLIST_FILE")),
		APIKey:           os.Getenv("API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		LogLevel:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		LogFile:          strings.TrimSpace(os.Getenv("LOG_FILE")),
		LogFormat:        strings.TrimSpace(os.Getenv("LOG_FORMAT")),
	}

	if cfg.CSFloatAPIKey == "" {
		log.Println("Warning: CSFLOAT_API_KEY not set")
	}
	if cfg.CSFloatBaseURL == "" {
		cfg.CSFloatBaseURL = DefaultBaseURL
	}
	if cfg.DefaultItem == "" {
		cfg.DefaultItem = DefaultItem
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, snapshot cache disabled")
	}

	cfg.SnapshotHistoryPath = envOr("SNAPSHOT_HISTORY_PATH", DefaultHistoryPath)
	cfg.SnapshotLatestPath = envOr("SNAPSHOT_LATEST_PATH", DefaultLatestPath)

	cfg.AnchorBufferPct = 0
	if v := strings.TrimSpace(os.Getenv("ANCHOR_BUFFER_PCT")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.AnchorBufferPct = f
		} else {
			log.Printf("Warning: invalid ANCHOR_BUFFER_PCT=%q, using 0", v)
		}
	}

	cfg.BackoffMS = positiveInt("CSFLOAT_BACKOFF_MS", defaultBackoffMS)
	cfg.MaxPages = positiveInt("CSFLOAT_MAX_PAGES", defaultMaxPages)
	cfg.RatePerMin = positiveInt("CSFLOAT_RATE_PER_MIN", defaultRatePerMin)
	cfg.SnapshotCacheTTLSecs = positiveInt("SNAPSHOT_CACHE_TTL_SECS", defaultCacheTTLSecs)
	cfg.PollIntervalSecs = positiveInt("POLL_INTERVAL_SECS", defaultPollSecs)
	cfg.HTTPPort = positiveInt("HTTP_PORT", defaultHTTPPort)

	return cfg
}

// RequireAPIKey reports ErrMissingAPIKey when no marketplace key is set.
func (c *Config) RequireAPIKey() error {
	if c == nil || c.CSFloatAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
