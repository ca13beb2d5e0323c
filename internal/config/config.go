// Package config loads asset tracker configuration from the environment
// (optionally seeded from a .env file) and validates it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Server
	Port           string
	PipelineAPIKey string

	// Storage
	StoreDriver   string
	DataDir       string
	PortfolioFile string
	SQLitePath    string

	// Database (postgres store)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Upstream providers
	RequestTimeout    time.Duration
	RateCacheTTL      time.Duration
	HistoryWindow     time.Duration
	UpstreamRateLimit int
	AlphaVantageKey   string
	ExchangeRateURL   string
	AlphaVantageURL   string
	YahooChartURL     string
	EastmoneyQuoteURL string
	EastmoneyKlineURL string
	FundEstimateURL   string
	FundHistoryURL    string

	// Batch
	BatchDelay time.Duration
}

// Load reads configuration from a .env file (if any) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Port:           getEnv("PORT", "8080"),
		PipelineAPIKey: os.Getenv("PIPELINE_API_KEY"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreJSON)),
		DataDir:       getEnv("DATA_DIR", "data"),
		PortfolioFile: getEnv("PORTFOLIO_FILE", "portfolio.json"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "assets"),
		DBPassword: getEnv("DB_PASSWORD", "assets"),
		DBName:     getEnv("DB_NAME", "assets"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AlphaVantageKey:   os.Getenv("ALPHA_VANTAGE_API_KEY"),
		ExchangeRateURL:   getEnv("EXCHANGE_RATE_API_URL", "https://open.er-api.com/v6/latest"),
		AlphaVantageURL:   getEnv("ALPHA_VANTAGE_URL", "https://www.alphavantage.co/query"),
		YahooChartURL:     getEnv("YAHOO_CHART_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
		EastmoneyQuoteURL: getEnv("EASTMONEY_QUOTE_URL", "https://push2.eastmoney.com/api/qt/stock/get"),
		EastmoneyKlineURL: getEnv("EASTMONEY_KLINE_URL", "https://push2his.eastmoney.com/api/qt/stock/kline/get"),
		FundEstimateURL:   getEnv("FUND_ESTIMATE_URL", "https://fundgz.1234567.com.cn/js"),
		FundHistoryURL:    getEnv("FUND_HISTORY_URL", "https://api.fund.eastmoney.com/f10/lsjz"),
	}
	cfg.SQLitePath = getEnv("SQLITE_PATH", filepath.Join(cfg.DataDir, "portfolio.db"))

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: must be debug, info, warn, or error", cfg.LogLevel)
	}

	switch cfg.StoreDriver {
	case StoreJSON, StoreSQLite, StorePostgres:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: must be json, sqlite, or postgres", cfg.StoreDriver)
	}

	var err error
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateCacheTTL, err = parseDuration("RATE_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.HistoryWindow, err = parseDuration("HISTORY_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.BatchDelay, err = parseNonNegativeDuration("BATCH_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.UpstreamRateLimit, err = parsePositiveInt("UPSTREAM_RATE_LIMIT", 5); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PortfolioPath returns the JSON store location.
func (c *Config) PortfolioPath() string {
	if filepath.IsAbs(c.PortfolioFile) {
		return c.PortfolioFile
	}
	return filepath.Join(c.DataDir, c.PortfolioFile)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	d, err := parseNonNegativeDuration(key, def)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseNonNegativeDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v", key, d)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
