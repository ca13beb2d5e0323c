package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"assettracker/internal/config"
	"assettracker/internal/database"
	"assettracker/internal/logger"
	"assettracker/internal/provider"
	"assettracker/internal/services"
	"assettracker/internal/store"
	"assettracker/internal/validator"
)

// exitPartial is returned by batch when at least one date failed.
const exitPartial = 2

// checkFlags validates a command's flag struct against its validate tags.
var checkFlags = validator.New()

// app is the wired service plus what it needs released on exit.
type app struct {
	cfg     *config.Config
	service *services.PortfolioService
	log     *zap.SugaredLogger
	closers []func() error
}

// openApp loads configuration, initialises logging, opens the configured
// store and loads the portfolio.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	a := &app{cfg: cfg, log: logger.Get()}

	st, err := a.openStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := provider.Options{
		HTTPClient:        &http.Client{Timeout: cfg.RequestTimeout},
		RequestsPerSecond: cfg.UpstreamRateLimit,
		CacheTTL:          cfg.RateCacheTTL,
		HistoryWindow:     cfg.HistoryWindow,
		AlphaVantageKey:   cfg.AlphaVantageKey,
		Endpoints: provider.Endpoints{
			ExchangeRateAPI: cfg.ExchangeRateURL,
			AlphaVantage:    cfg.AlphaVantageURL,
			YahooChart:      cfg.YahooChartURL,
			EastmoneyQuote:  cfg.EastmoneyQuoteURL,
			EastmoneyKline:  cfg.EastmoneyKlineURL,
			FundEstimate:    cfg.FundEstimateURL,
			FundHistory:     cfg.FundHistoryURL,
		},
		Logger: a.log,
	}

	svc, err := services.NewPortfolioService(ctx, st,
		provider.NewDefaultPriceRouter(opts), provider.NewDefaultRateChain(opts), a.log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	a.service = svc
	return a, nil
}

func (a *app) openStore() (store.Store, error) {
	if a.cfg.StoreDriver == config.StoreJSON {
		a.log.Debugw("using json store", "path", a.cfg.PortfolioPath())
		return store.NewJSONStore(a.cfg.PortfolioPath()), nil
	}

	dbManager, err := database.NewManager(database.NewConfig(a.cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	a.closers = append(a.closers, dbManager.Close)

	if err := dbManager.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	a.log.Debugw("using sql store", "driver", a.cfg.StoreDriver)
	return store.NewSQLStore(dbManager.DB()), nil
}

// Close releases the store.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warnw("close failed", "error", err)
		}
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
