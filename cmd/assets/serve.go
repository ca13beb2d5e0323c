package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"

	_ "assettracker/internal/docs" // swagger docs
	"assettracker/internal/handlers"
	"assettracker/internal/validator"
)

// @title          Asset Tracker API
// @version        1.0
// @description    Asset Tracker records daily cash and stock holdings across A-share, US and HK markets, refreshes prices and exchange rates, and values the portfolio in USD, HKD and CNY.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey PipelineKey
// @in header
// @name X-API-Key
// @description Pipeline API key.

type serveCmd struct {
	port string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API" }
func (*serveCmd) Usage() string {
	return `serve [-port <port>]

  Serves the portfolio API until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Listen port; defaults to PORT")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if a.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	router := handlers.NewRouter(
		handlers.NewPortfolioHandler(a.service),
		handlers.NewBatchHandler(a.service, a.cfg.BatchDelay),
		a.cfg.PipelineAPIKey,
	)

	port := c.port
	if port == "" {
		port = a.cfg.Port
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("Starting asset tracker API on port %s", port)
		a.log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fail("%v", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		a.log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fail("%v", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
