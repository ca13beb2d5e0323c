// Package services exposes the portfolio operations to the HTTP handlers
// and the CLI, serialising access and persisting after each change.
package services

import (
	"context"
	"time"

	"assettracker/internal/batch"
	"assettracker/internal/models"
	"assettracker/internal/pagination"
	"assettracker/internal/portfolio"
)

// PortfolioServicer defines the contract for day-level portfolio operations.
type PortfolioServicer interface {
	ListDays(page pagination.PageRequest) (*pagination.PageResponse[DayListItem], error)
	GetDay(date string) (*models.PortfolioDay, error)
	Summary(date string) (*portfolio.Summary, error)
	SetCash(ctx context.Context, date, currency string, amount float64) (*models.PortfolioDay, error)
	UpsertStock(ctx context.Context, date, market string, stock models.Stock) (*models.PortfolioDay, error)
	RefreshPrices(ctx context.Context, date string) (*portfolio.PriceReport, error)
	RefreshValuation(ctx context.Context, date string) (*portfolio.ValuationReport, error)
}

// BatchServicer defines the contract for batch refresh runs.
type BatchServicer interface {
	RunBatch(ctx context.Context, start, end string, delay time.Duration) (*batch.Result, error)
}

// DayListItem is one row of the day listing.
type DayListItem struct {
	Date     string   `json:"date"`
	TotalUSD *float64 `json:"total_usd"`
	Holdings int      `json:"holdings"`
}
