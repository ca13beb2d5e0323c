package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"assettracker/internal/batch"
	apperrors "assettracker/internal/errors"
	"assettracker/internal/models"
	"assettracker/internal/pagination"
	"assettracker/internal/portfolio"
	"assettracker/internal/store"
)

// PortfolioService guards a portfolio.Manager with a mutex and saves the
// portfolio after every successful change.
type PortfolioService struct {
	mu      sync.Mutex
	manager *portfolio.Manager
	store   store.Store
	batch   *batch.Updater
	logger  *zap.SugaredLogger
}

var (
	_ PortfolioServicer = (*PortfolioService)(nil)
	_ BatchServicer     = (*PortfolioService)(nil)
)

// NewPortfolioService loads the portfolio from st and wires the manager and
// batch updater around it.
func NewPortfolioService(ctx context.Context, st store.Store, prices portfolio.PriceUpdater, rates portfolio.RateProvider, logger *zap.SugaredLogger) (*PortfolioService, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	p, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	m := portfolio.NewManager(p, prices, rates, logger)
	return &PortfolioService{
		manager: m,
		store:   st,
		batch:   batch.NewUpdater(m, st, logger),
		logger:  logger,
	}, nil
}

// ListDays pages through the days in ascending date order.
func (s *PortfolioService) ListDays(page pagination.PageRequest) (*pagination.PageResponse[DayListItem], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.manager.Portfolio()
	dates := p.Dates()
	items := make([]DayListItem, 0, len(dates))
	for _, date := range dates {
		day, _ := p.Get(date)
		holdings := 0
		for _, market := range models.Markets {
			holdings += day.Stocks.Market(market).Len()
		}
		items = append(items, DayListItem{Date: date, TotalUSD: day.TotalAssets.USD, Holdings: holdings})
	}
	resp := pagination.Paginate(items, page)
	return &resp, nil
}

// GetDay returns a copy of the stored day for date.
func (s *PortfolioService) GetDay(date string) (*models.PortfolioDay, error) {
	date, err := models.ParseDate(date)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day, ok := s.manager.Portfolio().Get(date)
	if !ok {
		return nil, apperrors.ErrNoData
	}
	return day.Clone(), nil
}

// Summary projects the day on date, or the latest day when date is empty.
func (s *PortfolioService) Summary(date string) (*portfolio.Summary, error) {
	if date != "" {
		d, err := models.ParseDate(date)
		if err != nil {
			return nil, err
		}
		date = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sum := s.manager.Summarize(date)
	if !sum.Found() {
		return sum, apperrors.ErrNoData
	}
	return sum, nil
}

// SetCash sets one cash balance and saves.
func (s *PortfolioService) SetCash(ctx context.Context, date, currency string, amount float64) (*models.PortfolioDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.manager.SetCash(date, currency, amount); err != nil {
		return nil, err
	}
	return s.saveDay(ctx, date)
}

// UpsertStock adds or replaces a holding and saves.
func (s *PortfolioService) UpsertStock(ctx context.Context, date, market string, stock models.Stock) (*models.PortfolioDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.manager.UpsertStock(date, market, stock); err != nil {
		return nil, err
	}
	return s.saveDay(ctx, date)
}

// RefreshPrices refreshes prices and saves unless nothing was refreshed.
func (s *PortfolioService) RefreshPrices(ctx context.Context, date string) (*portfolio.PriceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.manager.RefreshPrices(ctx, date)
	if err != nil || report.Skipped {
		return report, err
	}
	return report, s.save(ctx)
}

// RefreshValuation refreshes totals and saves unless nothing was valued.
func (s *PortfolioService) RefreshValuation(ctx context.Context, date string) (*portfolio.ValuationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.manager.RefreshValuation(ctx, date)
	if err != nil || report.Skipped {
		return report, err
	}
	return report, s.save(ctx)
}

// RunBatch runs the batch updater over [start, end]. The updater saves
// once at the end.
func (s *PortfolioService) RunBatch(ctx context.Context, start, end string, delay time.Duration) (*batch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.batch.UpdateRange(ctx, start, end, delay)
	if err == nil {
		return res, nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return res, err
	}
	return res, apperrors.Wrap(apperrors.ErrStorage, err)
}

func (s *PortfolioService) saveDay(ctx context.Context, date string) (*models.PortfolioDay, error) {
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	date, _ = models.ParseDate(date)
	day, ok := s.manager.Portfolio().Get(date)
	if !ok {
		return nil, apperrors.ErrNoData
	}
	return day.Clone(), nil
}

func (s *PortfolioService) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.manager.Portfolio()); err != nil {
		s.logger.Errorw("failed to save portfolio", "error", err)
		return err
	}
	return nil
}
