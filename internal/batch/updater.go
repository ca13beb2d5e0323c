// Package batch refreshes prices and valuations over a range of portfolio
// days and persists the result once.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"assettracker/internal/models"
	"assettracker/internal/portfolio"
	"assettracker/internal/store"
	"assettracker/internal/uuid"
)

// DayRefresher is the part of portfolio.Manager the updater drives.
type DayRefresher interface {
	Portfolio() *models.Portfolio
	RefreshPrices(ctx context.Context, date string) (*portfolio.PriceReport, error)
	RefreshValuation(ctx context.Context, date string) (*portfolio.ValuationReport, error)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Result reports one batch run. Outcomes maps each processed date to
// whether it succeeded; Errors holds the failure of each failed date.
type Result struct {
	RunID    string           `json:"run_id"`
	Dates    []string         `json:"dates"`
	Outcomes map[string]bool  `json:"outcomes"`
	Errors   map[string]error `json:"-"`
	Duration time.Duration    `json:"duration"`
}

// Failed returns the failed dates in processing order.
func (r *Result) Failed() []string {
	var failed []string
	for _, d := range r.Dates {
		if !r.Outcomes[d] {
			failed = append(failed, d)
		}
	}
	return failed
}

// Updater runs the batch.
type Updater struct {
	days   DayRefresher
	store  store.Store
	sleep  SleepFunc
	logger *zap.SugaredLogger
}

// NewUpdater creates an Updater that persists through st.
func NewUpdater(days DayRefresher, st store.Store, logger *zap.SugaredLogger) *Updater {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Updater{days: days, store: st, sleep: sleepContext, logger: logger}
}

// WithSleep replaces the pause between price and valuation refreshes.
func (u *Updater) WithSleep(fn SleepFunc) *Updater {
	u.sleep = fn
	return u
}

// UpdateRange refreshes every day within [start, end] in ascending order.
// An empty bound is unbounded. Each date refreshes prices, pauses for delay
// (not after the last date) and then refreshes its valuation. A failing
// date is recorded and the run moves on. The portfolio is saved exactly
// once after all dates were attempted; only a save failure or an invalid
// bound is returned as an error.
func (u *Updater) UpdateRange(ctx context.Context, start, end string, delay time.Duration) (*Result, error) {
	began := time.Now()
	var err error
	if start != "" {
		if start, err = models.ParseDate(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if end, err = models.ParseDate(end); err != nil {
			return nil, err
		}
	}

	res := &Result{
		RunID:    uuid.New(),
		Dates:    u.days.Portfolio().DatesBetween(start, end),
		Outcomes: make(map[string]bool),
		Errors:   make(map[string]error),
	}
	log := u.logger.With("run_id", res.RunID)
	if len(res.Dates) == 0 {
		log.Warnw("no portfolio days in range", "start", start, "end", end)
	}
	log.Infow("batch update started", "dates", len(res.Dates), "start", start, "end", end, "delay", delay)

	for i, date := range res.Dates {
		last := i == len(res.Dates)-1
		if err := u.updateDate(ctx, date, delay, last); err != nil {
			log.Errorw("batch date failed", "date", date, "error", err)
			res.Outcomes[date] = false
			res.Errors[date] = err
			continue
		}
		res.Outcomes[date] = true
		log.Infow("batch date updated", "date", date)
	}

	saveCtx := ctx
	if ctx.Err() != nil {
		saveCtx = context.WithoutCancel(ctx)
	}
	if err := u.store.Save(saveCtx, u.days.Portfolio()); err != nil {
		res.Duration = time.Since(began)
		return res, fmt.Errorf("saving portfolio after batch: %w", err)
	}

	res.Duration = time.Since(began)
	log.Infow("batch update finished", "succeeded", len(res.Dates)-len(res.Errors),
		"failed", len(res.Errors), "duration", res.Duration)
	return res, nil
}

func (u *Updater) updateDate(ctx context.Context, date string, delay time.Duration, last bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while updating %s: %v", date, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := u.days.RefreshPrices(ctx, date); err != nil {
		return fmt.Errorf("refreshing prices: %w", err)
	}
	if !last && delay > 0 {
		if err := u.sleep(ctx, delay); err != nil {
			return err
		}
	}
	if _, err := u.days.RefreshValuation(ctx, date); err != nil {
		return fmt.Errorf("refreshing valuation: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
