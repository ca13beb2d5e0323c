package provider

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"assettracker/internal/models"
)

const defaultHistoryWindow = 24 * time.Hour

// PriceResult is the outcome of resolving one code. Price is nil when every
// source failed.
type PriceResult struct {
	Code   string   `json:"code"`
	Price  *float64 `json:"price"`
	Source string   `json:"source,omitempty"`
	// Secondary is set when the secondary instrument class answered.
	Secondary bool `json:"secondary,omitempty"`
	// Approximate is set when a current price stands in for a historical one.
	Approximate bool `json:"approximate,omitempty"`
}

// Resolved reports whether a price was found.
func (r PriceResult) Resolved() bool { return r.Price != nil }

// SecondaryClass is a recognisable instrument class within a market (funds,
// ETFs) served by its own sources when the primary ones find nothing.
type SecondaryClass struct {
	Name    string
	Match   func(code string) bool
	Sources []PriceSource
}

// PriceChain resolves prices for one market by trying sources in order.
type PriceChain struct {
	market    models.Market
	sources   []PriceSource
	secondary *SecondaryClass
	window    time.Duration
	logger    *zap.SugaredLogger
}

// PriceChainOption configures a PriceChain.
type PriceChainOption func(*PriceChain)

// WithSecondary adds a secondary instrument class.
func WithSecondary(class SecondaryClass) PriceChainOption {
	return func(c *PriceChain) { c.secondary = &class }
}

// WithHistoryWindow sets how far past the requested date daily bars are
// searched.
func WithHistoryWindow(d time.Duration) PriceChainOption {
	return func(c *PriceChain) {
		if d > 0 {
			c.window = d
		}
	}
}

// NewPriceChain creates a chain for market over sources.
func NewPriceChain(market models.Market, logger *zap.SugaredLogger, sources []PriceSource, opts ...PriceChainOption) *PriceChain {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	c := &PriceChain{market: market, sources: sources, window: defaultHistoryWindow, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Market returns the market this chain serves.
func (c *PriceChain) Market() models.Market { return c.market }

// Price resolves code, at asOf (YYYY-MM-DD) when given.
//
// Historical lookups try the primary daily bars, then the primary current
// quote, then the secondary class the same way. Current lookups try the
// primary quote, then the secondary quote.
func (c *PriceChain) Price(ctx context.Context, code, asOf string) PriceResult {
	if asOf == "" {
		return c.current(ctx, code)
	}

	day, err := time.Parse(models.DateLayout, asOf)
	if err != nil {
		c.logger.Warnw("invalid price date, using current price", "market", c.market, "code", code, "date", asOf)
		res := c.current(ctx, code)
		res.Approximate = res.Resolved()
		return res
	}
	from, to := day, day.Add(c.window)

	if res, ok := c.dailyClose(ctx, c.sources, code, from, to); ok {
		return res
	}
	if res, ok := c.quote(ctx, c.sources, code); ok {
		c.logger.Warnw("historical price unavailable, using current price",
			"market", c.market, "code", code, "date", asOf, "source", res.Source)
		res.Approximate = true
		return res
	}
	if c.secondary != nil && c.secondary.Match(code) {
		if res, ok := c.dailyClose(ctx, c.secondary.Sources, code, from, to); ok {
			res.Secondary = true
			return res
		}
		if res, ok := c.quote(ctx, c.secondary.Sources, code); ok {
			c.logger.Warnw("historical price unavailable, using current price",
				"market", c.market, "code", code, "date", asOf, "class", c.secondary.Name)
			res.Secondary = true
			res.Approximate = true
			return res
		}
	}

	c.logger.Errorw("no price found", "market", c.market, "code", code, "date", asOf)
	return PriceResult{Code: code}
}

func (c *PriceChain) current(ctx context.Context, code string) PriceResult {
	if res, ok := c.quote(ctx, c.sources, code); ok {
		return res
	}
	if c.secondary != nil && c.secondary.Match(code) {
		c.logger.Debugw("retrying as secondary instrument", "market", c.market, "code", code, "class", c.secondary.Name)
		if res, ok := c.quote(ctx, c.secondary.Sources, code); ok {
			res.Secondary = true
			return res
		}
	}
	c.logger.Errorw("no price found", "market", c.market, "code", code)
	return PriceResult{Code: code}
}

func (c *PriceChain) quote(ctx context.Context, sources []PriceSource, code string) (PriceResult, bool) {
	for _, src := range sources {
		p, err := src.Quote(ctx, code)
		if err == nil && !validPrice(p) {
			err = errors.New("invalid price")
		}
		if err != nil {
			if !errors.Is(err, ErrNotSupported) {
				c.logger.Debugw("quote failed", "market", c.market, "code", code, "source", src.Name(), "error", err)
			}
			continue
		}
		return PriceResult{Code: code, Price: models.Float(p), Source: src.Name()}, true
	}
	return PriceResult{}, false
}

func (c *PriceChain) dailyClose(ctx context.Context, sources []PriceSource, code string, from, to time.Time) (PriceResult, bool) {
	for _, src := range sources {
		p, err := src.DailyClose(ctx, code, from, to)
		if err == nil && !validPrice(p) {
			err = errors.New("invalid price")
		}
		if err != nil {
			if !errors.Is(err, ErrNotSupported) {
				c.logger.Debugw("daily bars failed", "market", c.market, "code", code, "source", src.Name(), "error", err)
			}
			continue
		}
		return PriceResult{Code: code, Price: models.Float(p), Source: src.Name()}, true
	}
	return PriceResult{}, false
}

// UpdateStockPrices sets every holding's price to the chain's result, one
// stock at a time. A failed lookup clears that stock's price and does not
// affect the others. It stops early if ctx is cancelled.
func (c *PriceChain) UpdateStockPrices(ctx context.Context, h *models.Holdings, asOf string) []PriceResult {
	stocks := h.Stocks()
	results := make([]PriceResult, 0, len(stocks))
	for _, s := range stocks {
		if ctx.Err() != nil {
			break
		}
		res := c.Price(ctx, s.Code, asOf)
		s.Price = res.Price
		results = append(results, res)
	}
	return results
}

// PriceRouter dispatches price updates to the chain for each market.
type PriceRouter struct {
	chains map[models.Market]*PriceChain
	logger *zap.SugaredLogger
}

// NewPriceRouter creates a router over chains, keyed by their market.
func NewPriceRouter(logger *zap.SugaredLogger, chains ...*PriceChain) *PriceRouter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	r := &PriceRouter{chains: make(map[models.Market]*PriceChain, len(chains)), logger: logger}
	for _, c := range chains {
		r.chains[c.Market()] = c
	}
	return r
}

// Chain returns the chain for market.
func (r *PriceRouter) Chain(market models.Market) (*PriceChain, bool) {
	c, ok := r.chains[market]
	return c, ok
}

// UpdateStockPrices refreshes h with the chain for market. A market with no
// chain is left untouched.
func (r *PriceRouter) UpdateStockPrices(ctx context.Context, market models.Market, h *models.Holdings, asOf string) []PriceResult {
	c, ok := r.chains[market]
	if !ok {
		r.logger.Warnw("no price chain for market", "market", market)
		return nil
	}
	return c.UpdateStockPrices(ctx, h, asOf)
}
