package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	apperrors "assettracker/internal/errors"
)

// DateLayout is the ISO date format used as portfolio keys.
const DateLayout = "2006-01-02"

// ParseDate validates an ISO YYYY-MM-DD date and returns it normalised.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidDate, "Invalid date: "+s), err)
	}
	return t.Format(DateLayout), nil
}

// RateOrigin describes where a day's exchange rates came from.
type RateOrigin string

const (
	OriginProvider     RateOrigin = "provider"
	OriginCache        RateOrigin = "cache"
	OriginStaleCache   RateOrigin = "stale-cache"
	OriginDefaultTable RateOrigin = "default-table"
)

// RateStatus records how the rates of the last valuation were obtained.
// It is not persisted.
type RateStatus struct {
	Origin RateOrigin `json:"origin"`
	Source string     `json:"source"`
	// Substituted is set when current rates stood in for a historical date.
	Substituted bool `json:"substituted"`
}

// PortfolioDay is the state of the portfolio on one date.
type PortfolioDay struct {
	Cash          CashHoldings  `json:"cash"`
	TotalAssets   TotalAssets   `json:"totalAssets"`
	ExchangeRates ExchangeRates `json:"exchangeRates"`
	Stocks        StockHoldings `json:"stocks"`

	RateStatus *RateStatus `json:"-"`
}

// NewPortfolioDay returns a zero-valued day.
func NewPortfolioDay() *PortfolioDay {
	return &PortfolioDay{ExchangeRates: ExchangeRates{USD: 1.0}}
}

// Clone returns a deep copy of d. Readers outside the portfolio lock get a
// clone so later refreshes do not write through to them.
func (d *PortfolioDay) Clone() *PortfolioDay {
	out := &PortfolioDay{
		Cash:   d.Cash,
		Stocks: d.Stocks.Clone(),
		TotalAssets: TotalAssets{
			USD: cloneFloat(d.TotalAssets.USD),
			HKD: cloneFloat(d.TotalAssets.HKD),
			CNY: cloneFloat(d.TotalAssets.CNY),
		},
		ExchangeRates: ExchangeRates{
			USD: d.ExchangeRates.USD,
			CNY: cloneFloat(d.ExchangeRates.CNY),
			HKD: cloneFloat(d.ExchangeRates.HKD),
		},
	}
	if d.RateStatus != nil {
		status := *d.RateStatus
		out.RateStatus = &status
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}

// UnmarshalJSON applies the defaults of a fresh day before decoding, so
// missing sections load as zero cash and a USD rate of 1.0.
func (d *PortfolioDay) UnmarshalJSON(data []byte) error {
	type plain PortfolioDay
	day := plain(*NewPortfolioDay())
	if err := json.Unmarshal(data, &day); err != nil {
		return err
	}
	if day.ExchangeRates.USD == 0 {
		day.ExchangeRates.USD = 1.0
	}
	*d = PortfolioDay(day)
	return nil
}

// Portfolio maps ISO dates to days. Fixed-width ISO keys sort
// chronologically, so the latest day is the greatest key.
type Portfolio struct {
	days map[string]*PortfolioDay
}

// NewPortfolio returns an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{days: make(map[string]*PortfolioDay)}
}

// Get returns the day for date.
func (p *Portfolio) Get(date string) (*PortfolioDay, bool) {
	d, ok := p.days[date]
	return d, ok
}

// Put stores day under date, replacing any existing day.
func (p *Portfolio) Put(date string, day *PortfolioDay) {
	if p.days == nil {
		p.days = make(map[string]*PortfolioDay)
	}
	p.days[date] = day
}

// Len returns the number of days.
func (p *Portfolio) Len() int { return len(p.days) }

// Dates returns all dates in ascending order.
func (p *Portfolio) Dates() []string {
	dates := make([]string, 0, len(p.days))
	for d := range p.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Latest returns the greatest date and its day.
func (p *Portfolio) Latest() (string, *PortfolioDay, bool) {
	var latest string
	for d := range p.days {
		if d > latest {
			latest = d
		}
	}
	if latest == "" {
		return "", nil, false
	}
	return latest, p.days[latest], true
}

// DatesBetween returns the dates within [start, end] in ascending order.
// An empty bound is unbounded.
func (p *Portfolio) DatesBetween(start, end string) []string {
	var out []string
	for _, d := range p.Dates() {
		if start != "" && d < start {
			continue
		}
		if end != "" && d > end {
			continue
		}
		out = append(out, d)
	}
	return out
}

// MarshalJSON encodes the portfolio as a date-keyed object in date order.
func (p *Portfolio) MarshalJSON() ([]byte, error) {
	if p.days == nil {
		return []byte("{}"), nil
	}
	return marshalRaw(p.days)
}

// marshalRaw encodes v without HTML escaping, so stock names such as
// "AT&T" are stored as written.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a date-keyed object, rejecting malformed dates.
func (p *Portfolio) UnmarshalJSON(data []byte) error {
	raw := make(map[string]*PortfolioDay)
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding portfolio: %w", err)
	}
	p.days = make(map[string]*PortfolioDay, len(raw))
	for date, day := range raw {
		if _, err := ParseDate(date); err != nil {
			return fmt.Errorf("decoding portfolio: %w", err)
		}
		if day == nil {
			day = NewPortfolioDay()
		}
		p.days[date] = day
	}
	return nil
}
