package models

import (
	"time"

	"assettracker/internal/uuid"

	"gorm.io/gorm"
)

// DayRecord is the row form of a PortfolioDay used by the SQL store.
type DayRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Date      string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"date"`
	CashUSD   float64   `gorm:"not null;default:0" json:"cash_usd"`
	CashHKD   float64   `gorm:"not null;default:0" json:"cash_hkd"`
	CashCNY   float64   `gorm:"not null;default:0" json:"cash_cny"`
	TotalUSD  *float64  `json:"total_usd"`
	TotalHKD  *float64  `json:"total_hkd"`
	TotalCNY  *float64  `json:"total_cny"`
	RateUSD   float64   `gorm:"not null;default:1" json:"rate_usd"`
	RateCNY   *float64  `json:"rate_cny"`
	RateHKD   *float64  `json:"rate_hkd"`
	CreatedAt time.Time `json:"created_at"`

	Stocks []StockRecord `gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE" json:"stocks,omitempty"`
}

// TableName overrides the default table name.
func (DayRecord) TableName() string { return "portfolio_days" }

// BeforeCreate hook generates a UUIDv7 for new records
func (d *DayRecord) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New()
	}
	return nil
}

// StockRecord is one holding of a DayRecord. Position keeps insertion order
// within a market.
type StockRecord struct {
	ID       string   `gorm:"type:uuid;primaryKey" json:"id"`
	DayID    string   `gorm:"type:uuid;not null;index" json:"day_id"`
	Market   Market   `gorm:"type:varchar(16);not null" json:"market"`
	Position int      `gorm:"not null" json:"position"`
	Name     string   `gorm:"type:varchar(255)" json:"name"`
	Code     string   `gorm:"type:varchar(32);not null" json:"code"`
	Quantity float64  `gorm:"not null" json:"quantity"`
	Cost     float64  `gorm:"not null" json:"cost"`
	Price    *float64 `json:"price"`
}

// TableName overrides the default table name.
func (StockRecord) TableName() string { return "portfolio_stocks" }

// BeforeCreate hook generates a UUIDv7 for new records
func (s *StockRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}

// ToRecord flattens day into a DayRecord for date.
func (d *PortfolioDay) ToRecord(date string) DayRecord {
	rec := DayRecord{
		Date:     date,
		CashUSD:  d.Cash.USD,
		CashHKD:  d.Cash.HKD,
		CashCNY:  d.Cash.CNY,
		TotalUSD: d.TotalAssets.USD,
		TotalHKD: d.TotalAssets.HKD,
		TotalCNY: d.TotalAssets.CNY,
		RateUSD:  d.ExchangeRates.USD,
		RateCNY:  d.ExchangeRates.CNY,
		RateHKD:  d.ExchangeRates.HKD,
	}
	for _, market := range Markets {
		for i, s := range d.Stocks.Market(market).Stocks() {
			rec.Stocks = append(rec.Stocks, StockRecord{
				Market:   market,
				Position: i,
				Name:     s.Name,
				Code:     s.Code,
				Quantity: s.Quantity,
				Cost:     s.Cost,
				Price:    s.Price,
			})
		}
	}
	return rec
}

// ToDay rebuilds the PortfolioDay. Stocks are appended in slice order, so
// callers load them ordered by position.
func (r *DayRecord) ToDay() (*PortfolioDay, error) {
	day := NewPortfolioDay()
	day.Cash = CashHoldings{USD: r.CashUSD, HKD: r.CashHKD, CNY: r.CashCNY}
	day.TotalAssets = TotalAssets{USD: r.TotalUSD, HKD: r.TotalHKD, CNY: r.TotalCNY}
	day.ExchangeRates = ExchangeRates{USD: r.RateUSD, CNY: r.RateCNY, HKD: r.RateHKD}
	for _, s := range r.Stocks {
		market, err := ParseMarket(string(s.Market))
		if err != nil {
			return nil, err
		}
		day.Stocks.Market(market).Upsert(Stock{
			Name:     s.Name,
			Code:     s.Code,
			Quantity: s.Quantity,
			Cost:     s.Cost,
			Price:    s.Price,
		})
	}
	return day, nil
}
