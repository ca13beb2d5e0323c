package store

import (
	"context"
	"fmt"

	apperrors "assettracker/internal/errors"
	"assettracker/internal/models"

	"gorm.io/gorm"
)

// SQLStore keeps the portfolio in the portfolio_days and portfolio_stocks
// tables.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore creates a SQLStore. The schema must already exist.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Load reads every day with its holdings in market and position order.
func (s *SQLStore) Load(ctx context.Context) (*models.Portfolio, error) {
	var records []models.DayRecord
	err := s.db.WithContext(ctx).
		Preload("Stocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("market").Order("position")
		}).
		Order("date").
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("load portfolio: %w", err))
	}

	p := models.NewPortfolio()
	for i := range records {
		date, err := models.ParseDate(records[i].Date)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err)
		}
		day, err := records[i].ToDay()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("day %s: %w", date, err))
		}
		p.Put(date, day)
	}
	return p, nil
}

// Save replaces the stored portfolio with p in one transaction.
func (s *SQLStore) Save(ctx context.Context, p *models.Portfolio) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.StockRecord{}).Error; err != nil {
			return fmt.Errorf("clear stocks: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.DayRecord{}).Error; err != nil {
			return fmt.Errorf("clear days: %w", err)
		}
		for _, date := range p.Dates() {
			day, _ := p.Get(date)
			rec := day.ToRecord(date)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("insert day %s: %w", date, err)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}
