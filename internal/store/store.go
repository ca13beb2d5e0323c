// Package store persists the whole portfolio. Every Save is a full
// overwrite of the previous state.
package store

import (
	"context"

	"assettracker/internal/models"
)

// Store loads and saves a portfolio.
type Store interface {
	// Load returns the stored portfolio, or an empty one when nothing has
	// been saved yet.
	Load(ctx context.Context) (*models.Portfolio, error)
	Save(ctx context.Context, p *models.Portfolio) error
}
