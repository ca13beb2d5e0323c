package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "assettracker/internal/errors"
	"assettracker/internal/models"
)

// JSONStore keeps the portfolio in a single JSON document keyed by date.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSONStore backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

// Load reads the portfolio file. A missing file loads as an empty portfolio.
func (s *JSONStore) Load(ctx context.Context) (*models.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewPortfolio(), nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("read %s: %w", s.path, err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.NewPortfolio(), nil
	}

	p := models.NewPortfolio()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("decode %s: %w", s.path, err))
	}
	return p, nil
}

// Save writes the portfolio atomically through a temporary file in the
// same directory.
func (s *JSONStore) Save(ctx context.Context, p *models.Portfolio) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(p); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("encode portfolio: %w", err))
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("create %s: %w", dir, err))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("write %s: %w", tmp.Name(), err))
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("close %s: %w", tmp.Name(), err))
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, fmt.Errorf("rename to %s: %w", s.path, err))
	}
	return nil
}
