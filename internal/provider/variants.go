package provider

import (
	"context"
	"errors"
	"strings"
	"time"
)

// variantSource retries a source under alternative spellings of a code.
type variantSource struct {
	PriceSource
	variants func(code string) []string
}

// WithCodeVariants wraps src so each lookup is tried under every spelling
// returned by variants, first success wins.
func WithCodeVariants(src PriceSource, variants func(code string) []string) PriceSource {
	return &variantSource{PriceSource: src, variants: variants}
}

func (v *variantSource) Quote(ctx context.Context, code string) (float64, error) {
	err := ErrNoData
	for _, alt := range v.variants(code) {
		var p float64
		if p, err = v.PriceSource.Quote(ctx, alt); err == nil {
			return p, nil
		}
		if errors.Is(err, ErrNotSupported) {
			return 0, err
		}
	}
	return 0, err
}

func (v *variantSource) DailyClose(ctx context.Context, code string, from, to time.Time) (float64, error) {
	err := ErrNoData
	for _, alt := range v.variants(code) {
		var p float64
		if p, err = v.PriceSource.DailyClose(ctx, alt, from, to); err == nil {
			return p, nil
		}
		if errors.Is(err, ErrNotSupported) {
			return 0, err
		}
	}
	return 0, err
}

// IsHKFund reports whether an HKEX code is marked as an ETF.
func IsHKFund(code string) bool {
	return strings.Contains(strings.ToUpper(code), "ETF")
}

// HKCodeVariants returns the spellings an HK ETF code may be listed under:
// as given, without leading zeros, and with a leading zero. Any ETF marker
// is removed first.
func HKCodeVariants(code string) []string {
	base := strings.TrimSpace(strings.ReplaceAll(strings.ToUpper(code), "ETF", ""))
	candidates := []string{base, strings.TrimLeft(base, "0")}
	if !strings.HasPrefix(base, "0") {
		candidates = append(candidates, "0"+base)
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
