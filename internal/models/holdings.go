package models

import (
	"encoding/json"
	"fmt"
)

// Holdings is the set of stocks held in one market, unique by code.
// Insertion order is kept; replacing a code keeps its original position.
// The zero value is an empty, usable set.
type Holdings struct {
	items []*Stock
	index map[string]int
}

// Upsert inserts s, or replaces the stock with the same code. It reports
// whether an existing entry was replaced.
func (h *Holdings) Upsert(s Stock) bool {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	stock := s
	if i, ok := h.index[s.Code]; ok {
		h.items[i] = &stock
		return true
	}
	h.index[s.Code] = len(h.items)
	h.items = append(h.items, &stock)
	return false
}

// Get returns the stock with the given code.
func (h *Holdings) Get(code string) (*Stock, bool) {
	i, ok := h.index[code]
	if !ok {
		return nil, false
	}
	return h.items[i], true
}

// Len returns the number of holdings.
func (h *Holdings) Len() int { return len(h.items) }

// Stocks returns the holdings in order. The pointers are live: price
// refreshes update them in place.
func (h *Holdings) Stocks() []*Stock {
	out := make([]*Stock, len(h.items))
	copy(out, h.items)
	return out
}

// Clone returns a deep copy of h.
func (h *Holdings) Clone() Holdings {
	var out Holdings
	for _, s := range h.items {
		out.Upsert(s.Clone())
	}
	return out
}

// MarshalJSON encodes the holdings as an ordered array of stock records.
func (h Holdings) MarshalJSON() ([]byte, error) {
	list := make([]Stock, 0, len(h.items))
	for _, s := range h.items {
		list = append(list, *s)
	}
	return marshalRaw(list)
}

// UnmarshalJSON decodes an array of stock records. Later records with a
// duplicate code replace earlier ones.
func (h *Holdings) UnmarshalJSON(data []byte) error {
	var list []Stock
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decoding holdings: %w", err)
	}
	*h = Holdings{}
	for _, s := range list {
		h.Upsert(s)
	}
	return nil
}

// StockHoldings groups holdings by market.
type StockHoldings struct {
	AShares  Holdings `json:"AShares"`
	USStocks Holdings `json:"USStocks"`
	HKStocks Holdings `json:"HKStocks"`
}

// Clone returns a deep copy of every market.
func (s *StockHoldings) Clone() StockHoldings {
	return StockHoldings{
		AShares:  s.AShares.Clone(),
		USStocks: s.USStocks.Clone(),
		HKStocks: s.HKStocks.Clone(),
	}
}

// Market returns the holdings for m, or nil for an unknown market.
func (s *StockHoldings) Market(m Market) *Holdings {
	switch m {
	case AShares:
		return &s.AShares
	case USStocks:
		return &s.USStocks
	case HKStocks:
		return &s.HKStocks
	}
	return nil
}
