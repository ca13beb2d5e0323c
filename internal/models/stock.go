package models

// Stock is a single holding. Price is nil until a provider resolves it.
type Stock struct {
	Name     string   `json:"name"`
	Code     string   `json:"code"`
	Quantity float64  `json:"quantity"`
	Cost     float64  `json:"cost"`
	Price    *float64 `json:"price"`
}

// Clone returns a copy of s that shares no pointers with it.
func (s Stock) Clone() Stock {
	if s.Price != nil {
		s.Price = Float(*s.Price)
	}
	return s
}

// HasPrice reports whether the price has been resolved.
func (s *Stock) HasPrice() bool { return s.Price != nil }

// MarketValue returns quantity×price, or nil when the price is unknown.
func (s *Stock) MarketValue() *float64 {
	if s.Price == nil {
		return nil
	}
	v := s.Quantity * *s.Price
	return &v
}

// ProfitLoss returns (price−cost)×quantity, or nil when the price is unknown.
func (s *Stock) ProfitLoss() *float64 {
	if s.Price == nil {
		return nil
	}
	v := (*s.Price - s.Cost) * s.Quantity
	return &v
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 { return &v }
