package provider

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"
)

// RateSnapshot is one fetched, timestamped set of rates. It is immutable:
// the rates map is copied on construction and only exposed through
// accessors.
type RateSnapshot struct {
	fetchedAt time.Time
	rates     map[string]float64
}

// NewRateSnapshot builds a snapshot from rates keyed by currency code.
// Codes are trimmed and uppercased.
func NewRateSnapshot(fetchedAt time.Time, rates map[string]float64) *RateSnapshot {
	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		copied[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return &RateSnapshot{fetchedAt: fetchedAt, rates: copied}
}

// FetchedAt returns when the snapshot was fetched.
func (s *RateSnapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// Rate returns the rate for code.
func (s *RateSnapshot) Rate(code string) (float64, bool) {
	rate, ok := s.rates[strings.ToUpper(strings.TrimSpace(code))]
	return rate, ok
}

// Codes returns the snapshot's currency codes in lexicographic order.
func (s *RateSnapshot) Codes() []string {
	return slices.Sorted(maps.Keys(s.rates))
}

// Rates returns a copy of the rates map.
func (s *RateSnapshot) Rates() map[string]float64 {
	return maps.Clone(s.rates)
}

// Len returns the number of rates in the snapshot.
func (s *RateSnapshot) Len() int {
	return len(s.rates)
}

// MarshalJSON implements json.Marshaler.
func (s *RateSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FetchedAt time.Time          `json:"fetchedAt"`
		Data      map[string]float64 `json:"data"`
	}{
		FetchedAt: s.fetchedAt,
		Data:      s.rates,
	})
}
