// Package history keeps the bounded, most-recent-first list of completed
// conversions and purchases, persisted as a whole on every change.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/amirasaad/fxchat/pkg/money"
	"github.com/amirasaad/fxchat/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxEntries bounds the history when no limit is configured.
const DefaultMaxEntries = 50

// Kind distinguishes plain conversions from confirmed purchases.
type Kind string

const (
	KindConversion Kind = "conversion"
	KindPurchase   Kind = "purchase"
)

// Record is one history entry.
type Record struct {
	ID              uuid.UUID       `json:"id"`
	Kind            Kind            `json:"type"`
	Amount          float64         `json:"amount"`
	Result          decimal.Decimal `json:"result"`
	From            money.Code      `json:"fromCurrency"`
	To              money.Code      `json:"toCurrency"`
	FromName        string          `json:"fromCurrencyName,omitempty"`
	ToName          string          `json:"toCurrencyName,omitempty"`
	FromRate        float64         `json:"fromRate,omitempty"`
	ToRate          float64         `json:"toRate,omitempty"`
	FormattedAmount string          `json:"formattedAmount,omitempty"`
	FormattedResult string          `json:"formattedResult,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// ExchangeRate is the number of To units one From unit bought, or 0 when
// the record carries no rates.
func (r Record) ExchangeRate() float64 {
	if r.FromRate == 0 {
		return 0
	}
	return r.ToRate / r.FromRate
}

// Store is the in-memory history backed by a storage.Store.
type Store struct {
	store  storage.Store
	max    int
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	records []Record
}

// New loads the persisted history once. Persisted data that cannot be
// decoded is discarded and the history starts empty.
func New(ctx context.Context, store storage.Store, maxEntries int, logger *slog.Logger) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	s := &Store{
		store:  store,
		max:    maxEntries,
		logger: logger.With("component", "history"),
		now:    time.Now,
	}

	var records []Record
	found, err := storage.LoadJSON(ctx, store, storage.ConversionHistoryKey, &records)
	switch {
	case err != nil && !found:
		return nil, fmt.Errorf("load history: %w", err)
	case err != nil:
		s.logger.Warn("Discarding unreadable history", "error", err)
		records = nil
	}
	if len(records) > s.max {
		records = records[:s.max]
	}
	s.records = records
	return s, nil
}

// Append puts rec at the front, drops the oldest entries beyond the
// bound, and persists the result. Missing IDs and timestamps are filled.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now().UTC()
	}
	if rec.Kind == "" {
		rec.Kind = KindConversion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Record, 0, min(len(s.records)+1, s.max))
	next = append(next, rec)
	next = append(next, s.records[:min(len(s.records), s.max-1)]...)

	if err := storage.SaveJSON(ctx, s.store, storage.ConversionHistoryKey, next); err != nil {
		return Record{}, fmt.Errorf("save history: %w", err)
	}
	s.records = next
	s.logger.Debug("History appended", "kind", rec.Kind, "size", len(next))
	return rec, nil
}

// Clear empties the history and removes the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, storage.ConversionHistoryKey); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.records = nil
	s.logger.Info("History cleared")
	return nil
}

// List returns the records, most recent first.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Max returns the configured bound.
func (s *Store) Max() int {
	return s.max
}
