package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/fxchat/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type brokenStore struct {
	*storage.MemoryStore
	loadErr error
	saveErr error
}

func (b brokenStore) Load(ctx context.Context, key string) ([]byte, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return b.MemoryStore.Load(ctx, key)
}

func (b brokenStore) Save(ctx context.Context, key string, value []byte) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	return b.MemoryStore.Save(ctx, key, value)
}

func record(n int) Record {
	return Record{
		Kind:   KindConversion,
		Amount: float64(n),
		Result: decimal.NewFromInt(int64(n * 2)),
		From:   "USD",
		To:     "XTC",
	}
}

func TestAppend_MostRecentFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, storage.NewMemoryStore(), 3, discard)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		_, err := s.Append(ctx, record(i))
		require.NoError(t, err)
	}

	list := s.List()
	require.Len(t, list, 3)
	assert.InDelta(t, 5, list[0].Amount, 1e-9)
	assert.InDelta(t, 4, list[1].Amount, 1e-9)
	assert.InDelta(t, 3, list[2].Amount, 1e-9)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.Max())
}

func TestAppend_FillsDefaults(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, storage.NewMemoryStore(), 0, discard)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxEntries, s.Max())

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	rec, err := s.Append(ctx, Record{Amount: 1, From: "USD", To: "ARS"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, fixed, rec.Timestamp)
	assert.Equal(t, KindConversion, rec.Kind)

	purchase, err := s.Append(ctx, Record{Kind: KindPurchase, Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, KindPurchase, purchase.Kind)
}

func TestAppend_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s, err := New(ctx, store, 10, discard)
	require.NoError(t, err)

	first, err := s.Append(ctx, record(1))
	require.NoError(t, err)
	second, err := s.Append(ctx, record(2))
	require.NoError(t, err)

	reloaded, err := New(ctx, store, 10, discard)
	require.NoError(t, err)
	list := reloaded.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.True(t, list[0].Result.Equal(decimal.NewFromInt(4)))
}

func TestNew_TruncatesToBound(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	var many []Record
	for i := range 10 {
		many = append(many, record(i))
	}
	require.NoError(t, storage.SaveJSON(ctx, store, storage.ConversionHistoryKey, many))

	s, err := New(ctx, store, 4, discard)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
}

func TestNew_CorruptHistoryStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(ctx, storage.ConversionHistoryKey, []byte("not json")))

	s, err := New(ctx, store, 5, discard)
	require.NoError(t, err)
	assert.Empty(t, s.List())
}

func TestNew_BackendError(t *testing.T) {
	_, err := New(context.Background(), brokenStore{
		MemoryStore: storage.NewMemoryStore(),
		loadErr:     errors.New("connection reset"),
	}, 5, discard)
	assert.Error(t, err)
}

func TestAppend_SaveFailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	store := brokenStore{MemoryStore: storage.NewMemoryStore()}
	s, err := New(ctx, store, 5, discard)
	require.NoError(t, err)
	_, err = s.Append(ctx, record(1))
	require.NoError(t, err)

	failing := &Store{store: brokenStore{MemoryStore: store.MemoryStore, saveErr: errors.New("quota")},
		max: 5, logger: discard, now: time.Now, records: s.List()}
	_, err = failing.Append(ctx, record(2))
	require.Error(t, err)
	assert.Equal(t, 1, failing.Len())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s, err := New(ctx, store, 5, discard)
	require.NoError(t, err)
	for i := range 3 {
		_, err := s.Append(ctx, record(i))
		require.NoError(t, err)
	}

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.List())
	_, err = store.Load(ctx, storage.ConversionHistoryKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// clearing an empty history is fine
	require.NoError(t, s.Clear(ctx))
}

func TestRecord_ExchangeRate(t *testing.T) {
	assert.InDelta(t, 10, Record{FromRate: 1, ToRate: 10}.ExchangeRate(), 1e-9)
	assert.Zero(t, Record{}.ExchangeRate())
}

func ExampleStore_Append() {
	ctx := context.Background()
	s, _ := New(ctx, storage.NewMemoryStore(), 2, discard)
	for i := 1; i <= 3; i++ {
		_, _ = s.Append(ctx, Record{Amount: float64(i)})
	}
	for _, r := range s.List() {
		fmt.Println(r.Amount)
	}
	// Output:
	// 3
	// 2
}
