package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/fxchat/pkg/config"
	"github.com/amirasaad/fxchat/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *FreeCurrencyAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFreeCurrencyAPI(&config.RateProvider{
		ApiKey:      "test-key",
		ApiUrl:      srv.URL + "/",
		HTTPTimeout: 2 * time.Second,
	}, logger)
}

func TestFreeCurrencyAPI_Latest(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"USD":1,"EUR":0.92}}`))
	})
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	api.now = func() time.Time { return fixed }

	snap, err := api.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed, snap.FetchedAt())
	assert.Equal(t, []string{"EUR", "USD"}, snap.Codes())
	eur, ok := snap.Rate("EUR")
	require.True(t, ok)
	assert.InDelta(t, 0.92, eur, 1e-9)
}

func TestFreeCurrencyAPI_HTTPErrorUsesUpstreamMessage(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid authentication credentials"}`))
	})

	_, err := api.Latest(context.Background())
	require.Error(t, err)
	var fetchErr *provider.RateFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
	assert.Equal(t, "Invalid authentication credentials", fetchErr.Message)
	assert.Contains(t, err.Error(), "API error (401)")
}

func TestFreeCurrencyAPI_HTTPErrorFallsBackToStatusText(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := api.Latest(context.Background())
	var fetchErr *provider.RateFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Too Many Requests", fetchErr.Message)
}

func TestFreeCurrencyAPI_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing data", `{"rates":{"USD":1}}`},
		{"null data", `{"data":null}`},
		{"data not an object", `{"data":[1,2]}`},
		{"not json", `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := api.Latest(context.Background())
			require.Error(t, err)
			assert.True(t, provider.IsRateFetchError(err))
			assert.True(t, errors.Is(err, provider.ErrMalformedPayload))
		})
	}
}

func TestFreeCurrencyAPI_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	api := NewFreeCurrencyAPI(&config.RateProvider{ApiUrl: srv.URL, HTTPTimeout: time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := api.Latest(context.Background())
	require.Error(t, err)
	assert.True(t, provider.IsRateFetchError(err))
}

func TestFreeCurrencyAPI_CancelledContext(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"USD":1}}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.Latest(ctx)
	require.Error(t, err)
	assert.True(t, provider.IsRateFetchError(err))
}

func TestStatic_Latest(t *testing.T) {
	p := NewStatic(nil)
	assert.Equal(t, "static", p.Name())

	snap, err := p.Latest(context.Background())
	require.NoError(t, err)
	usd, ok := snap.Rate("USD")
	require.True(t, ok)
	assert.InDelta(t, 1.0, usd, 1e-9)

	custom := NewStatic(map[string]float64{"USD": 1, "EUR": 0.5})
	snap, err = custom.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
}
