// Package provider contains the upstream rate providers.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirasaad/fxchat/pkg/config"
	"github.com/amirasaad/fxchat/pkg/provider"
	"golang.org/x/time/rate"
)

const freeCurrencyAPIName = "freecurrencyapi"

// FreeCurrencyAPI fetches the latest USD-based rates from freecurrencyapi.com.
type FreeCurrencyAPI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

type latestResponse struct {
	Data map[string]float64 `json:"data"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewFreeCurrencyAPI creates the provider from config. Outgoing calls are
// throttled to RequestsPerMinute with BurstSize.
func NewFreeCurrencyAPI(cfg *config.RateProvider, logger *slog.Logger) *FreeCurrencyAPI {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &FreeCurrencyAPI{
		apiKey:  cfg.ApiKey,
		baseURL: strings.TrimRight(cfg.ApiUrl, "/"),
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With("provider", freeCurrencyAPIName),
		now:     time.Now,
	}
}

func (p *FreeCurrencyAPI) Name() string {
	return freeCurrencyAPIName
}

// Latest returns every rate the API knows.
func (p *FreeCurrencyAPI) Latest(ctx context.Context) (*provider.RateSnapshot, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &provider.RateFetchError{Provider: p.Name(), Err: err}
	}

	endpoint := p.baseURL + "/latest?apikey=" + url.QueryEscape(p.apiKey)
	p.logger.Debug("Fetching latest rates", "url", p.baseURL+"/latest")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &provider.RateFetchError{Provider: p.Name(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &provider.RateFetchError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &provider.RateFetchError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(resp),
		}
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &provider.RateFetchError{
			Provider: p.Name(),
			Err:      fmt.Errorf("%w: %v", provider.ErrMalformedPayload, err),
		}
	}
	if body.Data == nil {
		return nil, &provider.RateFetchError{Provider: p.Name(), Err: provider.ErrMalformedPayload}
	}

	p.logger.Info("Fetched latest rates", "count", len(body.Data))
	return provider.NewRateSnapshot(p.now(), body.Data), nil
}

// upstreamMessage extracts "message" from an error body, falling back to
// the HTTP status text.
func upstreamMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return e.Message
		}
	}
	return http.StatusText(resp.StatusCode)
}

// Ensure FreeCurrencyAPI implements provider.RateProvider
var _ provider.RateProvider = (*FreeCurrencyAPI)(nil)
