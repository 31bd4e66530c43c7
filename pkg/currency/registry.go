package currency

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	fixtures "github.com/amirasaad/fxchat/internal/fixtures/currency"
	"github.com/amirasaad/fxchat/pkg/money"
	"github.com/amirasaad/fxchat/pkg/notify"
	"github.com/amirasaad/fxchat/pkg/provider"
	"github.com/amirasaad/fxchat/pkg/storage"
)

// MsgInitFailedPrefix prefixes the notification shown when Initialize
// falls back to the default set.
const MsgInitFailedPrefix = "Error al inicializar monedas: "

// Registry is the merged set of provider and user-defined currencies.
type Registry struct {
	store    storage.Store
	rates    RateSource
	notifier notify.Sink
	catalog  map[string]fixtures.Meta
	logger   *slog.Logger

	mu         sync.RWMutex
	currencies map[money.Code]Currency
	custom     []Currency
}

// NewRegistry creates an empty registry. Call Initialize before use.
// notifier may be nil.
func NewRegistry(
	store storage.Store,
	rates RateSource,
	notifier notify.Sink,
	logger *slog.Logger,
) (*Registry, error) {
	catalog, err := fixtures.Catalog()
	if err != nil {
		return nil, fmt.Errorf("load currency catalog: %w", err)
	}
	return &Registry{
		store:      store,
		rates:      rates,
		notifier:   notifier,
		catalog:    catalog,
		logger:     logger.With("component", "currency-registry"),
		currencies: make(map[money.Code]Currency),
	}, nil
}

// Initialize loads persisted user-defined currencies and merges them with
// the latest provider snapshot. When either step fails the registry holds
// USD, ARS and whatever user-defined currencies could be loaded; the error
// is returned for reporting only.
func (r *Registry) Initialize(ctx context.Context) error {
	custom, err := r.loadCustom(ctx)
	if err != nil {
		r.applyFallback(ctx, custom, err)
		return err
	}

	snap, err := r.rates.GetLatestRates(ctx, false, false)
	if err != nil {
		r.applyFallback(ctx, custom, err)
		return err
	}

	set := make(map[money.Code]Currency, snap.Len()+len(custom)+1)
	for code, rate := range snap.Rates() {
		c := money.NormalizeCode(code)
		if !c.IsValid() || !money.IsPositiveFinite(rate) {
			r.logger.Warn("Skipping invalid provider rate", "code", code, "rate", rate)
			continue
		}
		set[c] = Currency{Code: c, Name: r.Name(c.String()), Rate: rate}
	}
	if _, ok := set[money.ARS]; !ok {
		set[money.ARS] = Currency{Code: money.ARS, Name: r.Name(money.ARS.String()), Rate: pinnedARS(snap)}
	}
	for _, c := range custom {
		if _, ok := set[c.Code]; ok {
			r.logger.Warn("User-defined currency shadows provider currency", "code", c.Code)
		}
		set[c.Code] = c
	}

	r.mu.Lock()
	r.currencies = set
	r.custom = custom
	r.mu.Unlock()

	r.logger.Info("Currencies initialized", "total", len(set), "custom", len(custom))
	return nil
}

func (r *Registry) applyFallback(ctx context.Context, custom []Currency, cause error) {
	set := make(map[money.Code]Currency, 2+len(custom))
	for _, c := range fallback() {
		set[c.Code] = c
	}
	for _, c := range custom {
		set[c.Code] = c
	}

	r.mu.Lock()
	r.currencies = set
	r.custom = custom
	r.mu.Unlock()

	r.logger.Error("Falling back to default currencies", "error", cause)
	if r.notifier != nil {
		r.notifier.Notify(ctx, notify.LevelError, MsgInitFailedPrefix+cause.Error())
	}
}

func (r *Registry) loadCustom(ctx context.Context) ([]Currency, error) {
	var saved []Currency
	if _, err := storage.LoadJSON(ctx, r.store, storage.CustomCurrenciesKey, &saved); err != nil {
		return nil, fmt.Errorf("load custom currencies: %w", err)
	}
	custom := make([]Currency, 0, len(saved))
	for _, c := range saved {
		c.Code = money.NormalizeCode(c.Code.String())
		if !c.Code.IsValid() || !money.IsPositiveFinite(c.Rate) {
			r.logger.Warn("Skipping invalid persisted currency", "code", c.Code, "rate", c.Rate)
			continue
		}
		c.IsCustom = true
		custom = append(custom, c)
	}
	return custom, nil
}

// ApplySnapshot refreshes the rates of provider currencies that appear in
// snap and re-pins ARS unless it is user-defined. User-defined currencies
// and codes absent from the registry are left alone.
func (r *Registry) ApplySnapshot(snap *provider.RateSnapshot) {
	if snap == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	for code, c := range r.currencies {
		if c.IsCustom {
			continue
		}
		if rate, ok := snap.Rate(code.String()); ok && money.IsPositiveFinite(rate) {
			c.Rate = rate
			r.currencies[code] = c
			updated++
		}
	}
	if ars, ok := r.currencies[money.ARS]; ok && !ars.IsCustom {
		ars.Rate = pinnedARS(snap)
		r.currencies[money.ARS] = ars
	}
	r.logger.Debug("Applied rate snapshot", "updated", updated)
}

// AddCurrency registers a user-defined currency and persists the updated
// list before exposing it.
func (r *Registry) AddCurrency(ctx context.Context, name, code string, rate float64) (Currency, error) {
	c := Currency{
		Code:     money.NormalizeCode(code),
		Name:     strings.TrimSpace(name),
		Rate:     rate,
		IsCustom: true,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.currencies[c.Code]; ok {
		return Currency{}, fmt.Errorf("%w: %s", ErrDuplicateCurrency, c.Code)
	}
	if !c.Code.IsValid() {
		return Currency{}, fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, code)
	}
	if !money.IsPositiveFinite(rate) {
		return Currency{}, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	if c.Name == "" {
		c.Name = c.Code.String()
	}

	custom := append(slices.Clone(r.custom), c)
	if err := storage.SaveJSON(ctx, r.store, storage.CustomCurrenciesKey, custom); err != nil {
		return Currency{}, fmt.Errorf("save custom currencies: %w", err)
	}
	r.custom = custom
	r.currencies[c.Code] = c

	r.logger.Info("Custom currency added", "code", c.Code, "rate", c.Rate)
	return c, nil
}

// UpdateRate changes the rate of a user-defined currency.
func (r *Registry) UpdateRate(ctx context.Context, code string, rate float64) (Currency, error) {
	normalized := money.NormalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.currencies[normalized]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %s", ErrCurrencyNotFound, normalized)
	}
	if !c.IsCustom {
		return Currency{}, fmt.Errorf("%w: %s", ErrImmutableRate, normalized)
	}
	if !money.IsPositiveFinite(rate) {
		return Currency{}, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}

	c.Rate = rate
	custom := slices.Clone(r.custom)
	if i := slices.IndexFunc(custom, func(e Currency) bool { return e.Code == normalized }); i >= 0 {
		custom[i] = c
	} else {
		custom = append(custom, c)
	}
	if err := storage.SaveJSON(ctx, r.store, storage.CustomCurrenciesKey, custom); err != nil {
		return Currency{}, fmt.Errorf("save custom currencies: %w", err)
	}
	r.custom = custom
	r.currencies[normalized] = c

	r.logger.Info("Custom currency rate updated", "code", normalized, "rate", rate)
	return c, nil
}

// Lookup returns the currency registered under code.
func (r *Registry) Lookup(code string) (Currency, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[money.NormalizeCode(code)]
	return c, ok
}

// Rate returns the rate of code. It satisfies the conversion lookup port.
func (r *Registry) Rate(ctx context.Context, code string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c, ok := r.Lookup(code)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCurrencyNotFound, money.NormalizeCode(code))
	}
	return c.Rate, nil
}

// All returns every currency, USD first and the rest ordered by code.
func (r *Registry) All() []Currency {
	r.mu.RLock()
	all := make([]Currency, 0, len(r.currencies))
	for _, c := range r.currencies {
		all = append(all, c)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b Currency) int {
		switch {
		case a.Code == b.Code:
			return 0
		case a.Code == money.USD:
			return -1
		case b.Code == money.USD:
			return 1
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return all
}

// Custom returns the user-defined currencies in insertion order.
func (r *Registry) Custom() []Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.custom)
}

// SupportedCodes returns the codes of All.
func (r *Registry) SupportedCodes() []money.Code {
	all := r.All()
	codes := make([]money.Code, len(all))
	for i, c := range all {
		codes[i] = c.Code
	}
	return codes
}

// IsSupported reports whether code is registered.
func (r *Registry) IsSupported(code string) bool {
	_, ok := r.Lookup(code)
	return ok
}

// Len returns the number of registered currencies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.currencies)
}

// SupportedText lists every currency as "USD (Dólar Estadounidense), ...".
func (r *Registry) SupportedText() string {
	all := r.All()
	parts := make([]string, len(all))
	for i, c := range all {
		parts[i] = fmt.Sprintf("%s (%s)", c.Code, c.Name)
	}
	return strings.Join(parts, ", ")
}

// Name returns the display name of code from the catalog, or the code
// itself when it is unknown.
func (r *Registry) Name(code string) string {
	code = money.NormalizeCode(code).String()
	if m, ok := r.catalog[code]; ok && m.Name != "" {
		return m.Name
	}
	return code
}

// Symbol returns the display symbol of code, or the code itself.
func (r *Registry) Symbol(code string) string {
	code = money.NormalizeCode(code).String()
	if m, ok := r.catalog[code]; ok && m.Symbol != "" {
		return m.Symbol
	}
	return code
}

// FormatAmount renders amount with the symbol of code.
func (r *Registry) FormatAmount(amount float64, code string) string {
	return money.Format(amount, r.Symbol(code))
}
