// Package chat is the conversational front end: a per-session state
// machine that walks the user through name onboarding, conversions,
// purchases and adding currencies, answering with Spanish messages.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/amirasaad/fxchat/pkg/conversion"
	"github.com/amirasaad/fxchat/pkg/currency"
	"github.com/amirasaad/fxchat/pkg/history"
	"github.com/amirasaad/fxchat/pkg/money"
	"github.com/amirasaad/fxchat/pkg/storage"
)

var (
	validName = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	validCode = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// Currencies is the part of the currency registry the bot uses.
type Currencies interface {
	Lookup(code string) (currency.Currency, bool)
	IsSupported(code string) bool
	SupportedText() string
	FormatAmount(amount float64, code string) string
	AddCurrency(ctx context.Context, name, code string, rate float64) (currency.Currency, error)
}

// Converter performs conversions.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (*conversion.Result, error)
}

// History records completed conversions and purchases.
type History interface {
	Append(ctx context.Context, rec history.Record) (history.Record, error)
	Clear(ctx context.Context) error
	List() []history.Record
}

// Deps are the collaborators of a Bot.
type Deps struct {
	Currencies Currencies
	Converter  Converter
	History    History
	Store      storage.Store
}

// Bot is one chat session. It is safe for concurrent use; inputs are
// processed one at a time.
type Bot struct {
	deps   Deps
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	userName string
}

// NewBot restores the persisted user name and starts the session in the
// matching state.
func NewBot(ctx context.Context, deps Deps, logger *slog.Logger) (*Bot, error) {
	name, err := storage.LoadString(ctx, deps.Store, storage.UserNameKey)
	if err != nil {
		return nil, fmt.Errorf("load user name: %w", err)
	}
	b := &Bot{
		deps:     deps,
		logger:   logger.With("component", "chat"),
		userName: strings.TrimSpace(name),
	}
	if b.userName == "" {
		b.state = AwaitingName{}
	} else {
		b.state = AwaitingAmount{}
	}
	return b, nil
}

// Greeting returns the opening messages of the session.
func (b *Bot) Greeting() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.userName == "" {
		return []Message{botMsg(txtAskName)}
	}
	return []Message{b.welcome()}
}

// State returns the current state.
func (b *Bot) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// UserName returns the name given during onboarding.
func (b *Bot) UserName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userName
}

// Handle processes one line of user input and returns the replies.
func (b *Bot) Handle(ctx context.Context, input string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	input = strings.TrimSpace(input)
	prev := b.state
	next, msgs := b.step(ctx, b.state, input)
	b.state = next
	if prev.Name() != next.Name() {
		b.logger.Debug("State transition", "from", prev.Name(), "to", next.Name())
	}
	return msgs
}

func (b *Bot) step(ctx context.Context, state State, input string) (State, []Message) {
	if _, ok := state.(AwaitingName); ok {
		return b.onName(ctx, input)
	}

	if next, msgs, ok := b.command(ctx, state, strings.ToLower(input)); ok {
		return next, msgs
	}

	switch s := state.(type) {
	case AwaitingAmount:
		return b.onAmount(ctx, s, input)
	case AwaitingFromCode:
		return b.onFromCode(s, input)
	case AwaitingToCode:
		return b.onToCode(ctx, s, input)
	case AwaitingCurrencyName:
		return b.onCurrencyName(input)
	case AwaitingCurrencyCode:
		return b.onCurrencyCode(s, input)
	case AwaitingCurrencyRate:
		return b.onCurrencyRate(ctx, s, input)
	}
	b.logger.Error("Unknown chat state", "state", fmt.Sprintf("%T", state))
	return AwaitingAmount{}, []Message{botMsg(txtInstruction)}
}

// command handles the text commands available once the user is named.
// It reports ok=false when input is not a command.
func (b *Bot) command(ctx context.Context, state State, cmd string) (State, []Message, bool) {
	switch cmd {
	case cmdAddCurrency:
		return AwaitingCurrencyName{}, []Message{botMsg(txtAskCurrencyName)}, true
	case cmdCancel:
		return AwaitingAmount{}, []Message{botMsg(txtCancelled), botMsg(txtInstruction)}, true
	case cmdClearChat:
		return AwaitingAmount{}, []Message{b.welcome()}, true
	case cmdCurrencies:
		return state, []Message{botMsg(fmt.Sprintf(txtCurrenciesFmt, b.deps.Currencies.SupportedText()))}, true
	case cmdHistory:
		return state, b.historyMessages(), true
	case cmdClearHistory:
		if err := b.deps.History.Clear(ctx); err != nil {
			b.logger.Error("Failed to clear history", "error", err)
			return state, []Message{errorMsg(fmt.Sprintf(txtErrorFmt, err))}, true
		}
		return state, []Message{botMsg(txtHistoryCleared)}, true
	}
	return state, nil, false
}

func (b *Bot) welcome() Message {
	return botMsg(fmt.Sprintf("%s %s! %s", txtWelcome, b.userName, txtInstruction))
}

func (b *Bot) onName(ctx context.Context, input string) (State, []Message) {
	if !validName.MatchString(input) {
		return AwaitingName{}, []Message{errorMsg(txtInvalidName)}
	}
	if err := b.deps.Store.Save(ctx, storage.UserNameKey, []byte(input)); err != nil {
		b.logger.Error("Failed to save user name", "error", err)
		return AwaitingName{}, []Message{errorMsg(fmt.Sprintf(txtErrorFmt, err))}
	}
	b.userName = input
	return AwaitingAmount{}, []Message{b.welcome()}
}

func (b *Bot) onAmount(ctx context.Context, s AwaitingAmount, input string) (State, []Message) {
	if s.Offer != nil {
		answer := strings.ToLower(input)
		switch {
		case purchaseYes[answer]:
			return AwaitingAmount{}, b.purchase(ctx, *s.Offer)
		case purchaseNo[answer]:
			return AwaitingAmount{}, []Message{botMsg(txtPurchaseDeclined), botMsg(txtInstruction)}
		}
	}

	amount, err := money.ParseAmount(input)
	if err != nil {
		return AwaitingAmount{Offer: s.Offer}, []Message{errorMsg(txtInvalidAmount)}
	}
	return AwaitingFromCode{Amount: amount}, []Message{botMsg(txtAskFrom)}
}

func (b *Bot) onFromCode(s AwaitingFromCode, input string) (State, []Message) {
	code := money.NormalizeCode(input)
	if !b.deps.Currencies.IsSupported(code.String()) {
		return s, []Message{b.unsupported(code)}
	}
	return AwaitingToCode{Amount: s.Amount, From: code}, []Message{botMsg(txtAskTo)}
}

func (b *Bot) onToCode(ctx context.Context, s AwaitingToCode, input string) (State, []Message) {
	code := money.NormalizeCode(input)
	if !b.deps.Currencies.IsSupported(code.String()) {
		return s, []Message{b.unsupported(code)}
	}

	res, err := b.deps.Converter.Convert(ctx, s.Amount, s.From.String(), code.String())
	if err != nil {
		b.logger.Warn("Conversion failed", "from", s.From, "to", code, "error", err)
		return AwaitingAmount{}, []Message{errorMsg(convertErrorText(err)), botMsg(txtInstruction)}
	}

	rec := ConversionRecord(b.deps.Currencies, res)
	stored, err := b.deps.History.Append(ctx, rec)
	if err != nil {
		b.logger.Error("Failed to record conversion", "error", err)
		stored = rec
	}

	msgs := []Message{
		{Kind: KindConversion, Text: conversionText(stored), Record: &stored},
		botMsg(fmt.Sprintf(txtPurchaseOfferFmt, money.FormatNumber(stored.Result.InexactFloat64()), stored.To)),
		botMsg(txtInstruction),
	}
	return AwaitingAmount{Offer: &stored}, msgs
}

// ConversionRecord builds the history entry for a completed conversion,
// with names and formatted amounts taken from currencies.
func ConversionRecord(currencies Currencies, res *conversion.Result) history.Record {
	rec := history.Record{
		Kind:            history.KindConversion,
		Amount:          res.Amount,
		Result:          res.Result,
		From:            res.From,
		To:              res.To,
		FromRate:        res.FromRate,
		ToRate:          res.ToRate,
		FormattedAmount: currencies.FormatAmount(res.Amount, res.From.String()),
		FormattedResult: currencies.FormatAmount(res.ResultFloat(), res.To.String()),
		Timestamp:       res.Timestamp,
	}
	if c, ok := currencies.Lookup(res.From.String()); ok {
		rec.FromName = c.Name
	}
	if c, ok := currencies.Lookup(res.To.String()); ok {
		rec.ToName = c.Name
	}
	return rec
}

func (b *Bot) purchase(ctx context.Context, offer history.Record) []Message {
	rec := history.Record{
		Kind:   history.KindPurchase,
		Amount: offer.Amount,
		Result: offer.Result,
		From:   offer.From,
		To:     offer.To,
	}
	stored, err := b.deps.History.Append(ctx, rec)
	if err != nil {
		b.logger.Error("Failed to record purchase", "error", err)
		return []Message{errorMsg(fmt.Sprintf(txtErrorFmt, err)), botMsg(txtInstruction)}
	}
	text := fmt.Sprintf(txtPurchaseDoneFmt, money.FormatNumber(offer.Result.InexactFloat64()), offer.To)
	return []Message{{Kind: KindPurchase, Text: text, Record: &stored}, botMsg(txtInstruction)}
}

func (b *Bot) onCurrencyName(input string) (State, []Message) {
	if input == "" {
		return AwaitingCurrencyName{}, []Message{botMsg(txtAskCurrencyName)}
	}
	return AwaitingCurrencyCode{Name: input}, []Message{botMsg(txtAskCurrencyCode)}
}

func (b *Bot) onCurrencyCode(s AwaitingCurrencyCode, input string) (State, []Message) {
	if !validCode.MatchString(input) {
		return s, []Message{errorMsg(txtInvalidCode)}
	}
	return AwaitingCurrencyRate{Name: s.Name, Code: money.NormalizeCode(input)}, []Message{botMsg(txtAskCurrencyRate)}
}

func (b *Bot) onCurrencyRate(ctx context.Context, s AwaitingCurrencyRate, input string) (State, []Message) {
	rate, err := money.ParseRate(input)
	if err != nil {
		return s, []Message{errorMsg(txtInvalidRate)}
	}

	var reply Message
	switch _, err := b.deps.Currencies.AddCurrency(ctx, s.Name, s.Code.String(), rate); {
	case err == nil:
		reply = botMsg(fmt.Sprintf(txtCurrencyAddedFmt, s.Code))
	case errors.Is(err, currency.ErrDuplicateCurrency):
		reply = errorMsg(txtCurrencyExists)
	default:
		b.logger.Error("Failed to add currency", "code", s.Code, "error", err)
		reply = errorMsg(fmt.Sprintf(txtErrorFmt, err))
	}
	return AwaitingAmount{}, []Message{reply, botMsg(txtInstruction)}
}

func (b *Bot) unsupported(code money.Code) Message {
	return errorMsg(fmt.Sprintf(txtUnsupportedFmt, code, b.deps.Currencies.SupportedText()))
}

func (b *Bot) historyMessages() []Message {
	records := b.deps.History.List()
	if len(records) == 0 {
		return []Message{botMsg(txtHistoryEmpty)}
	}
	lines := []string{txtHistoryTitle}
	for _, r := range records {
		lines = append(lines, historyLine(r))
	}
	return []Message{{Kind: KindHistory, Text: strings.Join(lines, "\n")}}
}

func convertErrorText(err error) string {
	var timeout *conversion.RateTimeoutError
	var unknown *conversion.UnknownCurrencyError
	switch {
	case errors.As(err, &timeout):
		return fmt.Sprintf(txtErrorFmt, fmt.Sprintf(txtTimeoutFmt, timeout.Code))
	case errors.As(err, &unknown):
		return fmt.Sprintf(txtErrorFmt, fmt.Sprintf(txtNotFoundFmt, unknown.Code))
	}
	return fmt.Sprintf(txtErrorFmt, err)
}

func conversionText(r history.Record) string {
	return fmt.Sprintf("%s %s (%s) ➔ %s %s (%s)\n"+txtRateLineFmt,
		r.FormattedAmount, r.From, r.FromName,
		r.FormattedResult, r.To, r.ToName,
		r.From, r.ExchangeRate(), r.To)
}

func historyLine(r history.Record) string {
	ts := r.Timestamp.Local().Format("02/01/2006 15:04:05")
	if r.Kind == history.KindPurchase {
		return fmt.Sprintf("• Compra: %s %s (%s)", money.FormatNumber(r.Result.InexactFloat64()), r.To, ts)
	}
	return fmt.Sprintf("• %s %s ➜ %s %s | 1 %s = %.4f %s (%s)",
		r.FormattedAmount, r.From, r.FormattedResult, r.To,
		r.From, r.ExchangeRate(), r.To, ts)
}
