package chat

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/fxchat/pkg/conversion"
	"github.com/amirasaad/fxchat/pkg/currency"
	"github.com/amirasaad/fxchat/pkg/history"
	"github.com/amirasaad/fxchat/pkg/money"
	"github.com/amirasaad/fxchat/pkg/provider"
	"github.com/amirasaad/fxchat/pkg/storage"
	"github.com/stretchr/testify/suite"
)

type fixedRates struct {
	snap *provider.RateSnapshot
}

func (f fixedRates) GetLatestRates(context.Context, bool, bool) (*provider.RateSnapshot, error) {
	return f.snap, nil
}

type BotTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *storage.MemoryStore
	registry *currency.Registry
	history  *history.Store
	bot      *Bot
}

func (s *BotTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rates := fixedRates{snap: provider.NewRateSnapshot(time.Now(), map[string]float64{"USD": 1, "EUR": 0.92})}
	registry, err := currency.NewRegistry(s.store, rates, nil, logger)
	s.Require().NoError(err)
	s.Require().NoError(registry.Initialize(s.ctx))
	s.registry = registry

	hist, err := history.New(s.ctx, s.store, 50, logger)
	s.Require().NoError(err)
	s.history = hist

	s.bot = s.newBot()
}

func (s *BotTestSuite) newBot() *Bot {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bot, err := NewBot(s.ctx, Deps{
		Currencies: s.registry,
		Converter:  conversion.NewEngine(s.registry, time.Second, logger),
		History:    s.history,
		Store:      s.store,
	}, logger)
	s.Require().NoError(err)
	return bot
}

func (s *BotTestSuite) say(input string) []Message {
	return s.bot.Handle(s.ctx, input)
}

func (s *BotTestSuite) onboard() {
	s.say("Ana")
	s.Require().IsType(AwaitingAmount{}, s.bot.State())
}

func (s *BotTestSuite) TestOnboarding() {
	greeting := s.bot.Greeting()
	s.Require().Len(greeting, 1)
	s.Equal(txtAskName, greeting[0].Text)

	msgs := s.say("R2D2")
	s.Equal(KindError, msgs[0].Kind)
	s.Equal(txtInvalidName, msgs[0].Text)
	s.IsType(AwaitingName{}, s.bot.State())

	msgs = s.say("María José")
	s.Equal("Bienvenido María José! "+txtInstruction, msgs[0].Text)
	s.Equal("María José", s.bot.UserName())

	name, err := storage.LoadString(s.ctx, s.store, storage.UserNameKey)
	s.Require().NoError(err)
	s.Equal("María José", name)

	// a new session remembers the name
	again := s.newBot()
	s.IsType(AwaitingAmount{}, again.State())
	s.Contains(again.Greeting()[0].Text, "María José")
}

func (s *BotTestSuite) TestCommandsIgnoredBeforeName() {
	s.say("historial")
	s.IsType(AwaitingAmount{}, s.bot.State(), "letters-only input is taken as a name")
	s.Equal("historial", s.bot.UserName())
}

func (s *BotTestSuite) TestConversionFlow() {
	s.onboard()

	msgs := s.say("abc")
	s.Equal(txtInvalidAmount, msgs[0].Text)
	s.IsType(AwaitingAmount{}, s.bot.State())

	msgs = s.say("$100")
	s.Equal(txtAskFrom, msgs[0].Text)
	s.Equal(AwaitingFromCode{Amount: 100}, s.bot.State())

	msgs = s.say("xyz")
	s.Equal(KindError, msgs[0].Kind)
	s.Contains(msgs[0].Text, "La moneda XYZ no está soportada")
	s.Contains(msgs[0].Text, "USD (Dólar Estadounidense)")
	s.Equal(AwaitingFromCode{Amount: 100}, s.bot.State())

	s.say("usd")
	s.Equal(AwaitingToCode{Amount: 100, From: "USD"}, s.bot.State())

	msgs = s.say("eur")
	s.Require().Len(msgs, 3)
	s.Equal(KindConversion, msgs[0].Kind)
	s.Require().NotNil(msgs[0].Record)
	s.Equal("92", msgs[0].Record.Result.String())
	s.Contains(msgs[0].Text, "Tasa de cambio: 1 USD = 0.9200 EUR")
	s.Contains(msgs[0].Text, "Euro")
	s.Contains(msgs[1].Text, "¿Deseas realizar una compra")
	s.Equal(txtInstruction, msgs[2].Text)

	state, ok := s.bot.State().(AwaitingAmount)
	s.Require().True(ok)
	s.NotNil(state.Offer)

	list := s.history.List()
	s.Require().Len(list, 1)
	s.Equal(history.KindConversion, list[0].Kind)
	s.Equal("Dólar Estadounidense", list[0].FromName)
	s.NotEmpty(list[0].FormattedResult)
}

func (s *BotTestSuite) TestPurchaseConfirmation() {
	s.onboard()
	s.say("100")
	s.say("USD")
	s.say("EUR")

	msgs := s.say("Sí")
	s.Equal(KindPurchase, msgs[0].Kind)
	s.Contains(msgs[0].Text, "Compra realizada con éxito")
	s.Contains(msgs[0].Text, "EUR")

	list := s.history.List()
	s.Require().Len(list, 2)
	s.Equal(history.KindPurchase, list[0].Kind)
	s.Equal(AwaitingAmount{}, s.bot.State())

	// the offer is consumed
	msgs = s.say("si")
	s.Equal(txtInvalidAmount, msgs[0].Text)
}

func (s *BotTestSuite) TestPurchaseDeclinedOrIgnored() {
	s.onboard()
	s.say("100")
	s.say("USD")
	s.say("EUR")

	msgs := s.say("no")
	s.Equal(txtPurchaseDeclined, msgs[0].Text)
	s.Len(s.history.List(), 1)

	s.say("50")
	s.say("USD")
	s.say("ARS")
	// a new amount drops the pending offer
	msgs = s.say("10")
	s.Equal(txtAskFrom, msgs[0].Text)
	s.Len(s.history.List(), 2)
}

func (s *BotTestSuite) TestAddCurrencyFlow() {
	s.onboard()

	msgs := s.say("Agregar Moneda")
	s.Equal(txtAskCurrencyName, msgs[0].Text)
	s.IsType(AwaitingCurrencyName{}, s.bot.State())

	msgs = s.say("Test Coin")
	s.Equal(txtAskCurrencyCode, msgs[0].Text)

	msgs = s.say("XT")
	s.Equal(txtInvalidCode, msgs[0].Text)
	s.Equal(AwaitingCurrencyCode{Name: "Test Coin"}, s.bot.State())

	s.say("xtc")
	s.Equal(AwaitingCurrencyRate{Name: "Test Coin", Code: "XTC"}, s.bot.State())

	msgs = s.say("cero")
	s.Equal(txtInvalidRate, msgs[0].Text)
	msgs = s.say("0")
	s.Equal(txtInvalidRate, msgs[0].Text)

	msgs = s.say("10")
	s.Equal("Moneda XTC agregada exitosamente", msgs[0].Text)
	s.Equal(AwaitingAmount{}, s.bot.State())
	s.True(s.registry.IsSupported("XTC"))

	// 100 USD -> 1000.00 XTC
	s.say("100")
	s.say("USD")
	msgs = s.say("XTC")
	s.Require().NotNil(msgs[0].Record)
	s.Equal("1000", msgs[0].Record.Result.String())
}

func (s *BotTestSuite) TestAddDuplicateCurrency() {
	s.onboard()
	s.say("agregar moneda")
	s.say("Euro falso")
	s.say("EUR")
	msgs := s.say("2")
	s.Equal(KindError, msgs[0].Kind)
	s.Equal(txtCurrencyExists, msgs[0].Text)

	eur, _ := s.registry.Lookup("EUR")
	s.False(eur.IsCustom)
}

func (s *BotTestSuite) TestHistoryCommands() {
	s.onboard()

	msgs := s.say("historial")
	s.Equal(txtHistoryEmpty, msgs[0].Text)

	s.say("100")
	s.say("USD")
	s.say("EUR")

	msgs = s.say("HISTORIAL")
	s.Equal(KindHistory, msgs[0].Kind)
	s.Contains(msgs[0].Text, txtHistoryTitle)
	s.Contains(msgs[0].Text, "1 USD = 0.9200 EUR")

	msgs = s.say("borrar historial")
	s.Equal(txtHistoryCleared, msgs[0].Text)
	s.Empty(s.history.List())
}

func (s *BotTestSuite) TestCurrenciesAndCancel() {
	s.onboard()

	msgs := s.say("monedas")
	s.Contains(msgs[0].Text, "USD (Dólar Estadounidense), ARS (Peso Argentino), EUR (Euro)")

	s.say("100")
	s.IsType(AwaitingFromCode{}, s.bot.State())
	s.say("monedas")
	s.IsType(AwaitingFromCode{}, s.bot.State(), "listing currencies keeps the flow")

	s.say("cancelar")
	s.Equal(AwaitingAmount{}, s.bot.State())

	s.say("agregar moneda")
	msgs = s.say("limpiar chat")
	s.Equal(AwaitingAmount{}, s.bot.State())
	s.Contains(msgs[0].Text, "Bienvenido Ana!")
}

func (s *BotTestSuite) TestConvertErrorText() {
	s.Equal("Error: Timeout al obtener la tasa para EUR",
		convertErrorText(&conversion.RateTimeoutError{Code: money.Code("EUR")}))
	s.Equal("Error: Moneda QQQ no encontrada",
		convertErrorText(&conversion.UnknownCurrencyError{Code: "QQQ", Err: currency.ErrCurrencyNotFound}))
}

func TestBotTestSuite(t *testing.T) {
	suite.Run(t, new(BotTestSuite))
}
