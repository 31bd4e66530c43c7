package chat

import (
	"github.com/amirasaad/fxchat/pkg/history"
	"github.com/amirasaad/fxchat/pkg/money"
)

// State is the position of a session in one of its multi-turn flows.
type State interface {
	// Name identifies the state in logs and API responses.
	Name() string
}

// AwaitingName waits for the user's name before anything else.
type AwaitingName struct{}

// AwaitingAmount is the resting state of the conversion flow. Offer holds
// the purchase proposed after the last conversion, if any.
type AwaitingAmount struct {
	Offer *history.Record
}

// AwaitingFromCode has an amount and waits for the source currency.
type AwaitingFromCode struct {
	Amount float64
}

// AwaitingToCode has amount and source and waits for the target currency.
type AwaitingToCode struct {
	Amount float64
	From   money.Code
}

// AwaitingCurrencyName starts the add-currency flow.
type AwaitingCurrencyName struct{}

// AwaitingCurrencyCode has the new currency's name.
type AwaitingCurrencyCode struct {
	Name string
}

// AwaitingCurrencyRate has the new currency's name and code.
type AwaitingCurrencyRate struct {
	Name string
	Code money.Code
}

func (AwaitingName) Name() string         { return "awaiting_name" }
func (AwaitingAmount) Name() string       { return "awaiting_amount" }
func (AwaitingFromCode) Name() string     { return "awaiting_from_code" }
func (AwaitingToCode) Name() string       { return "awaiting_to_code" }
func (AwaitingCurrencyName) Name() string { return "awaiting_currency_name" }
func (AwaitingCurrencyCode) Name() string { return "awaiting_currency_code" }
func (AwaitingCurrencyRate) Name() string { return "awaiting_currency_rate" }

// MessageKind tells the presentation layer how to render a message.
type MessageKind string

const (
	KindBot        MessageKind = "bot"
	KindError      MessageKind = "error"
	KindConversion MessageKind = "conversion"
	KindPurchase   MessageKind = "purchase"
	KindHistory    MessageKind = "history"
)

// Message is one bot reply.
type Message struct {
	Kind   MessageKind     `json:"kind"`
	Text   string          `json:"text"`
	Record *history.Record `json:"record,omitempty"`
}

func botMsg(text string) Message   { return Message{Kind: KindBot, Text: text} }
func errorMsg(text string) Message { return Message{Kind: KindError, Text: text} }
