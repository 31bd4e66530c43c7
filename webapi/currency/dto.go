package currency

import "github.com/amirasaad/fxchat/pkg/currency"

// AddRequest registers a user-defined currency.
type AddRequest struct {
	Name string  `json:"name" validate:"required,max=64"`
	Code string  `json:"code" validate:"required,len=3,alpha"`
	Rate float64 `json:"rate" validate:"required,gt=0"`
}

// UpdateRateRequest sets a new rate on a user-defined currency.
type UpdateRateRequest struct {
	Rate float64 `json:"rate" validate:"required,gt=0"`
}

// Response is the API view of a currency.
type Response struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Rate     float64 `json:"rate"`
	IsCustom bool    `json:"isCustom"`
}

// Symbols resolves display symbols.
type Symbols interface {
	Symbol(code string) string
}

// ToResponse converts a registry entry to its API view.
func ToResponse(c currency.Currency, symbols Symbols) Response {
	return Response{
		Code:     c.Code.String(),
		Name:     c.Name,
		Symbol:   symbols.Symbol(c.Code.String()),
		Rate:     c.Rate,
		IsCustom: c.IsCustom,
	}
}
