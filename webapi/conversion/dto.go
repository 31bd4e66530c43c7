package conversion

import (
	"github.com/amirasaad/fxchat/pkg/history"
)

// ConvertRequest asks for amount of From expressed in To.
type ConvertRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	From   string  `json:"from" validate:"required,len=3,alpha"`
	To     string  `json:"to" validate:"required,len=3,alpha"`
}

// ConvertResponse is the stored history record plus the effective rate.
type ConvertResponse struct {
	history.Record
	ExchangeRate float64 `json:"exchangeRate"`
}
