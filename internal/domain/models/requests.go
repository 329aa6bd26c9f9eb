package models

// Requests for the market HTTP endpoints.

type TickersRequest struct {
	Symbols  string `query:"symbols" json:"symbols" validate:"required"`
	Period   string `query:"period" json:"period" default:"1y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Currency string `query:"currency" json:"currency" validate:"omitempty,len=3,alpha"`
}

type TickerInfoRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
}

type CompareRequest struct {
	Symbols string  `query:"symbols" json:"symbols" validate:"required"`
	Period  string  `query:"period" json:"period" default:"5y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Base    float64 `query:"base" json:"base" default:"100" validate:"gt=0"`
}

type TopStocksRequest struct {
	Market string `param:"market" json:"market" validate:"required,oneof=india us INDIA US"`
	Period string `query:"period" json:"period" default:"1y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
}

type ProjectionRequest struct {
	Monthly float64 `query:"monthly" json:"monthly" validate:"gt=0"`
	Years   int     `query:"years" json:"years" default:"5" validate:"gte=1,lte=50"`
}
