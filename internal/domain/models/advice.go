package models

// Risk tolerance levels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Markets.
const (
	MarketIndia = "INDIA"
	MarketUS    = "US"
)

// Advice sources.
const (
	AdviceSourceGemini   = "gemini"
	AdviceSourceFallback = "fallback"
)

// Profile is the investor profile an advice plan is built for.
type Profile struct {
	InvestmentType string   `json:"investment_type" default:"Stocks" validate:"required"`
	RiskTolerance  string   `json:"risk_tolerance" default:"Medium" validate:"oneof=Low Medium High"`
	MonthlyAmount  float64  `json:"monthly_amount" validate:"gt=0"`
	Years          int      `json:"years" default:"5" validate:"gte=1,lte=50"`
	Market         string   `json:"market" default:"INDIA" validate:"oneof=INDIA US"`
	SearchSymbol   string   `json:"search_symbol"`
	CustomTickers  []string `json:"custom_tickers" validate:"max=20"`
}

// Advice is the narrative recommendation and where it came from.
type Advice struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Plan is the full advice response.
type Plan struct {
	Profile          Profile              `json:"profile"`
	Advice           Advice               `json:"advice"`
	Tickers          []string             `json:"tickers"`
	Metrics          AggregateResult      `json:"metrics"`
	FinancialContext string               `json:"financial_context"`
	NewsContext      string               `json:"news_context"`
	Projections      []ScenarioProjection `json:"projections"`
}
