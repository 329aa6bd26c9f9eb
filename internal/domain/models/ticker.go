package models

import (
	"math"
	"time"
)

// Bar is one daily OHLCV record. Missing values are NaN.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Missing reports whether any field of the bar has no value.
func (b Bar) Missing() bool {
	return math.IsNaN(b.Open) || math.IsNaN(b.High) || math.IsNaN(b.Low) ||
		math.IsNaN(b.Close) || math.IsNaN(b.Volume)
}

// TickerMeta is the descriptive metadata a provider returns next to a history.
type TickerMeta struct {
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Currency string `json:"currency"`
}

// RawHistory is an ascending sequence of daily bars as fetched from a provider.
type RawHistory struct {
	Symbol string
	Bars   []Bar
	Meta   TickerMeta
	// Columns lists the fields the provider delivered. Nil means all of them.
	Columns []string
}

// Required OHLCV columns.
const (
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// RequiredColumns are the fields every history must carry.
var RequiredColumns = []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}

// TickerMetrics is the derived snapshot for one symbol.
type TickerMetrics struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	Currency          string    `json:"currency"`
	CurrentPrice      float64   `json:"current_price"`
	PriceChangePct    float64   `json:"price_change_pct"`
	High52W           float64   `json:"high_52w"`
	Low52W            float64   `json:"low_52w"`
	AvgVolume         float64   `json:"avg_volume"`
	ExpectedReturnPct float64   `json:"expected_return_pct"`
	Sector            string    `json:"sector"`
	Industry          string    `json:"industry"`
	History           []Bar     `json:"history,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Snapshot returns a copy of m without its history.
func (m TickerMetrics) Snapshot() TickerMetrics {
	m.History = nil
	return m
}

// AggregateResult maps symbol to metrics for every successfully derived ticker.
type AggregateResult map[string]TickerMetrics

// Symbols returns the keys of the aggregate in no particular order.
func (r AggregateResult) Symbols() []string {
	out := make([]string, 0, len(r))
	for s := range r {
		out = append(out, s)
	}
	return out
}

// TickerInfo is the descriptive company profile for one symbol.
type TickerInfo struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	Website       string  `json:"website"`
	Description   string  `json:"description"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	Beta          float64 `json:"beta"`
	DividendYield float64 `json:"dividend_yield"`
	Currency      string  `json:"currency"`
}

// SeriesPoint is one (date, value) pair of a normalized series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
