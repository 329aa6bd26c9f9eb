package models

import "strings"

var topStocks = map[string][]string{
	MarketIndia: {
		"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
		"HINDUNILVR.NS", "ITC.NS", "SBIN.NS", "BHARTIARTL.NS", "BAJFINANCE.NS",
	},
	MarketUS: {
		"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
		"META", "BRK-B", "JPM", "V", "TSLA",
	},
}

var riskTierStocks = map[string]map[string][]string{
	MarketIndia: {
		RiskLow:    {"HDFCBANK.NS", "TCS.NS", "HINDUNILVR.NS", "INFY.NS", "RELIANCE.NS"},
		RiskMedium: {"ICICIBANK.NS", "AXISBANK.NS", "SBIN.NS", "LT.NS", "MARUTI.NS"},
		RiskHigh:   {"TATAMOTORS.NS", "ZOMATO.NS", "PAYTM.NS", "YESBANK.NS", "IDEA.NS"},
	},
	MarketUS: {
		RiskLow:    {"MSFT", "AAPL", "JNJ", "PG", "KO"},
		RiskMedium: {"GOOGL", "AMZN", "META", "NVDA", "V"},
		RiskHigh:   {"TSLA", "PLTR", "RIVN", "COIN", "GME"},
	},
}

// NormalizeMarket upper-cases a market name. Unknown markets return "".
func NormalizeMarket(market string) string {
	m := strings.ToUpper(strings.TrimSpace(market))
	if _, ok := topStocks[m]; ok {
		return m
	}
	return ""
}

// TopStocks returns a copy of the top stock list for a market.
func TopStocks(market string) []string {
	return append([]string(nil), topStocks[NormalizeMarket(market)]...)
}

// RiskTierStocks returns a copy of the stock list for a market and risk level.
func RiskTierStocks(market, risk string) []string {
	return append([]string(nil), riskTierStocks[NormalizeMarket(market)][risk]...)
}
