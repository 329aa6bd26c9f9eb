package repository

import "strings"

// Supported history periods.
const (
	Period1d  = "1d"
	Period5d  = "5d"
	Period1mo = "1mo"
	Period3mo = "3mo"
	Period6mo = "6mo"
	Period1y  = "1y"
	Period2y  = "2y"
	Period5y  = "5y"
	Period10y = "10y"
	PeriodYTD = "ytd"
	PeriodMax = "max"
)

// IsValidPeriod returns true if p is a supported period token.
func IsValidPeriod(p string) bool {
	switch p {
	case Period1d, Period5d, Period1mo, Period3mo, Period6mo,
		Period1y, Period2y, Period5y, Period10y, PeriodYTD, PeriodMax:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the default period.
func DefaultPeriod() string { return Period1y }

// NormalizePeriod converts a raw string to a valid period (or default).
func NormalizePeriod(s string) string {
	p := strings.ToLower(strings.TrimSpace(s))
	if IsValidPeriod(p) {
		return p
	}
	return DefaultPeriod()
}
