package returns

import (
    "math"

    "Monexa/internal/domain/models"
)

const (
    // TradingDaysPerYear annualizes daily log returns.
    TradingDaysPerYear = 252
    // MinObservations is the number of valid return pairs below which Estimate returns 0.
    MinObservations = 30
    // ClampPct bounds the annualized percentage on both sides.
    ClampPct = 100.0
)

// LogReturns computes r_t = ln(C_t / C_{t-1}) over adjacent closes.
// Pairs where either close is non-positive or NaN are skipped.
func LogReturns(bars []models.Bar) []float64 {
    if len(bars) < 2 {
        return nil
    }
    out := make([]float64, 0, len(bars)-1)
    for i := 1; i < len(bars); i++ {
        prev := bars[i-1].Close
        cur := bars[i].Close
        if !validPrice(prev) || !validPrice(cur) {
            continue
        }
        out = append(out, math.Log(cur/prev))
    }
    return out
}

// Estimate returns the annualized expected return in percent, clamped to [-100, 100].
// Fewer than MinObservations valid log returns yield 0.
func Estimate(bars []models.Bar) float64 {
    rs := LogReturns(bars)
    if len(rs) < MinObservations {
        return 0
    }
    sum := 0.0
    for _, r := range rs {
        sum += r
    }
    mean := sum / float64(len(rs))
    annual := (math.Exp(mean*TradingDaysPerYear) - 1) * 100
    return clamp(annual, -ClampPct, ClampPct)
}

func validPrice(p float64) bool {
    return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

func clamp(v, lo, hi float64) float64 {
    if math.IsNaN(v) {
        return 0
    }
    if v < lo {
        return lo
    }
    if v > hi {
        return hi
    }
    return v
}
