package returns

import (
    "math"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "Monexa/internal/domain/models"
)

func closes(vals ...float64) []models.Bar {
    start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
    out := make([]models.Bar, len(vals))
    for i, v := range vals {
        out[i] = models.Bar{Date: start.AddDate(0, 0, i), Close: v}
    }
    return out
}

func geometric(n int, start, step float64) []float64 {
    vals := make([]float64, n)
    v := start
    for i := range vals {
        vals[i] = v
        v *= step
    }
    return vals
}

func TestLogReturns_SkipsInvalidPairs(t *testing.T) {
    rs := LogReturns(closes(100, 110, 0, 121, math.NaN(), 133.1, -5))
    require.Len(t, rs, 1)
    assert.InDelta(t, math.Log(1.1), rs[0], 1e-12)
}

func TestEstimate_InsufficientObservations(t *testing.T) {
    assert.Equal(t, 0.0, Estimate(nil))
    assert.Equal(t, 0.0, Estimate(closes(geometric(30, 100, 1.01)...)), "30 closes give only 29 pairs")

    // 40 closes but zeros break enough pairs to drop below the threshold.
    vals := geometric(40, 100, 1.001)
    for i := 0; i < len(vals); i += 3 {
        vals[i] = 0
    }
    assert.Equal(t, 0.0, Estimate(closes(vals...)))
}

func TestEstimate_Annualizes(t *testing.T) {
    step := 1.0005
    got := Estimate(closes(geometric(31, 100, step)...))
    want := (math.Exp(math.Log(step)*TradingDaysPerYear) - 1) * 100
    assert.InDelta(t, want, got, 1e-9)
}

func TestEstimate_Clamped(t *testing.T) {
    tests := []struct {
        name string
        step float64
        want float64
    }{
        {"explosive growth", 1.05, 100},
        {"collapse", 0.9, -100},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got := Estimate(closes(geometric(60, 100, tt.step)...))
            assert.InDelta(t, tt.want, got, 1e-6)
        })
    }
}

func TestEstimate_AlwaysWithinBounds(t *testing.T) {
    steps := []float64{0.5, 0.97, 0.999, 1, 1.0001, 1.02, 3}
    for _, s := range steps {
        got := Estimate(closes(geometric(45, 50, s)...))
        assert.GreaterOrEqual(t, got, -100.0)
        assert.LessOrEqual(t, got, 100.0)
    }
}

func TestEstimate_Deterministic(t *testing.T) {
    bars := closes(geometric(50, 10, 1.003)...)
    assert.Equal(t, Estimate(bars), Estimate(bars))
}
