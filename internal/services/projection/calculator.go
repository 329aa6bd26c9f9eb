package projection

import (
	"math"

	"Monexa/internal/domain/models"
)

// FutureValue returns the ordinary-annuity total of `monthly` contributed for `years`
// at `annualRate`: m * ((1+r)^(12y) - 1) / r with r = annualRate/12.
// A zero rate degenerates to the sum of contributions.
func FutureValue(monthly, annualRate float64, years int) float64 {
	n := float64(years * 12)
	r := annualRate / 12
	if r == 0 {
		return monthly * n
	}
	return monthly * (math.Pow(1+r, n) - 1) / r
}

// Project returns the month-by-month chart curve for months 0..12*years inclusive.
// Point i is monthly * i * (1+r)^i, kept for compatibility with existing charts.
func Project(monthly, annualRate float64, years int) models.ProjectionSeries {
	if years < 0 {
		years = 0
	}
	months := years * 12
	r := annualRate / 12
	out := make(models.ProjectionSeries, 0, months+1)
	for i := 0; i <= months; i++ {
		out = append(out, models.ProjectionPoint{
			Month: i,
			Value: monthly * float64(i) * math.Pow(1+r, float64(i)),
		})
	}
	return out
}

// ProjectAll computes the series and closed-form total for every fixed scenario.
func ProjectAll(monthly float64, years int) []models.ScenarioProjection {
	out := make([]models.ScenarioProjection, 0, len(models.Scenarios))
	for _, s := range models.Scenarios {
		out = append(out, models.ScenarioProjection{
			Scenario:    s,
			Series:      Project(monthly, s.AnnualRate, years),
			FutureValue: FutureValue(monthly, s.AnnualRate, years),
			Invested:    monthly * float64(years*12),
		})
	}
	return out
}
