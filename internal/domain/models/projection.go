package models

// Scenario is a named fixed annual return used for projections.
type Scenario struct {
	Label      string  `json:"label"`
	AnnualRate float64 `json:"annual_rate"`
}

// Scenarios are the three fixed projection scenarios.
var Scenarios = []Scenario{
	{Label: "conservative", AnnualRate: 0.08},
	{Label: "moderate", AnnualRate: 0.12},
	{Label: "aggressive", AnnualRate: 0.15},
}

// ProjectionPoint is the accumulated value at a month index.
type ProjectionPoint struct {
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// ProjectionSeries is the month-by-month curve for one scenario.
type ProjectionSeries []ProjectionPoint

// ScenarioProjection bundles a scenario with its curve and closed-form total.
type ScenarioProjection struct {
	Scenario    Scenario         `json:"scenario"`
	Series      ProjectionSeries `json:"series"`
	FutureValue float64          `json:"future_value"`
	Invested    float64          `json:"invested"`
}
