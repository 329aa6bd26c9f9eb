package service

import (
	"context"

	"Monexa/internal/domain/models"
)

// MetricDeriver turns one raw history into a metrics snapshot.
type MetricDeriver interface {
	Derive(ctx context.Context, raw models.RawHistory, targetCurrency string) (models.TickerMetrics, error)
}

// CurrencyNormalizer converts amounts between currencies.
type CurrencyNormalizer interface {
	Rate(ctx context.Context, from, to string) (float64, error)
	Convert(ctx context.Context, amount float64, from, to string) float64
}

// NewsContext produces the prepared news text fed to the advisor.
type NewsContext interface {
	Digest(ctx context.Context) models.NewsDigest
	Context(ctx context.Context) string
}

// AdviceGenerator produces the narrative for a profile from two context strings.
type AdviceGenerator interface {
	Generate(ctx context.Context, p models.Profile, financialCtx, newsCtx string) (string, error)
}
