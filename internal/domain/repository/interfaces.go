package repository

import (
	"context"
	"errors"

	"Monexa/internal/domain/models"
)

// ErrNoData is returned by a MarketData provider for unknown or delisted symbols.
var ErrNoData = errors.New("no data for symbol")

// MarketData fetches daily history and company profiles.
type MarketData interface {
	History(ctx context.Context, symbol, period string) (models.RawHistory, error)
	Info(ctx context.Context, symbol string) (models.TickerInfo, error)
}

// RateProvider returns the multiplicative rate that converts from into to.
type RateProvider interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// NewsSource returns recent market articles.
type NewsSource interface {
	Articles(ctx context.Context) ([]models.Article, error)
}

// SnapshotPublisher emits derived ticker snapshots to downstream consumers.
type SnapshotPublisher interface {
	Publish(ctx context.Context, m models.TickerMetrics) error
	PublishBatch(ctx context.Context, ms []models.TickerMetrics) error
	Close() error
}

// Metrics records market-data fetch outcomes.
type Metrics interface {
	RecordFetch(provider, outcome string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordInFlight(delta float64)
}
