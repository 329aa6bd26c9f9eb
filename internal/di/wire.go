//go:build wireinject
// +build wireinject

package di

import (
	"Monexa/pkg/config"
	"Monexa/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideCache,
		ProvideSnapshotPublisher,

		// Collaborators
		ProvideRateProvider,
		ProvideCurrencyNormalizer,
		ProvideMarketData,
		ProvideDeriver,
		ProvideNewsContext,
		ProvideAdviceGenerator,
		ProvideAdvisor,

		// Use cases
		ProvideTickerAggregator,
		ProvideMarketUseCase,
		ProvideAdvisorUseCase,
		ProvideRefresher,

		// Transport
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
