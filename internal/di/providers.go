package di

import (
	"context"
	"fmt"
	"time"

	"Monexa/internal/domain/repository"
	"Monexa/internal/domain/service"
	"Monexa/internal/handler/api"
	internalrepo "Monexa/internal/repository"
	"Monexa/internal/service/cache"
	"Monexa/internal/service/ratelimit"
	"Monexa/internal/services/advice"
	"Monexa/internal/services/currency"
	"Monexa/internal/services/derive"
	"Monexa/internal/services/marketdata"
	"Monexa/internal/services/news"
	"Monexa/internal/usecase"
	"Monexa/pkg/config"
	xhttp "Monexa/pkg/http"
	pkgkafka "Monexa/pkg/kafka"
	applogger "Monexa/pkg/logger"
	"Monexa/pkg/metrics"
	"Monexa/pkg/server"
)

const defaultFXBaseURL = "https://open.er-api.com/v6"

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideRedisCache connects to Redis when enabled. A nil result means the in-process cache is used.
func ProvideRedisCache(cfg *config.Config, l *applogger.Logger) *cache.RedisCache {
	if !cfg.Cache.Redis.Enabled {
		return nil
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unreachable, using in-process cache",
			applogger.String("addr", cfg.Cache.Redis.Addr),
			applogger.Error(err),
		)
		_ = rc.Close()
		return nil
	}
	l.Info("redis cache connected", applogger.String("addr", cfg.Cache.Redis.Addr))
	return rc
}

// ProvideCache returns the shared byte cache, namespaced by the configured prefix.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache) cache.BytesCache {
	if rc != nil {
		return cache.WithPrefix(rc, cfg.Cache.Prefix)
	}
	return cache.WithPrefix(cache.NewTTLCache(), cfg.Cache.Prefix)
}

// ProvideRateProvider chains configured static rates ahead of the live exchange-rate API.
func ProvideRateProvider(cfg *config.Config, c cache.BytesCache) repository.RateProvider {
	baseURL := cfg.Currency.BaseURL
	if baseURL == "" {
		baseURL = defaultFXBaseURL
	}
	live := currency.NewHTTPRateProvider(baseURL, cfg.Currency.Timeout, c, cfg.Currency.CacheTTL)
	if len(cfg.Currency.StaticRates) == 0 {
		return live
	}
	return currency.ChainRateProvider{currency.NewStaticRateProvider(cfg.Currency.StaticRates), live}
}

// ProvideCurrencyNormalizer creates the currency normalizer.
func ProvideCurrencyNormalizer(rates repository.RateProvider, l *applogger.Logger) service.CurrencyNormalizer {
	return currency.NewNormalizer(rates, l)
}

// ProvideMarketData creates the EODHD client behind the history cache.
func ProvideMarketData(cfg *config.Config, c cache.BytesCache, m repository.Metrics, l *applogger.Logger) repository.MarketData {
	client := marketdata.NewEODHD(cfg.MarketData.APIKey, marketdata.Options{
		BaseURL:   cfg.MarketData.BaseURL,
		Timeout:   cfg.MarketData.Timeout,
		RateLimit: cfg.MarketData.RateLimit,
		Retries:   cfg.MarketData.Retries,
	},
		marketdata.WithLogger(l),
		marketdata.WithMetrics(m),
	)
	return marketdata.NewCached(client, c, cfg.Cache.HistoryTTL, l)
}

// ProvideDeriver creates the metric deriver.
func ProvideDeriver(fx service.CurrencyNormalizer, l *applogger.Logger) service.MetricDeriver {
	return derive.NewDeriver(fx, l)
}

// ProvideTickerAggregator creates the bounded concurrent aggregator.
func ProvideTickerAggregator(
	cfg *config.Config,
	data repository.MarketData,
	deriver service.MetricDeriver,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.TickerAggregator {
	return usecase.NewTickerAggregator(data, deriver,
		usecase.WithWorkers(cfg.MarketData.MaxWorkers),
		usecase.WithTaskTimeout(cfg.MarketData.FetchTimeout),
		usecase.WithAggregatorMetrics(m),
		usecase.WithAggregatorLogger(l),
	)
}

// ProvideSnapshotPublisher creates the Kafka snapshot publisher, or a no-op one without brokers.
func ProvideSnapshotPublisher(cfg *config.Config, l *applogger.Logger) (repository.SnapshotPublisher, error) {
	if !cfg.KafkaEnabled() {
		l.Info("kafka not configured, snapshots are not published")
		return internalrepo.NopSnapshotPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopic(cfg.Environment != "production"),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka producer ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.Topic),
	)
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMarketUseCase creates the market use case.
func ProvideMarketUseCase(
	cfg *config.Config,
	agg *usecase.TickerAggregator,
	data repository.MarketData,
	fx service.CurrencyNormalizer,
	c cache.BytesCache,
	pub repository.SnapshotPublisher,
	l *applogger.Logger,
) *usecase.MarketUseCase {
	return usecase.NewMarketUseCase(agg, data, fx, cfg.Currency.Target,
		usecase.WithAggregateCache(c, cfg.Cache.AggregateTTL),
		usecase.WithPublisher(pub),
		usecase.WithMarketLogger(l),
	)
}

// ProvideNewsContext creates the news service. Without an API key it always reports no news.
func ProvideNewsContext(cfg *config.Config, l *applogger.Logger) service.NewsContext {
	if !cfg.NewsEnabled() {
		return news.NewService(nil, l)
	}
	client := news.NewClient(cfg.News.APIKey, cfg.News.BaseURL, cfg.News.PageSize, cfg.News.Lookback, cfg.News.Timeout)
	return news.NewService(client, l)
}

// ProvideAdviceGenerator creates the Gemini generator. Without an API key it returns nil.
func ProvideAdviceGenerator(cfg *config.Config, l *applogger.Logger) (service.AdviceGenerator, error) {
	if !cfg.AdviceEnabled() {
		l.Info("advice api key not set, using local fallback advice")
		return nil, nil
	}
	g, err := advice.NewGemini(context.Background(), cfg.Advice.APIKey,
		advice.WithModel(cfg.Advice.Model),
		advice.WithLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("advice generator: %w", err)
	}
	return g, nil
}

// ProvideAdvisor wraps the generator with the local fallback.
func ProvideAdvisor(cfg *config.Config, gen service.AdviceGenerator, l *applogger.Logger) usecase.Advisor {
	return advice.NewAdvisor(gen, cfg.Advice.Timeout, l)
}

// ProvideAdvisorUseCase creates the advice plan use case.
func ProvideAdvisorUseCase(
	market *usecase.MarketUseCase,
	nc service.NewsContext,
	adv usecase.Advisor,
	l *applogger.Logger,
) *usecase.AdvisorUseCase {
	return usecase.NewAdvisorUseCase(market, nc, adv, l)
}

// ProvideRateLimiter creates the inbound per-client limiter shared by the handler and the app pruner.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPHandler creates the rate-limited API handler.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	limiter *ratelimit.Limiter,
	market *usecase.MarketUseCase,
	adv *usecase.AdvisorUseCase,
	nc service.NewsContext,
) xhttp.Handler {
	return api.NewMarketsEchoHandler(l, market, adv, nc,
		api.WithRateLimit(limiter, cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec),
	)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h xhttp.Handler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideRefresher creates the scheduled top-stocks refresher.
func ProvideRefresher(cfg *config.Config, market *usecase.MarketUseCase, l *applogger.Logger) *usecase.Refresher {
	return usecase.NewRefresher(market, cfg.Refresher.Markets, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	refresher *usecase.Refresher,
	pub repository.SnapshotPublisher,
	limiter *ratelimit.Limiter,
	rc *cache.RedisCache,
) *server.App {
	app := server.New(cfg, l, srv, refresher, pub, limiter)
	if rc != nil {
		app.AddCloser("redis", rc)
	}
	return app
}
