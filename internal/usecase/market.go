package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	domsvc "Monexa/internal/domain/service"
	"Monexa/internal/service/cache"
	"Monexa/internal/services/currency"
	applogger "Monexa/pkg/logger"
	"Monexa/pkg/util"
)

const (
	NoMarketData = "No market data available."
	NoTickers    = "No specific tickers to analyze."
)

// MarketUseCase serves ticker metrics, comparisons and profiles.
type MarketUseCase struct {
	agg       *TickerAggregator
	data      domrepo.MarketData
	fx        domsvc.CurrencyNormalizer
	publisher domrepo.SnapshotPublisher
	cache     cache.BytesCache
	cacheTTL  time.Duration
	target    string
	log       *applogger.Logger
}

// MarketOption configures a MarketUseCase.
type MarketOption func(*MarketUseCase)

// WithAggregateCache caches aggregate results for ttl.
func WithAggregateCache(c cache.BytesCache, ttl time.Duration) MarketOption {
	return func(u *MarketUseCase) {
		u.cache = c
		u.cacheTTL = ttl
	}
}

// WithPublisher publishes every successful aggregate.
func WithPublisher(p domrepo.SnapshotPublisher) MarketOption {
	return func(u *MarketUseCase) { u.publisher = p }
}

// WithMarketLogger sets the logger.
func WithMarketLogger(l *applogger.Logger) MarketOption {
	return func(u *MarketUseCase) {
		if l != nil {
			u.log = l
		}
	}
}

// NewMarketUseCase creates the use case. target is the default display currency.
func NewMarketUseCase(agg *TickerAggregator, data domrepo.MarketData, fx domsvc.CurrencyNormalizer, target string, opts ...MarketOption) *MarketUseCase {
	u := &MarketUseCase{
		agg:    agg,
		data:   data,
		fx:     fx,
		target: currency.Code(target),
		log:    applogger.NewNop(),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// TargetCurrency returns the default display currency.
func (u *MarketUseCase) TargetCurrency() string { return u.target }

// Tickers aggregates symbols over period in targetCurrency (default when empty).
func (u *MarketUseCase) Tickers(ctx context.Context, symbols []string, period, targetCurrency string) models.AggregateResult {
	period = domrepo.NormalizePeriod(period)
	target := currency.Code(targetCurrency)
	if target == "" {
		target = u.target
	}
	syms := util.NormalizeSymbols(symbols)
	if len(syms) == 0 {
		return models.AggregateResult{}
	}

	key := aggregateKey(syms, period, target)
	if u.cache != nil && u.cacheTTL > 0 {
		var hit models.AggregateResult
		if ok, _ := cache.GetJSON(ctx, u.cache, key, &hit); ok {
			return hit
		}
	}

	res := u.agg.Aggregate(ctx, syms, period, target)
	if len(res) == 0 {
		return res
	}
	if u.cache != nil && u.cacheTTL > 0 && allIn(res, target) {
		if err := cache.SetJSON(ctx, u.cache, key, res, u.cacheTTL); err != nil {
			u.log.Warn("aggregate cache write failed", applogger.Error(err))
		}
	}
	u.publish(ctx, res)
	return res
}

// TopStocks aggregates the top stock list of a market.
func (u *MarketUseCase) TopStocks(ctx context.Context, market, period string) (models.AggregateResult, error) {
	m := models.NormalizeMarket(market)
	if m == "" {
		return nil, fmt.Errorf("unknown market %q", market)
	}
	return u.Tickers(ctx, models.TopStocks(m), period, ""), nil
}

// Info returns the company profile with monetary fields in the default currency.
func (u *MarketUseCase) Info(ctx context.Context, symbol string) (models.TickerInfo, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	info, err := u.data.Info(ctx, symbol)
	if err != nil {
		return models.TickerInfo{}, err
	}
	info.Symbol = symbol
	native := currency.NativeCurrency(symbol, info.Currency)
	info.Currency = native
	if u.fx == nil || u.target == "" || native == u.target {
		return info, nil
	}
	rate, err := u.fx.Rate(ctx, native, u.target)
	if err != nil {
		u.log.Warn("info conversion skipped", applogger.String("symbol", symbol), applogger.Error(err))
		return info, nil
	}
	info.MarketCap *= rate
	info.Currency = u.target
	return info, nil
}

// Compare returns close prices rebased to base for each symbol, in native currency.
func (u *MarketUseCase) Compare(ctx context.Context, symbols []string, period string, base float64) map[string][]models.SeriesPoint {
	res := u.agg.Aggregate(ctx, symbols, domrepo.NormalizePeriod(period), "")
	out := make(map[string][]models.SeriesPoint, len(res))
	for sym, m := range res {
		if pts := Normalize(m.History, base); len(pts) > 0 {
			out[sym] = pts
		}
	}
	return out
}

func (u *MarketUseCase) publish(ctx context.Context, res models.AggregateResult) {
	if u.publisher == nil {
		return
	}
	batch := make([]models.TickerMetrics, 0, len(res))
	for _, sym := range sortedSymbols(res) {
		batch = append(batch, res[sym].Snapshot())
	}
	if err := u.publisher.PublishBatch(ctx, batch); err != nil {
		u.log.Warn("snapshot publish failed", applogger.Int("count", len(batch)), applogger.Error(err))
	}
}

// Normalize rebases closes so the first equals base. Non-positive first closes yield nil.
func Normalize(bars []models.Bar, base float64) []models.SeriesPoint {
	if len(bars) == 0 || bars[0].Close <= 0 {
		return nil
	}
	first := bars[0].Close
	out := make([]models.SeriesPoint, len(bars))
	for i, b := range bars {
		out[i] = models.SeriesPoint{Date: b.Date, Value: b.Close / first * base}
	}
	return out
}

// FinancialContext renders an aggregate as the advisor's "Market Data:" block.
func FinancialContext(res models.AggregateResult, tickers []string) string {
	if len(tickers) == 0 {
		return NoTickers
	}
	if len(res) == 0 {
		return NoMarketData
	}
	lines := make([]string, 0, len(res))
	for _, sym := range sortedSymbols(res) {
		m := res[sym]
		lines = append(lines, fmt.Sprintf("%s: Current=$%.2f, Change=%.1f%%, 52w-High=$%.2f", sym, m.CurrentPrice, m.PriceChangePct, m.High52W))
	}
	return "Market Data:\n" + strings.Join(lines, "\n")
}

// allIn reports whether every record is labelled with target. A record left in its native
// currency after a failed rate lookup must not be cached under the target's key.
func allIn(res models.AggregateResult, target string) bool {
	for _, m := range res {
		if m.Currency != target {
			return false
		}
	}
	return true
}

func sortedSymbols(res models.AggregateResult) []string {
	syms := res.Symbols()
	sort.Strings(syms)
	return syms
}

func aggregateKey(syms []string, period, target string) string {
	sorted := append([]string(nil), syms...)
	sort.Strings(sorted)
	return "aggregate:" + period + ":" + target + ":" + strings.Join(sorted, ",")
}
