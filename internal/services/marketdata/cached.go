package marketdata

import (
	"context"
	"time"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	"Monexa/internal/service/cache"
	applogger "Monexa/pkg/logger"
)

// Cached decorates a MarketData provider with a byte cache.
type Cached struct {
	next  domrepo.MarketData
	cache cache.BytesCache
	ttl   time.Duration
	log   *applogger.Logger
}

// NewCached wraps next. A non-positive ttl disables caching.
func NewCached(next domrepo.MarketData, c cache.BytesCache, ttl time.Duration, log *applogger.Logger) *Cached {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Cached{next: next, cache: c, ttl: ttl, log: log}
}

// cachedBar mirrors models.Bar with nullable fields since JSON has no NaN.
type cachedBar struct {
	Date   time.Time `json:"d"`
	Open   *float64  `json:"o"`
	High   *float64  `json:"h"`
	Low    *float64  `json:"l"`
	Close  *float64  `json:"c"`
	Volume *float64  `json:"v"`
}

type cachedHistory struct {
	Symbol  string            `json:"symbol"`
	Bars    []cachedBar       `json:"bars"`
	Meta    models.TickerMeta `json:"meta"`
	Columns []string          `json:"columns,omitempty"`
}

func (c *Cached) History(ctx context.Context, symbol, period string) (models.RawHistory, error) {
	if c.cache == nil || c.ttl <= 0 {
		return c.next.History(ctx, symbol, period)
	}
	key := "history:" + symbol + ":" + domrepo.NormalizePeriod(period)

	var hit cachedHistory
	ok, err := cache.GetJSON(ctx, c.cache, key, &hit)
	if err != nil {
		c.log.Warn("history cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	if ok {
		return fromCached(hit), nil
	}

	raw, err := c.next.History(ctx, symbol, period)
	if err != nil {
		return raw, err
	}
	if err := cache.SetJSON(ctx, c.cache, key, toCached(raw), c.ttl); err != nil {
		c.log.Warn("history cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return raw, nil
}

func (c *Cached) Info(ctx context.Context, symbol string) (models.TickerInfo, error) {
	if c.cache == nil || c.ttl <= 0 {
		return c.next.Info(ctx, symbol)
	}
	key := "info:" + symbol
	var hit models.TickerInfo
	if ok, _ := cache.GetJSON(ctx, c.cache, key, &hit); ok {
		return hit, nil
	}
	info, err := c.next.Info(ctx, symbol)
	if err != nil {
		return info, err
	}
	_ = cache.SetJSON(ctx, c.cache, key, info, c.ttl)
	return info, nil
}

func toCached(raw models.RawHistory) cachedHistory {
	out := cachedHistory{Symbol: raw.Symbol, Meta: raw.Meta, Columns: raw.Columns, Bars: make([]cachedBar, len(raw.Bars))}
	for i, b := range raw.Bars {
		out.Bars[i] = cachedBar{
			Date:   b.Date,
			Open:   ptr(b.Open),
			High:   ptr(b.High),
			Low:    ptr(b.Low),
			Close:  ptr(b.Close),
			Volume: ptr(b.Volume),
		}
	}
	return out
}

func fromCached(h cachedHistory) models.RawHistory {
	out := models.RawHistory{Symbol: h.Symbol, Meta: h.Meta, Columns: h.Columns, Bars: make([]models.Bar, len(h.Bars))}
	for i, b := range h.Bars {
		out.Bars[i] = models.Bar{
			Date:   b.Date,
			Open:   orNaN(b.Open),
			High:   orNaN(b.High),
			Low:    orNaN(b.Low),
			Close:  orNaN(b.Close),
			Volume: orNaN(b.Volume),
		}
	}
	return out
}
