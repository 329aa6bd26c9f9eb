// Package marketdata provides daily price history and company profiles.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	"Monexa/internal/services/upstream"
	xhttp "Monexa/pkg/http"
	applogger "Monexa/pkg/logger"
	"Monexa/pkg/metrics"
	"Monexa/pkg/util"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	providerName     = "eodhd"
)

// EODHD implements repository.MarketData against the EODHD REST API.
type EODHD struct {
	*upstream.HTTPServiceBase
	apiKey  string
	retries int
	limiter *rate.Limiter
	metrics domrepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

// Options configures the EODHD client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit int
	Retries   int
}

// Option configures the client.
type Option func(*EODHD)

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *EODHD) { c.log = l }
}

// WithMetrics sets the fetch outcome recorder.
func WithMetrics(m domrepo.Metrics) Option {
	return func(c *EODHD) { c.metrics = m }
}

// WithClock overrides the clock used to resolve period windows.
func WithClock(now func() time.Time) Option {
	return func(c *EODHD) { c.now = now }
}

// NewEODHD creates a new EODHD client.
func NewEODHD(apiKey string, o Options, opts ...Option) *EODHD {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RateLimit <= 0 {
		o.RateLimit = DefaultRateLimit
	}
	if o.Retries <= 0 {
		o.Retries = 2
	}
	c := &EODHD{
		HTTPServiceBase: upstream.NewHTTPServiceBase(o.BaseURL, o.Timeout, nil),
		apiKey:          apiKey,
		retries:         o.Retries,
		limiter:         rate.NewLimiter(rate.Limit(o.RateLimit), o.RateLimit),
		metrics:         metrics.Nop{},
		log:             applogger.NewNop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Code maps an exchange-suffixed symbol to an EODHD ticker code.
// "X.NS" -> "X.NSE", "X.BO" -> "X.BSE", no suffix -> "X.US".
func Code(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case strings.HasSuffix(s, ".NS"):
		return strings.TrimSuffix(s, ".NS") + ".NSE"
	case strings.HasSuffix(s, ".BO"):
		return strings.TrimSuffix(s, ".BO") + ".BSE"
	case strings.Contains(s, "."):
		return s
	default:
		return s + ".US"
	}
}

// get performs a rate-limited GET request.
func (c *EODHD) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	c.log.Debug("eodhd request", applogger.String("path", path))
	err := c.GetJSONWithRetry(ctx, path, params, result, c.retries)
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, domrepo.ErrNoData)
	}
	return err
}

// eodRow is one bar of /eod. Nulls decode as nil.
type eodRow struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}

type generalResponse struct {
	Code         string `json:"Code"`
	Name         string `json:"Name"`
	Sector       string `json:"Sector"`
	Industry     string `json:"Industry"`
	CurrencyCode string `json:"CurrencyCode"`
	Description  string `json:"Description"`
	WebURL       string `json:"WebURL"`
}

type fundamentalsResponse struct {
	General    generalResponse `json:"General"`
	Highlights struct {
		MarketCapitalization *float64 `json:"MarketCapitalization"`
		PERatio              *float64 `json:"PERatio"`
		DividendYield        *float64 `json:"DividendYield"`
	} `json:"Highlights"`
	Technicals struct {
		Beta *float64 `json:"Beta"`
	} `json:"Technicals"`
}

// History returns ascending daily bars for the period window ending today.
func (c *EODHD) History(ctx context.Context, symbol, period string) (models.RawHistory, error) {
	start := c.now()
	code := Code(symbol)
	from, err := util.PeriodStart(domrepo.NormalizePeriod(period), c.now())
	if err != nil {
		return models.RawHistory{}, err
	}

	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	if !from.IsZero() {
		params.Set("from", util.FormatDate(from))
	}
	params.Set("to", util.FormatDate(c.now().UTC()))

	var rows []eodRow
	if err := c.get(ctx, "/eod/"+code, params, &rows); err != nil {
		c.record(err)
		return models.RawHistory{}, fmt.Errorf("history %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		c.record(domrepo.ErrNoData)
		return models.RawHistory{}, fmt.Errorf("history %s: %w", symbol, domrepo.ErrNoData)
	}

	bars := make([]models.Bar, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		bars = append(bars, models.Bar{
			Date:   d,
			Open:   orNaN(r.Open),
			High:   orNaN(r.High),
			Low:    orNaN(r.Low),
			Close:  orNaN(r.Close),
			Volume: orNaN(r.Volume),
		})
	}

	raw := models.RawHistory{Symbol: symbol, Bars: bars}
	if meta, err := c.meta(ctx, code); err != nil {
		c.log.Debug("eodhd metadata unavailable", applogger.String("symbol", symbol), applogger.Error(err))
	} else {
		raw.Meta = meta
	}

	c.record(nil)
	c.metrics.RecordLatency("eodhd_history", c.now().Sub(start).Seconds())
	return raw, nil
}

func (c *EODHD) meta(ctx context.Context, code string) (models.TickerMeta, error) {
	params := url.Values{}
	params.Set("filter", "General")
	var g generalResponse
	if err := c.get(ctx, "/fundamentals/"+code, params, &g); err != nil {
		return models.TickerMeta{}, err
	}
	return models.TickerMeta{
		Name:     g.Name,
		Sector:   g.Sector,
		Industry: g.Industry,
		Currency: strings.ToUpper(g.CurrencyCode),
	}, nil
}

// Info returns the company profile in the symbol's native currency.
func (c *EODHD) Info(ctx context.Context, symbol string) (models.TickerInfo, error) {
	var f fundamentalsResponse
	if err := c.get(ctx, "/fundamentals/"+Code(symbol), nil, &f); err != nil {
		c.record(err)
		return models.TickerInfo{}, fmt.Errorf("info %s: %w", symbol, err)
	}
	if f.General.Name == "" && f.General.Code == "" {
		c.record(domrepo.ErrNoData)
		return models.TickerInfo{}, fmt.Errorf("info %s: %w", symbol, domrepo.ErrNoData)
	}
	c.record(nil)
	return models.TickerInfo{
		Symbol:        symbol,
		Name:          f.General.Name,
		Sector:        f.General.Sector,
		Industry:      f.General.Industry,
		Website:       f.General.WebURL,
		Description:   f.General.Description,
		MarketCap:     orZero(f.Highlights.MarketCapitalization),
		PERatio:       orZero(f.Highlights.PERatio),
		Beta:          orZero(f.Technicals.Beta),
		DividendYield: orZero(f.Highlights.DividendYield),
		Currency:      strings.ToUpper(f.General.CurrencyCode),
	}, nil
}

func (c *EODHD) record(err error) {
	switch {
	case err == nil:
		c.metrics.RecordFetch(providerName, "ok")
	case errors.Is(err, domrepo.ErrNoData):
		c.metrics.RecordFetch(providerName, "no_data")
	default:
		c.metrics.RecordFetch(providerName, "error")
		c.metrics.RecordError("marketdata")
	}
}
