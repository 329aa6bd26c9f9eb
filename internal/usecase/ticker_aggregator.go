package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	domsvc "Monexa/internal/domain/service"
	"Monexa/pkg/config"
	applogger "Monexa/pkg/logger"
	"Monexa/pkg/metrics"
	"Monexa/pkg/util"
)

// DefaultTaskTimeout bounds one fetch-and-derive task.
const DefaultTaskTimeout = 15 * time.Second

// Failure stages of a ticker task.
const (
	StageFetch  = "fetch"
	StageDerive = "derive"
	StagePanic  = "panic"
)

// FetchError describes why one symbol produced no metrics.
type FetchError struct {
	Symbol string
	Stage  string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is the outcome of one ticker task. Exactly one of Metrics or Err is meaningful.
type Result struct {
	Symbol  string
	Metrics models.TickerMetrics
	Err     *FetchError
}

// TickerAggregator fetches and derives many symbols over a bounded worker pool.
type TickerAggregator struct {
	data        domrepo.MarketData
	deriver     domsvc.MetricDeriver
	metrics     domrepo.Metrics
	log         *applogger.Logger
	workers     int
	taskTimeout time.Duration
}

// AggregatorOption configures a TickerAggregator.
type AggregatorOption func(*TickerAggregator)

// WithWorkers sets the pool size, clamped to 1..config.MaxFetchWorkers.
func WithWorkers(n int) AggregatorOption {
	return func(a *TickerAggregator) {
		a.workers = max(1, min(n, config.MaxFetchWorkers))
	}
}

// WithTaskTimeout bounds each fetch-and-derive task. Zero disables the bound.
func WithTaskTimeout(d time.Duration) AggregatorOption {
	return func(a *TickerAggregator) { a.taskTimeout = d }
}

// WithAggregatorMetrics sets the metrics recorder.
func WithAggregatorMetrics(m domrepo.Metrics) AggregatorOption {
	return func(a *TickerAggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(l *applogger.Logger) AggregatorOption {
	return func(a *TickerAggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// NewTickerAggregator creates an aggregator over a market-data provider and a deriver.
func NewTickerAggregator(data domrepo.MarketData, deriver domsvc.MetricDeriver, opts ...AggregatorOption) *TickerAggregator {
	a := &TickerAggregator{
		data:        data,
		deriver:     deriver,
		metrics:     metrics.Nop{},
		log:         applogger.NewNop(),
		workers:     config.MaxFetchWorkers,
		taskTimeout: DefaultTaskTimeout,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Aggregate returns metrics for every symbol that was fetched and derived successfully.
// It never fails; an empty map is the fully degraded result.
func (a *TickerAggregator) Aggregate(ctx context.Context, symbols []string, period, targetCurrency string) models.AggregateResult {
	start := time.Now()
	out := models.AggregateResult{}
	var failed int
	for r := range a.Run(ctx, symbols, period, targetCurrency) {
		if r.Err != nil {
			failed++
			a.log.Warn("ticker skipped",
				applogger.String("symbol", r.Symbol),
				applogger.String("stage", r.Err.Stage),
				applogger.Error(r.Err.Err),
			)
			continue
		}
		out[r.Symbol] = r.Metrics
	}
	if len(out)+failed > 0 {
		a.metrics.RecordLatency("aggregate", time.Since(start).Seconds())
		a.log.Info("aggregate completed",
			applogger.Int("ok", len(out)),
			applogger.Int("failed", failed),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out
}

// Run dispatches one task per distinct symbol and streams results in completion order.
// The channel is closed once every dispatched task has reported.
func (a *TickerAggregator) Run(ctx context.Context, symbols []string, period, targetCurrency string) <-chan Result {
	syms := util.NormalizeSymbols(symbols)
	results := make(chan Result, len(syms))
	if len(syms) == 0 {
		close(results)
		return results
	}

	tasks := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < min(a.workers, len(syms)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range tasks {
				results <- a.task(ctx, s, period, targetCurrency)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, s := range syms {
			if ctx.Err() != nil {
				return
			}
			select {
			case tasks <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

func (a *TickerAggregator) task(ctx context.Context, symbol, period, targetCurrency string) (res Result) {
	res.Symbol = symbol
	a.metrics.RecordInFlight(1)
	defer a.metrics.RecordInFlight(-1)
	defer func() {
		if p := recover(); p != nil {
			a.metrics.RecordError("aggregate_panic")
			res = Result{Symbol: symbol, Err: &FetchError{Symbol: symbol, Stage: StagePanic, Err: fmt.Errorf("%v", p)}}
		}
	}()

	// a cancelled aggregate never reaches the provider
	if err := ctx.Err(); err != nil {
		res.Err = &FetchError{Symbol: symbol, Stage: StageFetch, Err: err}
		return res
	}

	if a.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.taskTimeout)
		defer cancel()
	}

	raw, err := a.data.History(ctx, symbol, period)
	if err == nil && len(raw.Bars) == 0 {
		err = domrepo.ErrNoData
	}
	if err != nil {
		if !errors.Is(err, domrepo.ErrNoData) {
			a.metrics.RecordError("fetch")
		}
		res.Err = &FetchError{Symbol: symbol, Stage: StageFetch, Err: err}
		return res
	}
	if raw.Symbol == "" {
		raw.Symbol = symbol
	}

	m, err := a.deriver.Derive(ctx, raw, targetCurrency)
	if err != nil {
		a.metrics.RecordError("derive")
		res.Err = &FetchError{Symbol: symbol, Stage: StageDerive, Err: err}
		return res
	}
	// the aggregate is keyed by the requested symbol
	m.Symbol = symbol
	a.metrics.RecordLastPrice(symbol, m.CurrentPrice)
	res.Metrics = m
	return res
}
