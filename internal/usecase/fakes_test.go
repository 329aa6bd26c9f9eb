package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func linearBars(n int, from, to float64) []models.Bar {
	bars := make([]models.Bar, n)
	step := (to - from) / float64(n-1)
	for i := range bars {
		p := from + step*float64(i)
		bars[i] = models.Bar{Date: day0.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p, Volume: 100}
	}
	return bars
}

// fakeMarket serves linear histories and fails symbols listed in fail.
type fakeMarket struct {
	mu       sync.Mutex
	delay    time.Duration
	delays   map[string]time.Duration
	fail     map[string]error
	calls    map[string]int
	panicOn  string
	inFlight int32
	peak     int32
	info     models.TickerInfo
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{fail: map[string]error{}, calls: map[string]int{}, delays: map[string]time.Duration{}}
}

func (f *fakeMarket) History(ctx context.Context, symbol, _ string) (models.RawHistory, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[symbol]++
	err := f.fail[symbol]
	delay := f.delay
	if d, ok := f.delays[symbol]; ok {
		delay = d
	}
	f.mu.Unlock()

	if symbol == f.panicOn {
		panic("provider exploded")
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return models.RawHistory{}, ctx.Err()
		}
	}
	if err != nil {
		return models.RawHistory{}, err
	}
	return models.RawHistory{
		Symbol: symbol,
		Bars:   linearBars(60, 100, 160),
		Meta:   models.TickerMeta{Name: symbol + " Corp", Currency: "USD"},
	}, nil
}

func (f *fakeMarket) Info(context.Context, string) (models.TickerInfo, error) {
	if f.info.Symbol == "" {
		return models.TickerInfo{}, domrepo.ErrNoData
	}
	return f.info, nil
}

func (f *fakeMarket) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

var errProvider = errors.New("provider unavailable")

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]models.TickerMetrics
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, m models.TickerMetrics) error {
	return p.PublishBatch(ctx, []models.TickerMetrics{m})
}

func (p *fakePublisher) PublishBatch(_ context.Context, ms []models.TickerMetrics) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, ms)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

type fakeNews struct{ text string }

func (f fakeNews) Digest(context.Context) models.NewsDigest {
	return models.NewsDigest{Articles: []models.Article{}, Context: f.text}
}

func (f fakeNews) Context(context.Context) string { return f.text }

type fakeFX struct{ rate float64 }

func (f fakeFX) Rate(_ context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	if f.rate == 0 {
		return 0, errProvider
	}
	return f.rate, nil
}

func (f fakeFX) Convert(ctx context.Context, amount float64, from, to string) float64 {
	r, err := f.Rate(ctx, from, to)
	if err != nil {
		return amount
	}
	return amount * r
}
