package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domrepo "Monexa/internal/domain/repository"
	"Monexa/internal/services/derive"
)

func newAggregator(m *fakeMarket, opts ...AggregatorOption) *TickerAggregator {
	return NewTickerAggregator(m, derive.NewDeriver(nil, nil), opts...)
}

func TestAggregate_PartialFailures(t *testing.T) {
	m := newFakeMarket()
	m.fail["BAD1"] = errProvider
	m.fail["GONE"] = domrepo.ErrNoData

	got := newAggregator(m).Aggregate(context.Background(), []string{"AAPL", "BAD1", "MSFT", "GONE", "TCS.NS"}, "1y", "")

	require.Len(t, got, 3)
	for sym, metrics := range got {
		assert.Equal(t, sym, metrics.Symbol)
	}
	assert.InDelta(t, 60.0, got["AAPL"].PriceChangePct, 1e-9)
	assert.Equal(t, "INR", got["TCS.NS"].Currency)
}

func TestAggregate_EmptyInput(t *testing.T) {
	m := newFakeMarket()
	got := newAggregator(m).Aggregate(context.Background(), nil, "1y", "USD")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = newAggregator(m).Aggregate(context.Background(), []string{" ", ""}, "1y", "USD")
	assert.Empty(t, got)
	assert.Empty(t, m.calls)
}

func TestAggregate_Deduplicates(t *testing.T) {
	m := newFakeMarket()
	got := newAggregator(m).Aggregate(context.Background(), []string{"aapl", "AAPL", " AAPL "}, "1y", "")
	assert.Len(t, got, 1)
	assert.Equal(t, 1, m.callCount("AAPL"))
}

func TestAggregate_BoundedConcurrency(t *testing.T) {
	m := newFakeMarket()
	m.delay = 30 * time.Millisecond

	symbols := make([]string, 12)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%d", i)
	}
	got := newAggregator(m, WithWorkers(50)).Aggregate(context.Background(), symbols, "1y", "")

	assert.Len(t, got, 12)
	assert.LessOrEqual(t, m.peak, int32(5))
	assert.Greater(t, m.peak, int32(1), "tasks should overlap")
}

func TestRun_HangingFetchDoesNotBlockSiblings(t *testing.T) {
	m := newFakeMarket()
	m.delays["SLOW"] = 2 * time.Second
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	results := newAggregator(m, WithTaskTimeout(0)).Run(ctx, []string{"SLOW", "FAST"}, "1y", "")

	select {
	case first := <-results:
		require.Nil(t, first.Err)
		assert.Equal(t, "FAST", first.Symbol)
		assert.Less(t, time.Since(start), time.Second)
	case <-time.After(time.Second):
		t.Fatal("FAST result was held back by SLOW")
	}

	// release SLOW and drain
	cancel()
	var rest []Result
	for r := range results {
		rest = append(rest, r)
	}
	require.Len(t, rest, 1)
	assert.Equal(t, "SLOW", rest[0].Symbol)
	assert.ErrorIs(t, rest[0].Err, context.Canceled)
}

func TestAggregate_TaskTimeoutDropsOnlyTheSlowSymbol(t *testing.T) {
	m := newFakeMarket()
	m.delays["SLOW"] = 2 * time.Second

	start := time.Now()
	got := newAggregator(m, WithTaskTimeout(50*time.Millisecond)).Aggregate(context.Background(), []string{"SLOW", "FAST"}, "1y", "")
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, got, 1)
	assert.Contains(t, got, "FAST")
}

func TestAggregate_PanicIsContained(t *testing.T) {
	m := newFakeMarket()
	m.panicOn = "BOOM"

	got := newAggregator(m).Aggregate(context.Background(), []string{"BOOM", "OK"}, "1y", "")
	assert.Len(t, got, 1)
	assert.Contains(t, got, "OK")
}

func TestRun_TypedResults(t *testing.T) {
	m := newFakeMarket()
	m.fail["BAD"] = errProvider

	var ok, failed []Result
	for r := range newAggregator(m).Run(context.Background(), []string{"GOOD", "BAD"}, "1y", "") {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		ok = append(ok, r)
	}
	require.Len(t, ok, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, "BAD", failed[0].Symbol)
	assert.Equal(t, StageFetch, failed[0].Err.Stage)
	assert.ErrorIs(t, failed[0].Err, errProvider)
}

func TestRun_CancelledContext(t *testing.T) {
	m := newFakeMarket()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var results []Result
	for r := range newAggregator(m).Run(ctx, []string{"A", "B", "C"}, "1y", "") {
		results = append(results, r)
	}
	for _, r := range results {
		require.NotNil(t, r.Err, r.Symbol)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Empty(t, m.calls)

	assert.Empty(t, newAggregator(m).Aggregate(ctx, []string{"A", "B"}, "1y", ""))
}
