package marketdata

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domrepo "Monexa/internal/domain/repository"
	"Monexa/internal/service/cache"
)

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/eod/RELIANCE.NSE":
			assert.Equal(t, "2024-03-15", r.URL.Query().Get("from"))
			assert.Equal(t, "2025-03-15", r.URL.Query().Get("to"))
			assert.Equal(t, "a", r.URL.Query().Get("order"))
			_, _ = w.Write([]byte(`[
				{"date":"2025-03-12","open":100,"high":101,"low":99,"close":100.5,"volume":1000},
				{"date":"2025-03-13","open":null,"high":102,"low":100,"close":null,"volume":1200},
				{"date":"2025-03-14","open":101,"high":103,"low":100,"close":102,"volume":900}
			]`))
		case "/fundamentals/RELIANCE.NSE":
			if r.URL.Query().Get("filter") == "General" {
				_, _ = w.Write([]byte(`{"Code":"RELIANCE","Name":"Reliance Industries","Sector":"Energy","Industry":"Oil & Gas","CurrencyCode":"inr"}`))
				return
			}
			_, _ = w.Write([]byte(`{"General":{"Code":"RELIANCE","Name":"Reliance Industries","Sector":"Energy","Industry":"Oil & Gas","CurrencyCode":"INR","WebURL":"https://www.ril.com","Description":"Conglomerate"},
				"Highlights":{"MarketCapitalization":1.9e13,"PERatio":27.5,"DividendYield":null},"Technicals":{"Beta":0.9}}`))
		case "/eod/EMPTY.US", "/fundamentals/EMPTY.US":
			_, _ = w.Write([]byte(`[]`))
		case "/eod/BROKEN.US":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestClient(url string) *EODHD {
	return NewEODHD("test-key", Options{BaseURL: url, RateLimit: 100, Retries: 1}, WithClock(func() time.Time { return fixedNow }))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "RELIANCE.NSE", Code("RELIANCE.NS"))
	assert.Equal(t, "TCS.BSE", Code("tcs.bo"))
	assert.Equal(t, "AAPL.US", Code("AAPL"))
	assert.Equal(t, "BRK-B.US", Code("BRK-B"))
	assert.Equal(t, "SAP.XETRA", Code("SAP.XETRA"))
}

func TestHistory(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	raw, err := newTestClient(srv.URL).History(context.Background(), "RELIANCE.NS", "1y")
	require.NoError(t, err)

	assert.Equal(t, "RELIANCE.NS", raw.Symbol)
	require.Len(t, raw.Bars, 3)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), raw.Bars[0].Date)
	assert.True(t, math.IsNaN(raw.Bars[1].Open))
	assert.True(t, math.IsNaN(raw.Bars[1].Close))
	assert.Equal(t, 102.0, raw.Bars[1].High)
	assert.Equal(t, "Reliance Industries", raw.Meta.Name)
	assert.Equal(t, "INR", raw.Meta.Currency)
	assert.Equal(t, "Energy", raw.Meta.Sector)
}

func TestHistory_NoData(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()
	c := newTestClient(srv.URL)

	_, err := c.History(context.Background(), "EMPTY", "1y")
	assert.ErrorIs(t, err, domrepo.ErrNoData)

	_, err = c.History(context.Background(), "DELISTED", "1y")
	assert.ErrorIs(t, err, domrepo.ErrNoData)

	_, err = c.History(context.Background(), "BROKEN", "1y")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domrepo.ErrNoData)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestInfo(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	info, err := newTestClient(srv.URL).Info(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)
	assert.Equal(t, "Reliance Industries", info.Name)
	assert.Equal(t, "https://www.ril.com", info.Website)
	assert.Equal(t, 1.9e13, info.MarketCap)
	assert.Equal(t, 27.5, info.PERatio)
	assert.Equal(t, 0.9, info.Beta)
	assert.Zero(t, info.DividendYield)
	assert.Equal(t, "INR", info.Currency)
}

func TestCached_ServesRepeatFromCache(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	defer srv.Close()

	c := NewCached(newTestClient(srv.URL), cache.NewTTLCache(), time.Minute, nil)
	ctx := context.Background()

	first, err := c.History(ctx, "RELIANCE.NS", "1y")
	require.NoError(t, err)
	calls := atomic.LoadInt32(&hits)
	assert.Equal(t, int32(2), calls, "eod + metadata")

	second, err := c.History(ctx, "RELIANCE.NS", "1y")
	require.NoError(t, err)
	assert.Equal(t, calls, atomic.LoadInt32(&hits))

	require.Len(t, second.Bars, len(first.Bars))
	assert.True(t, math.IsNaN(second.Bars[1].Close), "missing values survive the cache")
	assert.Equal(t, first.Bars[2], second.Bars[2])
	assert.Equal(t, first.Meta, second.Meta)

	_, err = c.History(ctx, "EMPTY", "1y")
	assert.ErrorIs(t, err, domrepo.ErrNoData)
}
