package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Monexa/internal/service/cache"
)

type stubRates struct {
	rate  float64
	err   error
	calls int
}

func (s *stubRates) Rate(context.Context, string, string) (float64, error) {
	s.calls++
	return s.rate, s.err
}

func TestNormalizer_IdentitySkipsLookup(t *testing.T) {
	stub := &stubRates{rate: 2}
	n := NewNormalizer(stub, nil)

	amount := 1234.5678
	assert.Equal(t, amount, n.Convert(context.Background(), amount, "INR", "inr"))

	r, err := n.Rate(context.Background(), "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)
	assert.Zero(t, stub.calls)
}

func TestNormalizer_Convert(t *testing.T) {
	n := NewNormalizer(&stubRates{rate: 83.5}, nil)
	assert.InDelta(t, 835.0, n.Convert(context.Background(), 10, "USD", "INR"), 1e-9)
}

func TestNormalizer_FailureReturnsOriginal(t *testing.T) {
	tests := []struct {
		name  string
		rates *stubRates
	}{
		{"lookup error", &stubRates{err: errors.New("boom")}},
		{"zero rate", &stubRates{rate: 0}},
		{"negative rate", &stubRates{rate: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.rates, nil)
			assert.Equal(t, 42.0, n.Convert(context.Background(), 42, "USD", "INR"))
			_, err := n.Rate(context.Background(), "USD", "INR")
			assert.Error(t, err)
		})
	}

	n := NewNormalizer(nil, nil)
	assert.Equal(t, 7.0, n.Convert(context.Background(), 7, "USD", "EUR"))
}

func TestNativeCurrency(t *testing.T) {
	assert.Equal(t, "INR", NativeCurrency("RELIANCE.NS", "USD"))
	assert.Equal(t, "INR", NativeCurrency("tcs.bo", ""))
	assert.Equal(t, "EUR", NativeCurrency("SAP.XETRA", "eur"))
	assert.Equal(t, "USD", NativeCurrency("AAPL", ""))
}

func TestHTTPRateProvider_CachesPerBase(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/latest/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"INR":83.2,"EUR":0.92}}`))
	}))
	defer srv.Close()

	p := NewHTTPRateProvider(srv.URL, time.Second, cache.NewTTLCache(), time.Minute)
	ctx := context.Background()

	r, err := p.Rate(ctx, "usd", "INR")
	require.NoError(t, err)
	assert.Equal(t, 83.2, r)

	r, err = p.Rate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.92, r)

	_, err = p.Rate(ctx, "USD", "JPY")
	assert.ErrorIs(t, err, ErrRateNotFound)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPRateProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
	}))
	defer srv.Close()

	p := NewHTTPRateProvider(srv.URL, time.Second, nil, 0)
	_, err := p.Rate(context.Background(), "XXX", "INR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported-code")
}

func TestStaticAndChain(t *testing.T) {
	static := NewStaticRateProvider(map[string]float64{"usd:inr": 80, "EUR:INR": 0})
	ctx := context.Background()

	r, err := static.Rate(ctx, "USD", "INR")
	require.NoError(t, err)
	assert.Equal(t, 80.0, r)

	r, err = static.Rate(ctx, "INR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.0125, r, 1e-12)

	_, err = static.Rate(ctx, "EUR", "INR")
	assert.ErrorIs(t, err, ErrRateNotFound)

	chain := ChainRateProvider{static, &stubRates{rate: 90}}
	r, err = chain.Rate(ctx, "EUR", "INR")
	require.NoError(t, err)
	assert.Equal(t, 90.0, r)

	_, err = ChainRateProvider{static}.Rate(ctx, "EUR", "GBP")
	assert.ErrorIs(t, err, ErrRateNotFound)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatAmount(1234.5, "usd"))
	assert.Equal(t, "12.50 XYZ", FormatAmount(12.5, "XYZ"))
}
