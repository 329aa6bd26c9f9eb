package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	"Monexa/internal/service/ratelimit"
	"Monexa/internal/services/advice"
	"Monexa/internal/services/derive"
	"Monexa/internal/usecase"
)

type stubMarket struct{}

func (stubMarket) History(_ context.Context, symbol, _ string) (models.RawHistory, error) {
	if symbol == "MISSING" {
		return models.RawHistory{}, domrepo.ErrNoData
	}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 40)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = models.Bar{Date: day.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p, Volume: 10}
	}
	return models.RawHistory{Symbol: symbol, Bars: bars, Meta: models.TickerMeta{Name: symbol, Currency: "USD"}}, nil
}

func (stubMarket) Info(_ context.Context, symbol string) (models.TickerInfo, error) {
	if symbol != "AAPL" {
		return models.TickerInfo{}, domrepo.ErrNoData
	}
	return models.TickerInfo{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", Currency: "USD", MarketCap: 1e9}, nil
}

type stubNews struct{}

func (stubNews) Digest(context.Context) models.NewsDigest {
	return models.NewsDigest{Articles: []models.Article{{Title: "Rates hold"}}, Context: "1. Rates hold"}
}

func (stubNews) Context(context.Context) string { return "1. Rates hold" }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(opts ...HandlerOption) *echo.Echo {
	data := stubMarket{}
	agg := usecase.NewTickerAggregator(data, derive.NewDeriver(nil, nil))
	market := usecase.NewMarketUseCase(agg, data, nil, "USD")
	adv := usecase.NewAdvisorUseCase(market, stubNews{}, advice.NewAdvisor(nil, time.Second, nil), nil)

	e := echo.New()
	NewMarketsEchoHandler(nil, market, adv, stubNews{}, opts...).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestTickers(t *testing.T) {
	e := newTestServer()

	rec, env := do(t, e, http.MethodGet, "/api/tickers?symbols=aapl,MISSING,msft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.AggregateResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res, 2)
	assert.Equal(t, 139.0, res["AAPL"].CurrentPrice)
	assert.Equal(t, "USD", res["MSFT"].Currency)

	rec, env = do(t, e, http.MethodGet, "/api/tickers?symbols=MISSING", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, string(env.Data))
}

func TestTickers_Validation(t *testing.T) {
	e := newTestServer()

	rec, env := do(t, e, http.MethodGet, "/api/tickers", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_REQUIRED")

	rec, env = do(t, e, http.MethodGet, "/api/tickers?symbols=AAPL&period=3w", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_ONEOF")
}

func TestInfo(t *testing.T) {
	e := newTestServer()

	rec, env := do(t, e, http.MethodGet, "/api/tickers/AAPL/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info models.TickerInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "Apple Inc.", info.Name)

	rec, env = do(t, e, http.MethodGet, "/api/tickers/ZZZZ/info", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_NOT_FOUND")
}

func TestCompareAndChart(t *testing.T) {
	e := newTestServer()

	rec, env := do(t, e, http.MethodGet, "/api/tickers/compare?symbols=AAPL,MSFT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var series map[string][]models.SeriesPoint
	require.NoError(t, json.Unmarshal(env.Data, &series))
	require.Len(t, series["AAPL"], 40)
	assert.Equal(t, 100.0, series["AAPL"][0].Value)

	rec, _ = do(t, e, http.MethodGet, "/api/tickers/compare/chart?symbols=AAPL,MSFT&base=10000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec, _ = do(t, e, http.MethodGet, "/api/tickers/compare/chart?symbols=MISSING", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTopStocks(t *testing.T) {
	e := newTestServer()

	rec, env := do(t, e, http.MethodGet, "/api/markets/us/top", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.AggregateResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res, 10)

	rec, _ = do(t, e, http.MethodGet, "/api/markets/mars/top", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjection(t *testing.T) {
	e := newTestServer()

	rec, env := do(t, e, http.MethodGet, "/api/projection?monthly=5000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out projectionResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 5, out.Years)
	require.Len(t, out.Scenarios, 3)
	assert.InDelta(t, 408348.35, out.Scenarios[1].FutureValue, 0.01)

	rec, _ = do(t, e, http.MethodGet, "/api/projection?monthly=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, e, http.MethodGet, "/api/projection?monthly=100&years=51", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/projection/chart?monthly=100&years=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
}

func TestNews(t *testing.T) {
	rec, env := do(t, newTestServer(), http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "Rates hold")
}

func TestAdvice(t *testing.T) {
	e := newTestServer()

	body := []byte(`{"risk_tolerance":"Low","monthly_amount":5000,"market":"US","custom_tickers":["MISSING"]}`)
	rec, env := do(t, e, http.MethodPost, "/api/advice", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var plan models.Plan
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, models.AdviceSourceFallback, plan.Advice.Source)
	assert.Equal(t, "Stocks", plan.Profile.InvestmentType)
	assert.Equal(t, 5, plan.Profile.Years)
	assert.Equal(t, []string{"MSFT", "AAPL", "JNJ", "PG", "KO", "MISSING"}, plan.Tickers)
	assert.Len(t, plan.Metrics, 5)
	assert.True(t, strings.HasPrefix(plan.FinancialContext, "Market Data:\nAAPL: Current=$139.00"))
	assert.Equal(t, "1. Rates hold", plan.NewsContext)
	assert.Len(t, plan.Projections, 3)

	rec, env = do(t, e, http.MethodPost, "/api/advice", []byte(`{"risk_tolerance":"Extreme","monthly_amount":5000}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Data), "RiskTolerance")
}

func TestRateLimit(t *testing.T) {
	l := ratelimit.New().WithClock(func() time.Time { return time.Unix(0, 0) })
	e := newTestServer(WithRateLimit(l, 1, 1))

	rec, _ := do(t, e, http.MethodGet, "/api/projection?monthly=10", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, env := do(t, e, http.MethodGet, "/api/projection?monthly=10", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_RATE_LIMITED")
}
