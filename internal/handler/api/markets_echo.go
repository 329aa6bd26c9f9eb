package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	domsvc "Monexa/internal/domain/service"
	apimetrics "Monexa/internal/service/metrics"
	"Monexa/internal/service/ratelimit"
	"Monexa/internal/services/charts"
	"Monexa/internal/services/projection"
	"Monexa/internal/usecase"
	xhttp "Monexa/pkg/http"
	xlogger "Monexa/pkg/logger"
)

const mimePNG = "image/png"

// MarketsEchoHandler serves ticker metrics, projections, news and advice over Echo.
type MarketsEchoHandler struct {
	logger  *xlogger.Logger
	market  *usecase.MarketUseCase
	advisor *usecase.AdvisorUseCase
	news    domsvc.NewsContext

	limiter  *ratelimit.Limiter
	capacity float64
	refill   float64
}

// HandlerOption configures a MarketsEchoHandler.
type HandlerOption func(*MarketsEchoHandler)

// WithRateLimit applies a per-client token bucket to every /api route.
func WithRateLimit(l *ratelimit.Limiter, capacity, refillPerSec float64) HandlerOption {
	return func(h *MarketsEchoHandler) {
		h.limiter = l
		h.capacity = capacity
		h.refill = refillPerSec
	}
}

func NewMarketsEchoHandler(
	logger *xlogger.Logger,
	market *usecase.MarketUseCase,
	advisor *usecase.AdvisorUseCase,
	news domsvc.NewsContext,
	opts ...HandlerOption,
) *MarketsEchoHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	apimetrics.Register()
	h := &MarketsEchoHandler{logger: logger, market: market, advisor: advisor, news: news}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *MarketsEchoHandler) RegisterRoutes(e *echo.Echo) {
	var mw []echo.MiddlewareFunc
	if h.limiter != nil {
		mw = append(mw, h.limiter.Middleware(h.capacity, h.refill))
	}
	g := e.Group("/api", mw...)
	g.GET("/tickers", h.Tickers)
	g.GET("/tickers/compare", h.Compare)
	g.GET("/tickers/compare/chart", h.CompareChart)
	g.GET("/tickers/:symbol/info", h.Info)
	g.GET("/markets/:market/top", h.TopStocks)
	g.GET("/projection", h.Projection)
	g.GET("/projection/chart", h.ProjectionChart)
	g.GET("/news", h.News)
	g.POST("/advice", h.Advice)
}

func (h *MarketsEchoHandler) Tickers(c echo.Context) error {
	start := time.Now()
	req := &models.TickersRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.market.Tickers(c.Request().Context(), xhttp.SplitCSV(req.Symbols), req.Period, req.Currency)
	apimetrics.AggregateSize.WithLabelValues("tickers").Observe(float64(len(res)))
	apimetrics.Observe("tickers", start, false)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketsEchoHandler) Info(c echo.Context) error {
	start := time.Now()
	req := &models.TickerInfoRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	info, err := h.market.Info(c.Request().Context(), req.Symbol)
	apimetrics.Observe("info", start, err != nil)
	if err != nil {
		if errors.Is(err, domrepo.ErrNoData) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for %s", req.Symbol).WithError(err))
		}
		h.logger.Error("info usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("market data unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, info)
}

func (h *MarketsEchoHandler) Compare(c echo.Context) error {
	start := time.Now()
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	series := h.market.Compare(c.Request().Context(), xhttp.SplitCSV(req.Symbols), req.Period, req.Base)
	apimetrics.Observe("compare", start, false)
	return xhttp.SuccessResponse(c, series)
}

func (h *MarketsEchoHandler) CompareChart(c echo.Context) error {
	start := time.Now()
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	series := h.market.Compare(c.Request().Context(), xhttp.SplitCSV(req.Symbols), req.Period, req.Base)
	png, err := charts.RenderComparison(series, req.Base)
	apimetrics.Observe("compare_chart", start, err != nil)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no comparable series").WithError(err))
	}
	return c.Blob(http.StatusOK, mimePNG, png)
}

func (h *MarketsEchoHandler) TopStocks(c echo.Context) error {
	start := time.Now()
	req := &models.TopStocksRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.market.TopStocks(c.Request().Context(), req.Market, req.Period)
	apimetrics.Observe("top_stocks", start, err != nil)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	apimetrics.AggregateSize.WithLabelValues("top_stocks").Observe(float64(len(res)))
	return xhttp.SuccessResponse(c, res)
}

type projectionResponse struct {
	Monthly   float64                     `json:"monthly"`
	Years     int                         `json:"years"`
	Scenarios []models.ScenarioProjection `json:"scenarios"`
}

func (h *MarketsEchoHandler) Projection(c echo.Context) error {
	req := &models.ProjectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, projectionResponse{
		Monthly:   req.Monthly,
		Years:     req.Years,
		Scenarios: projection.ProjectAll(req.Monthly, req.Years),
	})
}

func (h *MarketsEchoHandler) ProjectionChart(c echo.Context) error {
	start := time.Now()
	req := &models.ProjectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	png, err := charts.RenderProjection(projection.ProjectAll(req.Monthly, req.Years))
	apimetrics.Observe("projection_chart", start, err != nil)
	if err != nil {
		h.logger.Error("projection chart error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("chart rendering failed").WithError(err))
	}
	return c.Blob(http.StatusOK, mimePNG, png)
}

func (h *MarketsEchoHandler) News(c echo.Context) error {
	start := time.Now()
	digest := h.news.Digest(c.Request().Context())
	apimetrics.Observe("news", start, false)
	return xhttp.SuccessResponse(c, digest)
}

func (h *MarketsEchoHandler) Advice(c echo.Context) error {
	start := time.Now()
	req := &models.Profile{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	plan := h.advisor.Plan(c.Request().Context(), *req)
	apimetrics.Observe("advice", start, false)
	return xhttp.SuccessResponse(c, plan)
}
