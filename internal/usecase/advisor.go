package usecase

import (
	"context"
	"strings"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	domsvc "Monexa/internal/domain/service"
	"Monexa/internal/services/projection"
	applogger "Monexa/pkg/logger"
	"Monexa/pkg/util"
)

// Advisor produces advice text. It never fails.
type Advisor interface {
	Advise(ctx context.Context, p models.Profile, financialCtx, newsCtx string) models.Advice
}

// AdvisorUseCase assembles market data, news and projections into an advice plan.
type AdvisorUseCase struct {
	market  *MarketUseCase
	news    domsvc.NewsContext
	advisor Advisor
	log     *applogger.Logger
}

// NewAdvisorUseCase creates the use case.
func NewAdvisorUseCase(market *MarketUseCase, news domsvc.NewsContext, advisor Advisor, log *applogger.Logger) *AdvisorUseCase {
	if log == nil {
		log = applogger.NewNop()
	}
	return &AdvisorUseCase{market: market, news: news, advisor: advisor, log: log}
}

// SelectTickers returns the risk-tier list for the profile's market, with the searched
// symbol first and custom tickers appended, deduplicated in first-seen order.
func SelectTickers(p models.Profile) []string {
	market := models.NormalizeMarket(p.Market)
	var out []string

	if s := strings.ToUpper(strings.TrimSpace(p.SearchSymbol)); s != "" {
		if market == models.MarketIndia && !strings.HasSuffix(s, ".NS") {
			s += ".NS"
		}
		out = append(out, s)
	}
	out = append(out, models.RiskTierStocks(market, p.RiskTolerance)...)
	out = append(out, p.CustomTickers...)
	return util.NormalizeSymbols(out)
}

// Plan builds the full advice response for a profile.
func (u *AdvisorUseCase) Plan(ctx context.Context, p models.Profile) models.Plan {
	tickers := SelectTickers(p)
	res := models.AggregateResult{}
	if len(tickers) > 0 {
		res = u.market.Tickers(ctx, tickers, domrepo.Period1y, "")
	}
	financialCtx := FinancialContext(res, tickers)

	newsCtx := u.news.Context(ctx)
	advice := u.advisor.Advise(ctx, p, financialCtx, newsCtx)

	u.log.Info("advice plan built",
		applogger.String("risk", p.RiskTolerance),
		applogger.String("market", p.Market),
		applogger.Int("tickers", len(tickers)),
		applogger.Int("metrics", len(res)),
		applogger.String("source", advice.Source),
	)

	for sym, m := range res {
		res[sym] = m.Snapshot()
	}
	return models.Plan{
		Profile:          p,
		Advice:           advice,
		Tickers:          tickers,
		Metrics:          res,
		FinancialContext: financialCtx,
		NewsContext:      newsCtx,
		Projections:      projection.ProjectAll(p.MonthlyAmount, p.Years),
	}
}
