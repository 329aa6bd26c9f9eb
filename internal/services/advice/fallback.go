package advice

import (
	"fmt"
	"strings"

	"Monexa/internal/domain/models"
	"Monexa/internal/services/currency"
	"Monexa/internal/services/projection"
)

const (
	marketDataHeader = "Market Data:"
	newsExcerptLen   = 500
	maxOpportunities = 3
)

var strategies = map[string]string{
	models.RiskLow: `**Conservative Strategy Recommended**
- Focus on blue-chip companies with stable dividends
- Consider large-cap mutual funds
- Maintain 70-30 split between equity and debt
- Look for companies with strong fundamentals and consistent performance
`,
	models.RiskMedium: `**Balanced Strategy Recommended**
- Mix of growth stocks and value stocks
- Consider mid-cap mutual funds for growth potential
- Maintain 60-40 split between equity and growth stocks
- Look for companies showing steady growth and innovation
`,
	models.RiskHigh: `**Growth Strategy Recommended**
- Focus on high-growth potential stocks
- Consider small-cap and sector-specific funds
- Higher allocation to emerging sectors
- Look for companies with disruptive potential
`,
}

// Fallback builds the locally generated plan used when the remote generator is unavailable.
func Fallback(p models.Profile, financialCtx, newsCtx string) string {
	code := MarketCurrency(p.Market)
	amount := currency.FormatAmount(p.MonthlyAmount, code)

	var b strings.Builder
	b.WriteString("### Investment Analysis Summary\n\n")

	b.WriteString("#### Your Investment Profile\n")
	fmt.Fprintf(&b, "- **Investment Type**: %s\n", p.InvestmentType)
	fmt.Fprintf(&b, "- **Risk Level**: %s Risk\n", p.RiskTolerance)
	fmt.Fprintf(&b, "- **Monthly Investment**: %s\n", amount)
	fmt.Fprintf(&b, "- **Time Horizon**: %d years\n", p.Years)
	fmt.Fprintf(&b, "- **Preferred Market**: %s\n\n", MarketLabel(p.Market))

	b.WriteString("#### Market Analysis\n")
	b.WriteString("Based on current market conditions and your risk profile, here's our analysis:\n\n")
	strategy, ok := strategies[p.RiskTolerance]
	if !ok {
		strategy = strategies[models.RiskHigh]
	}
	b.WriteString(strategy)

	if opps := opportunities(financialCtx); len(opps) > 0 {
		b.WriteString("\n#### Current Market Opportunities\n")
		for _, o := range opps {
			fmt.Fprintf(&b, "- **%s**: %s\n", o[0], o[1])
		}
	}

	if newsCtx != "" && !strings.Contains(newsCtx, "error") {
		b.WriteString("\n#### Recent Market Developments\n")
		b.WriteString(truncate(newsCtx, newsExcerptLen))
		b.WriteString("...\n")
	}

	b.WriteString("\n#### Potential Future Outcomes\n")
	fmt.Fprintf(&b, "Based on your monthly investment of %s over %d years:\n\n", amount, p.Years)
	for _, s := range models.Scenarios {
		fv := projection.FutureValue(p.MonthlyAmount, s.AnnualRate, p.Years)
		fmt.Fprintf(&b, "- %s Estimate (%.0f%% p.a.): %s\n", scenarioTitle(s.Label), s.AnnualRate*100, currency.FormatAmount(fv, code))
	}

	b.WriteString("\n#### Next Steps:\n")
	b.WriteString("1. Start with a diversified portfolio based on your risk profile\n")
	fmt.Fprintf(&b, "2. Set up automatic monthly investments of %s\n", amount)
	b.WriteString("3. Review and rebalance your portfolio quarterly\n\n")
	b.WriteString("*Note: These are algorithmic recommendations based on historical data and market analysis. ")
	b.WriteString("Please consult with a qualified financial advisor before making investment decisions.*\n")
	return b.String()
}

// opportunities returns up to three (ticker, data) pairs from a "Market Data:" context.
func opportunities(financialCtx string) [][2]string {
	if !strings.Contains(financialCtx, marketDataHeader) {
		return nil
	}
	lines := strings.Split(financialCtx, "\n")
	var out [][2]string
	for _, line := range lines[1:] {
		ticker, data, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(ticker), strings.TrimSpace(data)})
		if len(out) == maxOpportunities {
			break
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func scenarioTitle(label string) string {
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
