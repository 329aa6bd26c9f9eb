package advice

import (
	"fmt"
	"strings"

	"Monexa/internal/domain/models"
	"Monexa/internal/services/currency"
)

// BuildPrompt renders the advisor prompt for a profile and the two context strings.
func BuildPrompt(p models.Profile, financialCtx, newsCtx string) string {
	tickers := "None"
	if len(p.CustomTickers) > 0 {
		tickers = strings.Join(p.CustomTickers, ", ")
	}

	var b strings.Builder
	b.WriteString("**Role**: You are Monexa, an expert AI Financial Advisor. Your tone is encouraging, clear, and professional. Avoid overly technical jargon.\n\n")

	b.WriteString("**User Profile**:\n")
	fmt.Fprintf(&b, "- **Investment Type**: %s\n", p.InvestmentType)
	fmt.Fprintf(&b, "- **Monthly Investment**: %s\n", currency.FormatAmount(p.MonthlyAmount, MarketCurrency(p.Market)))
	fmt.Fprintf(&b, "- **Time Horizon**: %d years\n", p.Years)
	fmt.Fprintf(&b, "- **Risk Tolerance**: %s\n", p.RiskTolerance)
	fmt.Fprintf(&b, "- **Preferred Market**: %s\n", MarketLabel(p.Market))
	fmt.Fprintf(&b, "- **Specific Tickers of Interest**: %s\n\n", tickers)

	b.WriteString("**Market Context**:\n")
	fmt.Fprintf(&b, "- **Recent Financial News Summary**: %s\n", newsCtx)
	fmt.Fprintf(&b, "- **Relevant Data Points**: %s\n\n", financialCtx)

	b.WriteString("**Your Task**:\n")
	b.WriteString("Based on the user's profile and the current market context, provide a personalized investment plan in Markdown with these sections:\n\n")
	b.WriteString("1. **Summary of Your Situation**: a short, friendly paragraph restating the profile.\n")
	b.WriteString("2. **Personalized Recommendations**: a diversified strategy matching the risk tolerance, naming asset types and why they fit.\n")
	b.WriteString("3. **Stocks to Watch**: using the data points and news above, suggest stocks worth researching, with reasons.\n")
	b.WriteString("4. **Next Steps**: 2-3 clear bulleted actions.\n\n")

	b.WriteString("**IMPORTANT**: Do not give definitive financial advice. Use phrases like \"You might consider...\", ")
	b.WriteString("\"A common strategy is...\", or \"It could be beneficial to look into...\". ")
	b.WriteString("Always remind the user to consult a human financial advisor.\n")
	return b.String()
}

// MarketCurrency returns the display currency for a market.
func MarketCurrency(market string) string {
	if models.NormalizeMarket(market) == models.MarketUS {
		return "USD"
	}
	return "INR"
}

// MarketLabel returns the human label for a market.
func MarketLabel(market string) string {
	switch models.NormalizeMarket(market) {
	case models.MarketUS:
		return "US Market"
	case models.MarketIndia:
		return "Indian Market"
	default:
		return market
	}
}
