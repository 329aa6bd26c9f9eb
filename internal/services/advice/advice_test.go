package advice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"Monexa/internal/domain/models"
	"Monexa/internal/services/currency"
	"Monexa/internal/services/projection"
)

var profile = models.Profile{
	InvestmentType: "Stocks",
	RiskTolerance:  models.RiskLow,
	MonthlyAmount:  5000,
	Years:          5,
	Market:         models.MarketIndia,
	CustomTickers:  []string{"INFY.NS"},
}

const financialCtx = "Market Data:\n" +
	"HDFCBANK.NS: Current=$1650.00, Change=12.5%, 52w-High=$1800.00\n" +
	"INFY.NS: Current=$1500.00, Change=-3.2%, 52w-High=$1900.00\n" +
	"RELIANCE.NS: Current=$2900.00, Change=8.0%, 52w-High=$3100.00\n" +
	"TCS.NS: Current=$3800.00, Change=4.1%, 52w-High=$4200.00"

type stubGen struct {
	text   string
	err    error
	called bool
	ctx    context.Context
}

func (s *stubGen) Generate(ctx context.Context, _ models.Profile, _, _ string) (string, error) {
	s.called = true
	s.ctx = ctx
	return s.text, s.err
}

func TestAdvisor_UsesGenerator(t *testing.T) {
	gen := &stubGen{text: "## Plan"}
	a := NewAdvisor(gen, time.Second, nil)

	got := a.Advise(context.Background(), profile, financialCtx, "news")
	assert.Equal(t, models.Advice{Text: "## Plan", Source: models.AdviceSourceGemini}, got)
	_, hasDeadline := gen.ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestAdvisor_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGen
	}{
		{"generator error", &stubGen{err: errors.New("quota exceeded")}},
		{"blank text", &stubGen{text: "  \n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAdvisor(tt.gen, 0, nil).Advise(context.Background(), profile, financialCtx, "news")
			assert.True(t, tt.gen.called)
			assert.Equal(t, models.AdviceSourceFallback, got.Source)
			assert.Equal(t, Fallback(profile, financialCtx, "news"), got.Text)
		})
	}

	got := NewAdvisor(nil, 0, nil).Advise(context.Background(), profile, financialCtx, "news")
	assert.Equal(t, models.AdviceSourceFallback, got.Source)
}

func TestFallback_Sections(t *testing.T) {
	news := "Current Market Context and News Analysis:\n\n1. Key Market Insight (Reuters, 2025-05-09):\n   Markets rose"
	text := Fallback(profile, financialCtx, news)

	sections := []string{
		"### Investment Analysis Summary",
		"#### Your Investment Profile",
		"#### Market Analysis",
		"**Conservative Strategy Recommended**",
		"#### Current Market Opportunities",
		"#### Recent Market Developments",
		"#### Potential Future Outcomes",
		"#### Next Steps:",
		"*Note:",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(text, s)
		require.GreaterOrEqual(t, idx, 0, "missing %q", s)
		assert.Greater(t, idx, last, "%q out of order", s)
		last = idx
	}

	assert.Contains(t, text, "- **Risk Level**: Low Risk")
	assert.Contains(t, text, "- **Preferred Market**: Indian Market")
	assert.Contains(t, text, "- **HDFCBANK.NS**: Current=$1650.00, Change=12.5%, 52w-High=$1800.00")
	assert.Contains(t, text, "- **RELIANCE.NS**:")
	assert.NotContains(t, text, "TCS.NS", "only the first three tickers are listed")

	moderate := currency.FormatAmount(projection.FutureValue(5000, 0.12, 5), "INR")
	assert.Contains(t, text, "- Moderate Estimate (12% p.a.): "+moderate)
	assert.Contains(t, text, "- Conservative Estimate (8% p.a.): ")
	assert.Contains(t, text, "- Aggressive Estimate (15% p.a.): ")
}

func TestFallback_Variants(t *testing.T) {
	high := profile
	high.RiskTolerance = models.RiskHigh
	high.Market = models.MarketUS
	text := Fallback(high, "No market data available.", "Could not fetch news: error 500")

	assert.Contains(t, text, "**Growth Strategy Recommended**")
	assert.Contains(t, text, "US Market")
	assert.Contains(t, text, "$5,000.00")
	assert.NotContains(t, text, "#### Current Market Opportunities")
	assert.NotContains(t, text, "#### Recent Market Developments")

	medium := profile
	medium.RiskTolerance = models.RiskMedium
	long := strings.Repeat("x", 800)
	text = Fallback(medium, financialCtx, long)
	assert.Contains(t, text, "**Balanced Strategy Recommended**")
	assert.Contains(t, text, strings.Repeat("x", 500)+"...")
	assert.NotContains(t, text, strings.Repeat("x", 501))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(profile, financialCtx, "headline news")
	assert.Contains(t, p, "You are Monexa")
	assert.Contains(t, p, "- **Risk Tolerance**: Low")
	assert.Contains(t, p, "- **Specific Tickers of Interest**: INFY.NS")
	assert.Contains(t, p, "- **Recent Financial News Summary**: headline news")
	assert.Contains(t, p, "- **Relevant Data Points**: "+financialCtx)
	assert.Contains(t, p, "consult a human financial advisor")
}

func TestExtractText(t *testing.T) {
	_, err := extractText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	got, err := extractText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Hello "}, {Text: "world"}}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)
}
