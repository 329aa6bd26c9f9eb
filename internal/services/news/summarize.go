package news

import (
	"fmt"
	"strings"
	"unicode"

	"Monexa/internal/domain/models"
	"Monexa/pkg/util"
)

const (
	summaryHeader   = "Current Market Context and News Analysis:\n"
	NoNewsRetrieved = "No financial news could be retrieved at this time."
	NoInsights      = "No substantial financial insights could be extracted from the news at this time."
	NoRecentNews    = "No recent financial news available."
)

var keyTerms = []string{
	"market", "stock", "index", "growth", "decline", "percent", "rate",
	"economy", "inflation", "recession", "investors", "trading", "price",
	"earnings", "forecast", "outlook", "analysis",
}

var movementTerms = []string{"up", "down", "rose", "fell", "increased", "decreased"}

// KeyPoints keeps the sentences of text that mention a financial key term.
func KeyPoints(text string) string {
	var keep []string
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if containsAny(strings.ToLower(s), keyTerms) {
			keep = append(keep, s)
		}
	}
	return strings.Join(keep, ". ")
}

// Summarize renders articles as numbered insights for the advice prompt.
func Summarize(articles []models.Article) string {
	if len(articles) == 0 {
		return NoNewsRetrieved
	}

	lines := []string{summaryHeader}
	for i, a := range articles {
		content := fmt.Sprintf("%s. %s", strings.TrimSpace(a.Title), strings.TrimSpace(a.Description))
		points := KeyPoints(content)
		if points == "" {
			continue
		}
		lines = append(lines,
			fmt.Sprintf("%d. Key Market Insight (%s, %s):", i+1, a.Source, util.FormatDate(a.PublishedAt)),
			"   "+points,
		)
		if nums := relevantNumbers(content); len(nums) > 0 {
			lines = append(lines, "   Relevant Metrics: "+strings.Join(nums, ", "))
		}
		lines = append(lines, "")
	}

	if len(lines) == 1 {
		return NoInsights
	}
	return strings.Join(lines, "\n")
}

func relevantNumbers(content string) []string {
	moved := containsAny(strings.ToLower(content), movementTerms)
	var out []string
	for _, w := range strings.Fields(content) {
		if !strings.ContainsFunc(w, unicode.IsDigit) {
			continue
		}
		if moved || strings.ContainsAny(w, "%$") {
			out = append(out, w)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
