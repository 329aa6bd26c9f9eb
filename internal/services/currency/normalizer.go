package currency

import (
	"context"
	"fmt"
	"math"
	"strings"

	domrepo "Monexa/internal/domain/repository"
	applogger "Monexa/pkg/logger"
)

// DefaultCurrency is assumed when neither the symbol nor the provider names one.
const DefaultCurrency = "USD"

// Normalizer converts amounts between currencies through an injected RateProvider.
type Normalizer struct {
	rates domrepo.RateProvider
	log   *applogger.Logger
}

// NewNormalizer creates a Normalizer. A nil logger discards output.
func NewNormalizer(rates domrepo.RateProvider, log *applogger.Logger) *Normalizer {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Normalizer{rates: rates, log: log}
}

// Rate returns the multiplicative rate from -> to. Equal codes return 1 without a lookup.
func (n *Normalizer) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to = Code(from), Code(to)
	if from == to {
		return 1, nil
	}
	if n.rates == nil {
		return 0, fmt.Errorf("rate %s->%s: no rate provider", from, to)
	}
	r, err := n.rates.Rate(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("rate %s->%s: %w", from, to, err)
	}
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("rate %s->%s: invalid value %v", from, to, r)
	}
	return r, nil
}

// Convert returns amount expressed in `to`. Lookup failures return amount unchanged.
func (n *Normalizer) Convert(ctx context.Context, amount float64, from, to string) float64 {
	if Code(from) == Code(to) {
		return amount
	}
	r, err := n.Rate(ctx, from, to)
	if err != nil {
		n.log.Warn("currency conversion unavailable",
			applogger.String("from", from),
			applogger.String("to", to),
			applogger.Error(err),
		)
		return amount
	}
	return amount * r
}

// Code canonicalizes a currency code.
func Code(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}

// NativeCurrency infers the trading currency of a symbol.
// Indian exchange suffixes win, then the provider-reported code, then USD.
func NativeCurrency(symbol, reported string) string {
	s := strings.ToUpper(symbol)
	if strings.HasSuffix(s, ".NS") || strings.HasSuffix(s, ".BO") {
		return "INR"
	}
	if c := Code(reported); c != "" {
		return c
	}
	return DefaultCurrency
}
