package advice

import (
	"context"
	"strings"
	"time"

	"Monexa/internal/domain/models"
	domsvc "Monexa/internal/domain/service"
	applogger "Monexa/pkg/logger"
)

// Advisor produces advice from a remote generator and substitutes the local fallback on any failure.
type Advisor struct {
	gen     domsvc.AdviceGenerator
	timeout time.Duration
	log     *applogger.Logger
}

// NewAdvisor creates an Advisor. gen may be nil when no credentials are configured.
func NewAdvisor(gen domsvc.AdviceGenerator, timeout time.Duration, log *applogger.Logger) *Advisor {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Advisor{gen: gen, timeout: timeout, log: log}
}

// Advise never fails.
func (a *Advisor) Advise(ctx context.Context, p models.Profile, financialCtx, newsCtx string) models.Advice {
	if a.gen == nil {
		return a.fallback(p, financialCtx, newsCtx)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.gen.Generate(ctx, p, financialCtx, newsCtx)
	if err != nil {
		a.log.Warn("advice generation failed, using fallback", applogger.Error(err))
		return a.fallback(p, financialCtx, newsCtx)
	}
	if strings.TrimSpace(text) == "" {
		a.log.Warn("advice generation returned empty text, using fallback")
		return a.fallback(p, financialCtx, newsCtx)
	}
	return models.Advice{Text: text, Source: models.AdviceSourceGemini}
}

func (a *Advisor) fallback(p models.Profile, financialCtx, newsCtx string) models.Advice {
	return models.Advice{Text: Fallback(p, financialCtx, newsCtx), Source: models.AdviceSourceFallback}
}
