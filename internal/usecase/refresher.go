package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"Monexa/internal/domain/models"
	domrepo "Monexa/internal/domain/repository"
	applogger "Monexa/pkg/logger"
)

// DefaultRefreshSchedule is used when no schedule is configured.
const DefaultRefreshSchedule = "@every 15m"

// Refresher periodically aggregates the top stocks of each market to keep caches warm
// and snapshots flowing.
type Refresher struct {
	market  *MarketUseCase
	markets []string
	timeout time.Duration
	cron    *cron.Cron
	log     *applogger.Logger

	mu      sync.Mutex
	started bool
}

// NewRefresher creates a refresher over the given markets.
func NewRefresher(market *MarketUseCase, markets []string, log *applogger.Logger) *Refresher {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Refresher{
		market:  market,
		markets: markets,
		timeout: 5 * time.Minute,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log,
	}
}

// Start schedules refreshes and starts the cron loop.
func (r *Refresher) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return err
	}

	r.mu.Lock()
	r.cron.Start()
	r.started = true
	r.mu.Unlock()

	r.log.Info("refresher started",
		applogger.String("schedule", schedule),
		applogger.Strings("markets", r.markets),
	)
	return nil
}

// Stop stops the cron loop and waits for a running refresh to finish or ctx to expire.
func (r *Refresher) Stop(ctx context.Context) {
	r.mu.Lock()
	started := r.started
	r.started = false
	r.mu.Unlock()
	if !started {
		return
	}
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
	r.log.Info("refresher stopped")
}

// RunNow triggers an immediate refresh in the background.
func (r *Refresher) RunNow() {
	r.log.Info("triggering immediate refresh")
	go r.run()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.Refresh(ctx)
}

// Refresh aggregates every configured market once and returns the symbol count per market.
func (r *Refresher) Refresh(ctx context.Context) map[string]int {
	start := time.Now()
	out := make(map[string]int, len(r.markets))
	for _, m := range r.markets {
		res, err := r.market.TopStocks(ctx, m, domrepo.Period1y)
		if err != nil {
			r.log.Warn("refresh skipped market", applogger.String("market", m), applogger.Error(err))
			continue
		}
		out[models.NormalizeMarket(m)] = len(res)
	}
	r.log.Info("refresh completed",
		applogger.Any("symbols", out),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out
}
