package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "Monexa/internal/domain/repository"
	"Monexa/internal/service/ratelimit"
	"Monexa/internal/usecase"
	"Monexa/pkg/config"
	xhttp "Monexa/pkg/http"
	applogger "Monexa/pkg/logger"
)

type closer struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	refresher  *usecase.Refresher
	publisher  domrepo.SnapshotPublisher
	limiter    *ratelimit.Limiter
	closers    []closer

	stopPruner context.CancelFunc
	prunerDone chan struct{}
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	refresher *usecase.Refresher,
	publisher domrepo.SnapshotPublisher,
	limiter *ratelimit.Limiter,
) *App {
	if log == nil {
		log = applogger.NewNop()
	}
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		refresher:  refresher,
		publisher:  publisher,
		limiter:    limiter,
	}
}

// AddCloser registers an infrastructure client closed last on shutdown.
func (a *App) AddCloser(name string, c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, closer{name: name, c: c})
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.start(); err != nil {
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// start brings up the HTTP server, the limiter pruner and the refresher.
// A failure after the server is up tears down whatever already started.
func (a *App) start() error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	a.startPruner()

	if a.refresher != nil && a.cfg.Refresher.Enabled {
		if err := a.refresher.Start(a.cfg.Refresher.Schedule); err != nil {
			a.log.Error("refresher start error", applogger.Error(err))
			_ = a.shutdown()
			return err
		}
		if a.cfg.Refresher.RunOnStart {
			a.refresher.RunNow()
		}
	}
	return nil
}

func (a *App) startPruner() {
	if a.limiter == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.stopPruner = cancel
	a.prunerDone = done
	go func() {
		defer close(done)
		a.limiter.RunPruner(ctx, a.cfg.Server.RateLimit.PruneInterval, a.cfg.Server.RateLimit.Idle)
	}()
}

// shutdown stops the HTTP server, then background jobs, then infrastructure clients.
func (a *App) shutdown() error {
	timeout := a.httpServer.ShutdownTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.stopPruner != nil {
		a.stopPruner()
		<-a.prunerDone
		a.stopPruner = nil
	}

	if a.refresher != nil {
		a.refresher.Stop(ctx)
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("snapshot publisher close error", applogger.Error(err))
		}
	}

	for _, c := range a.closers {
		if err := c.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("client", c.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
