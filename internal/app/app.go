package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/estate-admin-backend/internal/config"
	"github.com/sandeepkv93/estate-admin-backend/internal/health"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
)

// BackgroundTask runs until ctx is cancelled.
type BackgroundTask interface {
	Run(ctx context.Context) error
}

// BootstrapFunc prepares data the server needs before accepting traffic.
type BootstrapFunc func(ctx context.Context) error

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	Background    []BackgroundTask
	Bootstrap     BootstrapFunc
	Readiness     *health.ProbeRunner

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	stopBackground func()
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	background []BackgroundTask,
	bootstrap BootstrapFunc,
	readiness *health.ProbeRunner,
	stop func(),
) *App {
	return &App{
		Config:                       cfg,
		Logger:                       logger,
		Server:                       server,
		Observability:                runtime,
		Background:                   background,
		Bootstrap:                    bootstrap,
		Readiness:                    readiness,
		ShutdownTimeout:              cfg.ShutdownTimeout,
		ShutdownHTTPDrainTimeout:     cfg.ShutdownHTTPDrainTimeout,
		ShutdownObservabilityTimeout: cfg.ShutdownObservabilityTimeout,
		stopBackground:               stop,
	}
}

func (a *App) StopBackgroundTasks() {
	if a.stopBackground != nil {
		a.stopBackground()
	}
}

// Run bootstraps, serves HTTP and runs background tasks until ctx is done or
// the server fails, then shuts everything down in order.
func (a *App) Run(ctx context.Context) error {
	if a.Bootstrap != nil {
		if err := a.Bootstrap(ctx); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}

	bgCtx, cancelBackground := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBackground()
	bg, bgCtx := errgroup.WithContext(bgCtx)
	for _, task := range a.Background {
		bg.Go(func() error { return task.Run(bgCtx) })
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	case err := <-serveErr:
		runErr = err
		if err != nil {
			a.Logger.Error("http server failed", "error", err)
		}
	}
	return errors.Join(runErr, a.shutdown(cancelBackground, bg))
}

func (a *App) shutdown(cancelBackground context.CancelFunc, bg *errgroup.Group) error {
	total := a.ShutdownTimeout
	if total <= 0 {
		total = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), total)
	defer cancel()

	var errs []error
	drain := a.ShutdownHTTPDrainTimeout
	if drain <= 0 || drain > total {
		drain = total
	}
	drainCtx, cancelDrain := context.WithTimeout(ctx, drain)
	if err := a.Server.Shutdown(drainCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	cancelDrain()

	cancelBackground()
	if err := bg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, fmt.Errorf("background tasks: %w", err))
	}
	a.StopBackgroundTasks()

	obsTimeout := a.ShutdownObservabilityTimeout
	if obsTimeout <= 0 || obsTimeout > total {
		obsTimeout = total
	}
	obsCtx, cancelObs := context.WithTimeout(ctx, obsTimeout)
	defer cancelObs()
	if err := a.Observability.Shutdown(obsCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown observability: %w", err))
	}
	a.Logger.Info("shutdown complete")
	return errors.Join(errs...)
}
