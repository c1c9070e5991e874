package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	applogger "BizPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Runner is a long-lived component that serves until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

type named[T any] struct {
	name string
	v    T
}

// App runs every registered Runner until a signal arrives or one of them fails,
// then closes the registered resources in reverse order.
type App struct {
	logger  *applogger.Logger
	runners []named[Runner]
	closers []named[io.Closer]
	signals []os.Signal
}

type Option func(*App)

// WithRunner adds a component; a nil runner is skipped.
func WithRunner(name string, r Runner) Option {
	return func(a *App) {
		if r != nil {
			a.runners = append(a.runners, named[Runner]{name: name, v: r})
		}
	}
}

// WithCloser registers a resource released after every runner returned.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, named[io.Closer]{name: name, v: c})
		}
	}
}

// WithSignals replaces the default SIGINT/SIGTERM set.
func WithSignals(sig ...os.Signal) Option {
	return func(a *App) { a.signals = sig }
}

func New(logger *applogger.Logger, opts ...Option) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	a := &App{
		logger:  logger,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run blocks until ctx is cancelled, a signal arrives, or a runner fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range a.runners {
		g.Go(func() error {
			a.logger.Info("component started", applogger.String("component", r.name))
			err := r.v.Run(gctx)
			if err != nil {
				a.logger.Error("component failed", applogger.String("component", r.name), applogger.Error(err))
			} else {
				a.logger.Info("component stopped", applogger.String("component", r.name))
			}
			return err
		})
	}

	<-gctx.Done()
	a.logger.Info("shutting down")
	err := g.Wait()
	a.close()
	a.logger.Info("shutdown complete")
	return err
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.v.Close(); err != nil {
			a.logger.Warn("close failed", applogger.String("resource", c.name), applogger.Error(err))
		}
	}
}
