package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/dudkstats/app/waiter"
	"github.com/leshachaplin/dudkstats/internal/config"
	"github.com/leshachaplin/dudkstats/internal/domain"
	"github.com/leshachaplin/dudkstats/internal/export"
	"github.com/leshachaplin/dudkstats/internal/filter"
	"github.com/leshachaplin/dudkstats/internal/remote"
	"github.com/leshachaplin/dudkstats/internal/service"
)

type LoadConfigFn func() (config.Config, error)

type Option func(*App)

// WithFetcher replaces the SSH fetcher built from the config.
func WithFetcher(fetcher service.Fetcher) Option {
	return func(a *App) {
		a.fetcher = fetcher
	}
}

func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

type App struct {
	cfg     config.Config
	logger  zerolog.Logger
	fetcher service.Fetcher
	stdout  io.Writer
	stderr  io.Writer
}

func New(loadConfigFn LoadConfigFn, opts ...Option) (*App, error) {
	cfg, err := loadConfigFn()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = NewZeroLogger(a.stderr, Level(cfg.LogLevel))

	if a.fetcher == nil {
		fetcher, err := remote.New(cfg.Remote, a.logger.With().Str("component", "remote").Logger())
		if err != nil {
			return nil, fmt.Errorf("setup remote fetcher: %w", err)
		}
		a.fetcher = fetcher
	}

	return a, nil
}

// Run parses the filter arguments, collects the matching usage events, writes
// them to the output CSV and prints the aggregate report.
func (a *App) Run(ctx context.Context, args []string) error {
	criteria, err := filter.ParseArgs(args)
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(ctx)
	w := waiter.NewWaiter(ctx, cancelFn)

	var events []domain.UsageEvent
	svc := service.New(a.fetcher, a.logger.With().Str("component", "service").Logger())
	w.Add(func(ctx context.Context) error {
		var collectErr error
		events, collectErr = svc.Collect(ctx, criteria)
		return collectErr
	})
	if err = w.Wait(); err != nil {
		return err
	}
	a.logger.Info().Int("events", len(events)).Msg("Usage events collected.")

	if err = a.writeRows(events); err != nil {
		return err
	}

	return service.WriteSummary(a.stdout, a.cfg.OutputPath, service.Aggregate(events))
}

func (a *App) writeRows(events []domain.UsageEvent) (err error) {
	f, err := os.Create(a.cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", a.cfg.OutputPath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", a.cfg.OutputPath, closeErr)
		}
	}()

	if err = export.Rows(f, events); err != nil {
		return fmt.Errorf("export %s: %w", a.cfg.OutputPath, err)
	}
	return nil
}
