package waiter

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

type WaitFunc func(ctx context.Context) error

// Waiter runs a set of functions until they all return, the first one fails
// or one of the configured signals arrives.
type Waiter interface {
	Add(fns ...WaitFunc)
	Wait() error
	Context() context.Context
	CancelFunc() context.CancelFunc
}

type waiterCfg struct {
	signals []os.Signal
}

type waiter struct {
	ctx      context.Context
	cancelFn context.CancelFunc
	fns      []WaitFunc
}

func NewWaiter(ctx context.Context, cancelFn context.CancelFunc, options ...Option) Waiter {
	cfg := &waiterCfg{
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, option := range options {
		option(cfg)
	}

	w := &waiter{
		fns: []WaitFunc{},
	}
	sigCtx, stop := signal.NotifyContext(ctx, cfg.signals...)
	w.ctx = sigCtx
	w.cancelFn = func() {
		stop()
		cancelFn()
	}

	return w
}

func (w *waiter) Add(fns ...WaitFunc) {
	w.fns = append(w.fns, fns...)
}

func (w *waiter) Wait() error {
	defer w.cancelFn()

	group, gCtx := errgroup.WithContext(w.ctx)
	for _, fn := range w.fns {
		fn := fn
		group.Go(func() error {
			return fn(gCtx)
		})
	}

	return group.Wait()
}

func (w *waiter) Context() context.Context {
	return w.ctx
}

func (w *waiter) CancelFunc() context.CancelFunc {
	return w.cancelFn
}
