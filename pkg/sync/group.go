package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type GoFunc func(context.Context) error

// Group tracks a set of goroutines sharing one context.
type Group interface {
	// Go starts f unless the group context is already done, and reports
	// whether it did
	Go(f GoFunc) bool
	Cancel()
	// Wait blocks until every started goroutine returned and joins their errors
	Wait() error
	Errors() []error
}

type GroupOption func(*group)

// WithCancelIfError cancels the group context when a goroutine fails.
func WithCancelIfError(enable bool) GroupOption {
	return func(g *group) {
		g.cancelIfError = enable
	}
}

type group struct {
	ctx           context.Context
	cancel        context.CancelFunc
	cancelIfError bool

	mu   sync.Mutex
	wg   sync.WaitGroup
	errs []error
}

func NewGroup(ctx context.Context, opts ...GroupOption) Group {
	g := &group{}
	g.ctx, g.cancel = context.WithCancel(ctx)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *group) Go(f GoFunc) bool {
	g.mu.Lock()
	if g.ctx.Err() != nil {
		g.mu.Unlock()
		return false
	}
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.fail(fmt.Errorf("panic : %v", r))
			}
		}()
		if err := f(g.ctx); err != nil {
			g.fail(err)
		}
	}()
	return true
}

func (g *group) fail(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
	if g.cancelIfError {
		g.cancel()
	}
}

func (g *group) Cancel() {
	g.cancel()
}

func (g *group) Wait() error {
	// no Go is between its context check and Add once we hold the lock
	g.mu.Lock()
	g.mu.Unlock()
	g.wg.Wait()
	return errors.Join(g.Errors()...)
}

func (g *group) Errors() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]error(nil), g.errs...)
}
