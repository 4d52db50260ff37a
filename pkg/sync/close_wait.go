package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// WaitCloser ties the lifetime of concurrent executions to one close
// event and remembers the error that caused it.
type WaitCloser interface {
	Close(error) bool
	IsClosed() bool
	Error() error

	Context() context.Context
	Done() WaitChannel

	// Sleep blocks until d elapsed or the closer is closed, reports
	// whether the full duration elapsed
	Sleep(d time.Duration) bool
}

type waitCloser struct {
	sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	closed  atomic.Bool
	stopFun func(error)
	err     error
}

type WaitChannel <-chan struct{}

func NewWaitCloser(stopFun func(error)) WaitCloser {
	return NewWaitCloserFromContext(context.Background(), stopFun)
}

// NewWaitCloserFromContext closes the returned closer with pctx.Err() once
// pctx is done. Done fires only after that error is recorded.
func NewWaitCloserFromContext(pctx context.Context, stopFun func(error)) WaitCloser {
	ctx, cancel := context.WithCancel(context.Background())
	wc := &waitCloser{
		ctx:     ctx,
		cancel:  cancel,
		stopFun: stopFun,
	}
	if pctx.Done() == nil {
		return wc
	}

	SafeGo(func() {
		select {
		case <-pctx.Done():
			wc.Close(pctx.Err())
		case <-wc.Done():
		}
	}, nil)

	return wc
}

func (w *waitCloser) IsClosed() bool {
	return w.closed.Load()
}

func (w *waitCloser) Sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	select {
	case <-w.ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return false
	case <-timer.C:
		return true
	}
}

func (w *waitCloser) Done() WaitChannel {
	return w.ctx.Done()
}

func (w *waitCloser) Error() (err error) {
	w.RLock()
	err = w.err
	w.RUnlock()
	return
}

func (w *waitCloser) Close(err error) bool {
	if w.closed.CompareAndSwap(false, true) {
		w.Lock()
		w.err = err
		w.Unlock()
		w.cancel()
		if w.stopFun != nil {
			w.stopFun(err)
		}
		return true
	}

	return false
}

func (w *waitCloser) Context() context.Context {
	return w.ctx
}
