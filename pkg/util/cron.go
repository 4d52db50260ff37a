package util

import (
	"context"
	"time"

	usync "github.com/ikenchina/rootbar/pkg/sync"
)

// CronWithCtx calls fn every interval on its own goroutine until ctx is done.
// The first call happens one interval after the start.
func CronWithCtx(ctx context.Context, interval time.Duration, fn func()) {
	usync.SafeGo(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-ctx.Done():
				return
			}
		}
	}, nil)
}

// StopWithCtx runs stopFn and returns when it finished, panicked or ctx
// is done, whichever comes first.
func StopWithCtx(ctx context.Context, stopFn func()) {
	stopped := make(chan struct{})
	usync.SafeGo(func() {
		defer close(stopped)
		stopFn()
	}, nil)

	select {
	case <-stopped:
	case <-ctx.Done():
	}
}
