// Package scheduler runs the background jobs of the catalog service.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// loop runs tick on every interval and on every manual trigger until stop is
// closed or ctx ends. A non-positive interval disables the ticker; a nil
// trigger channel is never selected.
type loop struct {
	interval time.Duration
	trigger  <-chan struct{}
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newLoop(interval time.Duration, trigger <-chan struct{}) *loop {
	return &loop{
		interval: interval,
		trigger:  trigger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (l *loop) run(ctx context.Context, onTick, onTrigger func(context.Context)) {
	var tick <-chan time.Time
	var ticker *time.Ticker
	if l.interval > 0 {
		ticker = time.NewTicker(l.interval)
		tick = ticker.C
	}

	go func() {
		defer close(l.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				onTick(ctx)
			case <-l.trigger:
				onTrigger(ctx)
			case <-l.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// stop ends the loop and waits for the running job to return. It is safe to
// call more than once, and before run.
func (l *loop) stop(started bool) {
	l.stopOnce.Do(func() { close(l.stopCh) })
	if started {
		<-l.done
	}
}
