package countdown

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Clock abstracts time.Now so tickers can be driven deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Ticker recomputes the remaining time on a fixed cadence and hands every
// result to Publish. It is owned by whoever calls Start and must be stopped
// by the same owner.
type Ticker struct {
	Target   time.Time
	Clock    Clock
	Interval time.Duration
	Publish  func(Remaining)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches the loop. Publish is called once immediately and then every
// Interval. Calling Start on a running ticker does nothing.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	if t.Clock == nil {
		t.Clock = RealClock{}
	}
	if t.Interval <= 0 {
		t.Interval = time.Second
	}

	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go t.loop(ctx, t.done)
	slog.Info("countdown ticker started", "target", t.Target, "interval", t.Interval)
}

// Stop cancels the loop and waits for it to exit. It is safe to call before
// Start and more than once; a stopped ticker can be started again.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("countdown ticker stopped")
}

// Running reports whether the loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Ticker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	t.tick()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *Ticker) tick() {
	if t.Publish == nil {
		return
	}
	t.Publish(Compute(t.Target, t.Clock.Now()))
}
