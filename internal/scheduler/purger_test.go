package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	purged  int
	err     error
	calls   chan struct{}
}

func (f *fakePurger) PurgeHiddenBefore(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	f.cutoffs = append(f.cutoffs, cutoff)
	f.mu.Unlock()
	if f.calls != nil {
		select {
		case f.calls <- struct{}{}:
		default:
		}
	}
	return f.purged, f.err
}

func (f *fakePurger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestPurger_Collect(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	fake := &fakePurger{purged: 2}

	p := NewPurger(fake, logger.Nop(), time.Hour, 30*24*time.Hour)
	p.now = func() time.Time { return now }

	purged, err := p.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if purged != 2 {
		t.Errorf("Collect() purged %d, want 2", purged)
	}

	want := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	if got := fake.cutoffs[0]; !got.Equal(want) {
		t.Errorf("cutoff = %v, want %v", got, want)
	}
}

func TestPurger_DefaultThreshold(t *testing.T) {
	p := NewPurger(&fakePurger{}, logger.Nop(), time.Hour, 0)
	if p.threshold != DefaultPurgeThreshold {
		t.Errorf("threshold = %v, want %v", p.threshold, DefaultPurgeThreshold)
	}
}

func TestPurger_CollectError(t *testing.T) {
	fake := &fakePurger{purged: 1, err: errors.New("boom")}
	p := NewPurger(fake, logger.Nop(), time.Hour, time.Hour)

	purged, err := p.Collect(context.Background())
	if err == nil {
		t.Fatal("Collect() should surface the purge error")
	}
	if purged != 1 {
		t.Errorf("Collect() purged %d, want 1", purged)
	}
}

func TestPurger_StartRunsPeriodically(t *testing.T) {
	fake := &fakePurger{calls: make(chan struct{}, 1)}
	p := NewPurger(fake, logger.Nop(), 10*time.Millisecond, time.Hour)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer p.Stop()

	// The initial pass is synchronous; wait for one more from the ticker.
	<-fake.calls
	deadline := time.After(2 * time.Second)
	for fake.count() < 2 {
		select {
		case <-fake.calls:
		case <-deadline:
			t.Fatalf("purger ran %d times, want at least 2", fake.count())
		}
	}
}

func TestPurger_StopIsIdempotent(t *testing.T) {
	p := NewPurger(&fakePurger{}, logger.Nop(), time.Hour, time.Hour)
	p.Stop()
	p.Stop()

	p = NewPurger(&fakePurger{}, logger.Nop(), time.Hour, time.Hour)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	p.Stop()
	p.Stop()
}
