package sensor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRemote(staleAfter time.Duration, releaseFn func()) (*Remote, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	r := NewRemote(staleAfter, releaseFn)
	r.clock = clock.Now
	return r, clock
}

func TestDetectRequiresClient(t *testing.T) {
	r, _ := newRemote(3*time.Second, nil)

	if _, err := r.Detect(context.Background()); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("expected ErrNotAttached, got %v", err)
	}

	r.Attach()
	r.Detach()
	if _, err := r.Detect(context.Background()); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("expected ErrNotAttached after detach, got %v", err)
	}
}

func TestDetectReflectsReports(t *testing.T) {
	r, _ := newRemote(3*time.Second, nil)
	r.Attach()

	// Attached but silent counts as absent, not as an error.
	detected, err := r.Detect(context.Background())
	if err != nil || detected {
		t.Fatalf("expected silent absence, got (%v, %v)", detected, err)
	}

	r.Report(true)
	if detected, _ := r.Detect(context.Background()); !detected {
		t.Fatal("expected presence after a positive report")
	}

	r.Report(false)
	if detected, _ := r.Detect(context.Background()); detected {
		t.Fatal("expected absence after a negative report")
	}
}

func TestStaleReportCountsAsAbsent(t *testing.T) {
	r, clock := newRemote(3*time.Second, nil)
	r.Attach()
	r.Report(true)

	clock.Advance(3 * time.Second)
	if detected, err := r.Detect(context.Background()); err != nil || !detected {
		t.Fatalf("report at the staleness boundary still counts, got (%v, %v)", detected, err)
	}

	clock.Advance(time.Second)
	if detected, err := r.Detect(context.Background()); err != nil || detected {
		t.Fatalf("expected stale report treated as absence, got (%v, %v)", detected, err)
	}

	r.Report(true)
	if detected, _ := r.Detect(context.Background()); !detected {
		t.Fatal("fresh report must clear staleness")
	}
}

func TestPrimeAndAcquireWaitForClient(t *testing.T) {
	r, _ := newRemote(3*time.Second, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := r.Prime(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline waiting for attach, got %v", err)
	}

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Prime(ctx); err != nil {
			done <- err
			return
		}
		done <- r.Acquire(ctx)
	}()

	time.Sleep(10 * time.Millisecond)
	r.Attach()
	r.Report(true)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("gate wait failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("prime/acquire never observed the client")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	calls := 0
	r, _ := newRemote(3*time.Second, func() { calls++ })
	r.Attach()
	r.Report(true)

	r.Release()
	r.Release()
	if calls != 1 {
		t.Fatalf("expected one camera-stop callback, got %d", calls)
	}

	// Release invalidates the pending report.
	if detected, err := r.Detect(context.Background()); err != nil || detected {
		t.Fatalf("expected absence after release, got (%v, %v)", detected, err)
	}

	// A fresh attachment arms the callback again.
	r.Attach()
	r.Report(true)
	r.Release()
	if calls != 2 {
		t.Fatalf("expected the callback rearmed after re-attach, got %d calls", calls)
	}
}
