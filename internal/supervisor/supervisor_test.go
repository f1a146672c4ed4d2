package supervisor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/teamcollar/stem-assessment/internal/assessment"
	"github.com/teamcollar/stem-assessment/internal/notify"
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
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []string
}

func (r *recordingNotifier) Notify(title, message string, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, title+": "+message)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

func (r *recordingNotifier) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return ""
	}
	return r.notices[len(r.notices)-1]
}

func newFixture() (*assessment.Store, *fakeClock, *recordingNotifier, *Supervisor) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := assessment.New(assessment.Options{
		TotalTestTime: time.Hour,
		SectionTime:   15 * time.Minute,
		Clock:         clock.Now,
		Log:           zerolog.Nop(),
	})
	notifier := &recordingNotifier{}
	return store, clock, notifier, New(store, notifier, time.Second, zerolog.Nop())
}

func TestTickIgnoresUnstartedTest(t *testing.T) {
	store, clock, notifier, sup := newFixture()

	clock.Advance(20 * time.Minute)
	sup.Tick()

	if notifier.count() != 0 {
		t.Fatalf("expected no notifications before start, got %d", notifier.count())
	}
	if store.TestSubmitted() {
		t.Fatal("unstarted test must not be submitted")
	}
}

func TestTickBeforeExpiryIsQuiet(t *testing.T) {
	store, clock, notifier, sup := newFixture()
	store.StartTest()

	clock.Advance(14 * time.Minute)
	sup.Tick()

	if notifier.count() != 0 {
		t.Fatalf("expected no notifications before expiry, got %d", notifier.count())
	}
	if section, _ := store.CurrentSection(); section.ID != 1 {
		t.Fatalf("cursor moved to section %d before expiry", section.ID)
	}
}

func TestExpiryAdvancesSectionOnce(t *testing.T) {
	store, clock, notifier, sup := newFixture()
	store.StartTest()

	clock.Advance(15 * time.Minute)
	sup.Tick()

	if section, _ := store.CurrentSection(); section.ID != 2 {
		t.Fatalf("expected section 2 after expiry, got %d", section.ID)
	}
	if got := notifier.last(); got != "Time's up!: Moving to the next section." {
		t.Fatalf("unexpected notification %q", got)
	}

	// The section clock was restamped, so a tick in the same instant must
	// not fire a second submission.
	sup.Tick()
	if notifier.count() != 1 {
		t.Fatalf("expected a single notification, got %d", notifier.count())
	}
	if section, _ := store.CurrentSection(); section.ID != 2 {
		t.Fatalf("second tick moved cursor to section %d", section.ID)
	}
}

func TestLastSectionExpirySubmitsTest(t *testing.T) {
	store, clock, notifier, sup := newFixture()
	store.StartTest()

	for i := 0; i < 4; i++ {
		clock.Advance(15 * time.Minute)
		sup.Tick()
	}

	if !store.TestSubmitted() {
		t.Fatal("expected test submitted after every section expired")
	}
	if got := notifier.last(); got != "Time's up!: The test has been submitted." {
		t.Fatalf("unexpected notification %q", got)
	}

	count := notifier.count()
	clock.Advance(15 * time.Minute)
	sup.Tick()
	if notifier.count() != count {
		t.Fatal("tick after submission produced a notification")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	_, _, _, sup := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}
}
