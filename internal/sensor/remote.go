// Package sensor provides the capture/classification collaborator consumed
// by the integrity monitor. The production implementation is remote: the
// display layer runs the camera and the face classifier and streams
// detection reports over the proctor WebSocket; this side exposes them
// through the Sensor interface.
package sensor

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotAttached is returned by Detect when no display client is streaming.
var ErrNotAttached = errors.New("no proctor client attached")

// waitPoll is the cadence used while waiting for attach/first-report.
const waitPoll = 50 * time.Millisecond

// Remote is a Sensor fed by detection reports from the display layer.
// Reports older than staleAfter count as "no face": a client that stops
// reporting is indistinguishable from a candidate who left the frame.
type Remote struct {
	mu           sync.Mutex
	staleAfter   time.Duration
	attached     bool
	reported     bool
	lastDetected bool
	lastReport   time.Time
	released     bool
	releaseFn    func()
	clock        func() time.Time
}

// NewRemote creates a Remote sensor. releaseFn, if non-nil, is invoked once
// per Release to tell the display layer to stop the camera.
func NewRemote(staleAfter time.Duration, releaseFn func()) *Remote {
	if staleAfter <= 0 {
		staleAfter = 3 * time.Second
	}
	return &Remote{
		staleAfter: staleAfter,
		releaseFn:  releaseFn,
		clock:      time.Now,
	}
}

// Attach marks a display client as connected.
func (r *Remote) Attach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached = true
	r.released = false
}

// Detach marks the display client as gone and invalidates pending reports.
func (r *Remote) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached = false
	r.reported = false
}

// Report records one face-presence observation from the display layer.
func (r *Remote) Report(detected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reported = true
	r.lastDetected = detected
	r.lastReport = r.clock()
}

// Prime waits until a display client is attached (the client loads the
// classifier before connecting). Idempotent.
func (r *Remote) Prime(ctx context.Context) error {
	return r.waitFor(ctx, func() bool {
		return r.attached
	})
}

// Acquire waits until the client's camera is streaming, observed as the
// first detection report on this attachment.
func (r *Remote) Acquire(ctx context.Context) error {
	return r.waitFor(ctx, func() bool {
		return r.reported
	})
}

// Release tells the display layer to stop the camera. Idempotent.
func (r *Remote) Release() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	r.reported = false
	fn := r.releaseFn
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Detect returns the latest reported observation. Stale or missing reports
// count as "no face"; a missing client is an error.
func (r *Remote) Detect(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.attached {
		return false, ErrNotAttached
	}
	if !r.reported || r.clock().Sub(r.lastReport) > r.staleAfter {
		return false, nil
	}
	return r.lastDetected, nil
}

// waitFor polls the predicate until it holds or the context ends.
func (r *Remote) waitFor(ctx context.Context, pred func() bool) error {
	for {
		r.mu.Lock()
		ok := pred()
		r.mu.Unlock()
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitPoll):
		}
	}
}
