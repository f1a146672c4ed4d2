package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamcollar/stem-assessment/internal/notify"
)

// Gate failures. Each maps to a specific start-sequence step so the display
// layer can report the exact reason.
var (
	ErrClassifierLoad = errors.New("face classifier failed to load")
	ErrCameraDenied   = errors.New("camera access denied")
	ErrNoFaceFound    = errors.New("no face detected during start check")
	ErrExclusiveMode  = errors.New("exclusive display mode unavailable")
)

// BeginSession runs the ordered start gate: prime the classifier, acquire
// the capture device, require one positive detection within a bounded
// number of polls, enter exclusive mode, then start the test. Each step is
// gated on the previous one; any failure or cancellation releases every
// already-acquired resource and leaves no state mutated.
func (m *Monitor) BeginSession(ctx context.Context) error {
	if m.store.TestSubmitted() {
		return errors.New("attempt already submitted")
	}

	if err := m.sensor.Prime(ctx); err != nil {
		m.notifier.Notify(
			"Face detection error",
			"Failed to load face detection models. Please ensure you have a stable internet connection.",
			notify.SeverityCritical,
		)
		return fmt.Errorf("%w: %v", ErrClassifierLoad, err)
	}

	if err := m.sensor.Acquire(ctx); err != nil {
		m.sensor.Release()
		m.notifier.Notify(
			"Camera access error",
			"Failed to access your camera. Please ensure camera permissions are granted and try again.",
			notify.SeverityCritical,
		)
		return fmt.Errorf("%w: %v", ErrCameraDenied, err)
	}

	if err := m.awaitFace(ctx); err != nil {
		m.sensor.Release()
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			m.notifier.Notify(
				"No face detected",
				"Position yourself in front of the camera and try again.",
				notify.SeverityCritical,
			)
		}
		return err
	}

	if err := m.display.EnterExclusive(ctx); err != nil {
		m.sensor.Release()
		m.notifier.Notify(
			"Fullscreen error",
			"Fullscreen mode is required to take the test.",
			notify.SeverityCritical,
		)
		return fmt.Errorf("%w: %v", ErrExclusiveMode, err)
	}

	m.mu.Lock()
	m.exclusive = true
	m.noFace = 0
	m.faceWarned = false
	m.graceDeadline = time.Time{}
	m.mu.Unlock()

	m.store.StartTest()
	m.notifier.Notify("Proctoring active", "Stay visible to the camera and keep the test in fullscreen.", notify.SeverityInfo)
	return nil
}

// awaitFace polls the sensor until a face is seen or the attempt budget is
// exhausted. Cancellation aborts between polls, so the capture device is
// released deterministically by the caller.
func (m *Monitor) awaitFace(ctx context.Context) error {
	for attempt := 0; attempt < m.cfg.GateDetectAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		detected, err := m.sensor.Detect(ctx)
		if err == nil && detected {
			return nil
		}
		if err != nil {
			m.log.Debug().Err(err).Int("attempt", attempt+1).Msg("Gate detection failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.cfg.PollInterval):
		}
	}
	return ErrNoFaceFound
}
