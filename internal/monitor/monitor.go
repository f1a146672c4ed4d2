// Package monitor supervises assessment integrity: face presence through a
// capture sensor, focus/visibility of the host surface, and exclusive
// display mode. Violations accumulate through warnings and escalate to a
// forced test submission through the same idempotent submit path the timing
// supervisor uses.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/teamcollar/stem-assessment/internal/assessment"
	"github.com/teamcollar/stem-assessment/internal/notify"
)

// Sensor is the capture device plus face-presence classifier. Prime and
// Release are idempotent; Detect is rate-limited by the monitor's polling
// cadence, not by the sensor.
type Sensor interface {
	Prime(ctx context.Context) error
	Acquire(ctx context.Context) error
	Release()
	Detect(ctx context.Context) (bool, error)
}

// Display controls exclusive (fullscreen) presentation mode on the display
// layer.
type Display interface {
	EnterExclusive(ctx context.Context) error
	ExitExclusive()
}

// Config carries the violation thresholds.
type Config struct {
	PollInterval       time.Duration // face-presence polling cadence
	MaxNoFaceTime      time.Duration // sustained absence before the warning
	GracePeriod        time.Duration // window to recover before termination
	MaxViolations      int           // shared focus/fullscreen allowance
	GateDetectAttempts int           // detection polls allowed during start gating
	ReenterDelay       time.Duration // delay before fullscreen re-entry
}

// Monitor tracks violation state for one attempt. Every entry point
// performs a single atomic transition behind one mutex.
type Monitor struct {
	cfg      Config
	store    *assessment.Store
	sensor   Sensor
	display  Display
	notifier notify.Notifier
	log      zerolog.Logger
	clock    func() time.Time

	mu            sync.Mutex
	noFace        time.Duration
	faceWarned    bool
	graceDeadline time.Time
	violations    int
	exclusive     bool
	terminated    bool
	reenterTimer  *time.Timer
}

// New creates a Monitor. Defaults match the production proctoring policy:
// 1 s polls, 10 s face absence, 5 s grace, 3 focus/fullscreen violations.
func New(cfg Config, store *assessment.Store, sensor Sensor, display Display, notifier notify.Notifier, log zerolog.Logger) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxNoFaceTime <= 0 {
		cfg.MaxNoFaceTime = 10 * time.Second
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 5 * time.Second
	}
	if cfg.MaxViolations <= 0 {
		cfg.MaxViolations = 3
	}
	if cfg.GateDetectAttempts <= 0 {
		cfg.GateDetectAttempts = 10
	}
	if cfg.ReenterDelay <= 0 {
		cfg.ReenterDelay = time.Second
	}
	return &Monitor{
		cfg:      cfg,
		store:    store,
		sensor:   sensor,
		display:  display,
		notifier: notifier,
		log:      log.With().Str("component", "integrity_monitor").Logger(),
		clock:    time.Now,
	}
}

// Run drives the face-presence poll loop until the context is cancelled or
// the attempt terminates.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info().Dur("interval", m.cfg.PollInterval).Msg("Integrity monitor started")

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Integrity monitor stopped")
			return
		case <-ticker.C:
			m.pollFace(ctx)
		}
	}
}

// pollFace performs one face-presence check and advances the absence
// counter, the warning and the grace window.
func (m *Monitor) pollFace(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.terminated || !m.store.TestStarted() || m.store.TestSubmitted() {
		return
	}

	detected, err := m.sensor.Detect(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("Face detection failed, counting as absent")
		detected = false
	}

	if detected {
		m.noFace = 0
		m.faceWarned = false
		m.graceDeadline = time.Time{}
		return
	}

	m.noFace += m.cfg.PollInterval

	if m.noFace >= m.cfg.MaxNoFaceTime && !m.faceWarned {
		m.faceWarned = true
		m.graceDeadline = m.clock().Add(m.cfg.GracePeriod)
		m.notifier.Notify(
			"No face detected",
			fmt.Sprintf("No face has been detected for %d seconds. The test will be submitted if a face is not detected soon.", int(m.cfg.MaxNoFaceTime/time.Second)),
			notify.SeverityWarning,
		)
		return
	}

	if m.faceWarned && !m.graceDeadline.IsZero() && !m.clock().Before(m.graceDeadline) {
		m.forceSubmitLocked(
			"Test terminated",
			"No face detected for an extended period. The test has been submitted.",
		)
	}
}

// ReportVisibility records a focus/visibility transition of the host
// surface. Only hidden transitions during an active attempt count.
func (m *Monitor) ReportVisibility(hidden bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !hidden || !m.activeLocked() {
		return
	}
	m.log.Warn().Int("violations", m.violations+1).Msg("Surface hidden")
	m.recordViolationLocked("Tab switch detected")
}

// ReportFullscreen records a change of exclusive display mode. An
// unsolicited exit while the session believes itself exclusive counts as a
// violation and schedules an automatic re-entry attempt.
func (m *Monitor) ReportFullscreen(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if active {
		m.exclusive = true
		return
	}
	if !m.exclusive || !m.activeLocked() {
		m.exclusive = false
		return
	}

	m.exclusive = false
	m.log.Warn().Int("violations", m.violations+1).Msg("Fullscreen exited")
	if forced := m.recordViolationLocked("Fullscreen exited"); forced {
		return
	}

	if m.reenterTimer != nil {
		m.reenterTimer.Stop()
	}
	m.reenterTimer = time.AfterFunc(m.cfg.ReenterDelay, m.reenterExclusive)
}

func (m *Monitor) reenterExclusive() {
	m.mu.Lock()
	if m.terminated || m.exclusive || !m.activeLocked() {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.display.EnterExclusive(ctx); err != nil {
		m.log.Warn().Err(err).Msg("Fullscreen re-entry failed")
		return
	}

	m.mu.Lock()
	m.exclusive = true
	m.mu.Unlock()
}

// InterceptKey decides whether a keyboard event must be suppressed: while
// exclusive mode is active, function keys and modifier combinations are
// discarded with a passive notice instead of being forwarded.
func (m *Monitor) InterceptKey(key string, ctrl, alt, meta bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.exclusive || m.terminated {
		return false
	}
	if !ctrl && !alt && !meta && !isFunctionKey(key) {
		return false
	}
	m.notifier.Notify("Key blocked", "Keyboard shortcuts are disabled during the test.", notify.SeverityInfo)
	return true
}

func isFunctionKey(key string) bool {
	if len(key) < 2 || len(key) > 3 || key[0] != 'F' {
		return false
	}
	for _, c := range key[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// recordViolationLocked bumps the shared violation counter. At or below the
// maximum it warns with the remaining allowance; past the maximum it forces
// submission. Returns true when the attempt was terminated.
func (m *Monitor) recordViolationLocked(title string) bool {
	m.violations++
	if m.violations > m.cfg.MaxViolations {
		m.forceSubmitLocked(
			"Test terminated",
			"Too many proctoring violations. The test has been submitted.",
		)
		return true
	}
	remaining := m.cfg.MaxViolations - m.violations
	m.notifier.Notify(
		title,
		fmt.Sprintf("%d warnings remaining before the test is terminated.", remaining),
		notify.SeverityWarning,
	)
	return false
}

// forceSubmitLocked funnels into the store's idempotent submit path and
// releases the capture device and exclusive mode. Fires at most once.
func (m *Monitor) forceSubmitLocked(title, message string) {
	if m.terminated {
		return
	}
	m.terminated = true

	if m.reenterTimer != nil {
		m.reenterTimer.Stop()
		m.reenterTimer = nil
	}
	m.store.SubmitTest()
	m.sensor.Release()
	if m.exclusive {
		m.display.ExitExclusive()
		m.exclusive = false
	}
	m.log.Warn().Str("reason", title).Msg("Forced submission")
	m.notifier.Notify(title, message, notify.SeverityCritical)
}

// Violations returns the shared focus/fullscreen violation count.
func (m *Monitor) Violations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.violations
}

// Terminated reports whether the monitor has force-submitted the attempt.
func (m *Monitor) Terminated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminated
}

// Close releases held resources on shutdown. Safe to call at any time;
// acquisition and release stay paired on every exit path.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reenterTimer != nil {
		m.reenterTimer.Stop()
		m.reenterTimer = nil
	}
	m.sensor.Release()
	if m.exclusive {
		m.display.ExitExclusive()
		m.exclusive = false
	}
}

func (m *Monitor) activeLocked() bool {
	return !m.terminated && m.store.TestStarted() && !m.store.TestSubmitted()
}
