// Package supervisor drives the countdown clocks. It polls the assessment
// store on a fixed cadence and forces section submission on expiry; the
// overall countdown is informational only, since section countdowns already
// partition the total.
package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/teamcollar/stem-assessment/internal/assessment"
	"github.com/teamcollar/stem-assessment/internal/notify"
)

// Supervisor polls the store's clocks and triggers automatic submission.
type Supervisor struct {
	store    *assessment.Store
	notifier notify.Notifier
	interval time.Duration
	log      zerolog.Logger
}

// New creates a Supervisor ticking at the given interval.
func New(store *assessment.Store, notifier notify.Notifier, interval time.Duration, log zerolog.Logger) *Supervisor {
	if interval <= 0 {
		interval = time.Second
	}
	return &Supervisor{
		store:    store,
		notifier: notifier,
		interval: interval,
		log:      log.With().Str("component", "timing_supervisor").Logger(),
	}
}

// Run polls until the context is cancelled. No ticks fire after return.
func (s *Supervisor) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("Timing supervisor started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Timing supervisor stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick performs one poll. Exported so a host without its own scheduler can
// drive the supervisor directly.
//
// SubmitSection restamps the section clock (or finalizes the attempt on the
// last section), so a tick that still observes zero in the same second
// cannot fire a second submission for the same expiry.
func (s *Supervisor) Tick() {
	if !s.store.TestStarted() || s.store.TestSubmitted() {
		return
	}
	if s.store.SectionRemainingTime() > 0 {
		return
	}

	section, _ := s.store.CurrentSection()
	last := section.ID == len(s.store.Sections())

	s.log.Info().Int("section_id", section.ID).Bool("last", last).Msg("Section time expired")
	if last {
		s.notifier.Notify("Time's up!", "The test has been submitted.", notify.SeverityWarning)
	} else {
		s.notifier.Notify("Time's up!", "Moving to the next section.", notify.SeverityInfo)
	}
	s.store.SubmitSection()
}
