// Package assessment owns the state of a single assessment attempt: section
// and question entities, the navigation cursor, lifecycle flags and the two
// countdown clocks. It is the only writer; every other component mutates
// state exclusively through the action surface and reads it through pure
// queries.
package assessment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/teamcollar/stem-assessment/internal/content"
	"github.com/teamcollar/stem-assessment/internal/model"
)

// SnapshotStore persists the full attempt state as one namespaced record.
type SnapshotStore interface {
	Save(ctx context.Context, snap *model.Snapshot) error
	Load(ctx context.Context) (*model.Snapshot, error)
}

// Options configures a Store.
type Options struct {
	Sections        []model.Section
	TotalTestTime   time.Duration
	SectionTime     time.Duration
	Snapshots       SnapshotStore    // optional; nil disables persistence
	Clock           func() time.Time // optional; defaults to time.Now
	Log             zerolog.Logger
}

// Store is the single source of truth for an attempt. All actions are
// atomic read-modify-writes behind one mutex, so near-simultaneous triggers
// from the timing supervisor and the integrity monitor cannot interleave.
type Store struct {
	mu sync.Mutex

	sessionID       uuid.UUID
	sections        []model.Section
	questions       []model.Question
	currentQuestion int
	currentSection  int
	// cursorPrior is the status the current question held before promotion,
	// restored on demotion so an answered or marked question keeps its other
	// status component when the cursor moves away.
	cursorPrior     model.QuestionStatus
	testStarted     bool
	testSubmitted   bool
	testStartedAt   *time.Time
	sectionStartAt  *time.Time

	totalTestTime time.Duration
	sectionTime   time.Duration
	snapshots     SnapshotStore
	clock         func() time.Time
	log           zerolog.Logger
}

// New creates a Store seeded with fresh sections and questions.
func New(opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	sections := opts.Sections
	if sections == nil {
		sections = content.Sections()
	}
	return &Store{
		sessionID:       uuid.New(),
		sections:        sections,
		questions:       content.Questions(sections),
		currentQuestion: 1,
		currentSection:  1,
		cursorPrior:     model.StatusNotVisited,
		totalTestTime:   opts.TotalTestTime,
		sectionTime:     opts.SectionTime,
		snapshots:       opts.Snapshots,
		clock:           opts.Clock,
		log:             opts.Log.With().Str("component", "assessment_store").Logger(),
	}
}

// Restore loads a previously persisted attempt. Missing or corrupt state is
// logged and ignored; the store keeps its fresh initial state instead of
// failing.
func (s *Store) Restore(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Persisted state unreadable, starting fresh")
		return
	}
	if snap == nil {
		return
	}
	if !s.validSnapshot(snap) {
		s.log.Warn().Msg("Persisted state inconsistent, starting fresh")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = snap.SessionID
	s.sections = snap.Sections
	s.questions = snap.Questions
	s.currentQuestion = snap.CurrentQuestionID
	s.currentSection = snap.CurrentSectionID
	s.cursorPrior = snap.CursorPriorStatus
	if s.cursorPrior == "" || s.cursorPrior == model.StatusCurrent {
		s.cursorPrior = model.StatusNotVisited
	}
	s.testStarted = snap.TestStarted
	s.testSubmitted = snap.TestSubmitted
	s.testStartedAt = snap.TestStartedAt
	s.sectionStartAt = snap.SectionStartedAt
	s.log.Info().
		Str("session_id", s.sessionID.String()).
		Bool("started", s.testStarted).
		Bool("submitted", s.testSubmitted).
		Msg("Attempt state restored")
}

// validSnapshot rejects snapshots that do not match the seeded paper shape.
func (s *Store) validSnapshot(snap *model.Snapshot) bool {
	if len(snap.Sections) != len(s.sections) || len(snap.Questions) != len(s.questions) {
		return false
	}
	var current *model.Question
	for i := range snap.Questions {
		q := &snap.Questions[i]
		if q.ID != s.questions[i].ID || q.SectionID != s.questions[i].SectionID {
			return false
		}
		if q.ID == snap.CurrentQuestionID {
			current = q
		}
	}
	if current == nil || current.SectionID != snap.CurrentSectionID {
		return false
	}
	if snap.TestStarted && snap.TestStartedAt == nil {
		return false
	}
	return true
}

// ─── Actions ────────────────────────────────────────────────────────

// StartTest stamps the test and section clocks and flips the started flag.
// Idempotent once started: clocks already running are never reset.
func (s *Store) StartTest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.testStarted || s.testSubmitted {
		return
	}
	now := s.clock()
	s.testStarted = true
	s.testStartedAt = &now
	s.sectionStartAt = &now
	s.log.Info().Str("session_id", s.sessionID.String()).Msg("Test started")
	s.persistLocked()
}

// SubmitTest finalizes the attempt. Idempotent; question and section data
// are preserved as the historical record of the final state.
func (s *Store) SubmitTest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitTestLocked()
}

func (s *Store) submitTestLocked() {
	if s.testSubmitted {
		return
	}
	s.testSubmitted = true
	s.log.Info().Str("session_id", s.sessionID.String()).Msg("Test submitted")
	s.persistLocked()
}

// SubmitSection completes the active section. On the last section it
// delegates to SubmitTest; otherwise it advances the cursor to the first
// question of the next section and restamps the section clock.
func (s *Store) SubmitSection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.testSubmitted {
		return
	}

	if s.currentSection == len(s.sections) {
		s.submitTestLocked()
		return
	}

	next := s.firstQuestionOfLocked(s.currentSection + 1)
	if next == nil {
		// Unreachable with sane content; guard rather than corrupt the cursor.
		s.log.Error().Int("section_id", s.currentSection+1).Msg("Next section has no questions")
		return
	}

	for i := range s.sections {
		if s.sections[i].ID == s.currentSection {
			s.sections[i].Completed = true
		}
	}
	s.moveCursorLocked(next.ID)
	s.currentSection = next.SectionID
	now := s.clock()
	s.sectionStartAt = &now
	s.log.Info().Int("section_id", s.currentSection).Msg("Section started")
	s.persistLocked()
}

// GoToNextQuestion moves the cursor forward within the active section.
// No-op on the last question of the section.
func (s *Store) GoToNextQuestion() {
	s.stepCursor(1)
}

// GoToPreviousQuestion moves the cursor backward within the active section.
// No-op on the first question of the section.
func (s *Store) GoToPreviousQuestion() {
	s.stepCursor(-1)
}

func (s *Store) stepCursor(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.testSubmitted {
		return
	}
	sectionQuestions := s.sectionQuestionsLocked(s.currentSection)
	idx := -1
	for i, q := range sectionQuestions {
		if q.ID == s.currentQuestion {
			idx = i
			break
		}
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(sectionQuestions) {
		return
	}
	s.moveCursorLocked(sectionQuestions[target].ID)
	s.persistLocked()
}

// GoToQuestion jumps the cursor to an arbitrary question of the active
// section. Cross-section jumps are silently ignored.
func (s *Store) GoToQuestion(questionID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.testSubmitted {
		return
	}
	target := s.questionLocked(questionID)
	if target == nil || target.SectionID != s.currentSection {
		return
	}
	s.moveCursorLocked(questionID)
	s.persistLocked()
}

// moveCursorLocked demotes the old current question and promotes the new
// one, keeping the single-current invariant. A question that was answered
// or marked before promotion gets that status back on demotion; answering
// or marking while current already rewrote the status, so only a literal
// "current" status is restored.
func (s *Store) moveCursorLocked(questionID int) {
	if old := s.questionLocked(s.currentQuestion); old != nil && old.Status == model.StatusCurrent {
		old.Status = s.cursorPrior
	}
	if next := s.questionLocked(questionID); next != nil {
		s.cursorPrior = next.Status
		if s.cursorPrior == model.StatusCurrent {
			s.cursorPrior = model.StatusNotVisited
		}
		next.Status = model.StatusCurrent
	}
	s.currentQuestion = questionID
}

// AnswerQuestion records an answer and promotes the status to answered, or
// answered-and-marked when a review mark is present. Answers may target any
// question, not just the current one, and may be overwritten.
func (s *Store) AnswerQuestion(questionID int, answer model.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.testSubmitted {
		return
	}
	q := s.questionLocked(questionID)
	if q == nil {
		return
	}
	q.Answer = &answer
	if q.IsMarked() {
		q.Status = model.StatusAnsweredAndMarked
	} else {
		q.Status = model.StatusAnswered
	}
	s.persistLocked()
}

// MarkForReview sets the review mark, composing with an existing answer.
func (s *Store) MarkForReview(questionID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.testSubmitted {
		return
	}
	q := s.questionLocked(questionID)
	if q == nil {
		return
	}
	if q.IsAnswered() {
		q.Status = model.StatusAnsweredAndMarked
	} else {
		q.Status = model.StatusMarkedForReview
	}
	s.persistLocked()
}

// UnmarkForReview clears the review mark. An answered-and-marked question
// returns to answered with its answer retained; a bare mark returns to
// not-visited.
func (s *Store) UnmarkForReview(questionID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.testSubmitted {
		return
	}
	q := s.questionLocked(questionID)
	if q == nil {
		return
	}
	if q.IsAnswered() {
		q.Status = model.StatusAnswered
	} else {
		q.Status = model.StatusNotVisited
	}
	s.persistLocked()
}

// ─── Queries ────────────────────────────────────────────────────────

// SessionID returns the attempt identity.
func (s *Store) SessionID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// TestStarted reports whether the attempt is underway.
func (s *Store) TestStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.testStarted
}

// TestSubmitted reports whether the attempt has been finalized.
func (s *Store) TestSubmitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.testSubmitted
}

// Question returns a copy of the question with the given id.
func (s *Store) Question(questionID int) (model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.questionLocked(questionID)
	if q == nil {
		return model.Question{}, false
	}
	return *q, true
}

// CurrentQuestion returns a copy of the question under the cursor.
func (s *Store) CurrentQuestion() (model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.questionLocked(s.currentQuestion)
	if q == nil {
		return model.Question{}, false
	}
	return *q, true
}

// CurrentSection returns a copy of the active section.
func (s *Store) CurrentSection() (model.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sec := range s.sections {
		if sec.ID == s.currentSection {
			return sec, true
		}
	}
	return model.Section{}, false
}

// RemainingTime returns the overall countdown, clamped at zero. Before the
// test starts it reports the full duration.
func (s *Store) RemainingTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked(s.testStartedAt, s.totalTestTime)
}

// SectionRemainingTime returns the active section's countdown, clamped at
// zero.
func (s *Store) SectionRemainingTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked(s.sectionStartAt, s.sectionTime)
}

func (s *Store) remainingLocked(startedAt *time.Time, duration time.Duration) time.Duration {
	if startedAt == nil {
		return duration
	}
	remaining := duration - s.clock().Sub(*startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CompletionStatus summarizes the active section's question statuses.
func (s *Store) CompletionStatus() model.CompletionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var status model.CompletionStatus
	for _, q := range s.sectionQuestionsLocked(s.currentSection) {
		status.TotalQuestions++
		if q.IsAnswered() {
			status.AnsweredQuestions++
		}
		if q.IsMarked() {
			status.MarkedQuestions++
		}
		if q.Status == model.StatusNotVisited {
			status.NotVisitedQuestions++
		}
	}
	return status
}

// SectionQuestions returns copies of the questions belonging to a section.
func (s *Store) SectionQuestions(sectionID int) []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sectionQuestionsLocked(sectionID)
}

// Sections returns copies of all sections.
func (s *Store) Sections() []model.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// CanSubmitSection reports whether every question in the active section has
// left the not-visited state.
func (s *Store) CanSubmitSection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.sectionQuestionsLocked(s.currentSection) {
		if q.Status == model.StatusNotVisited {
			return false
		}
	}
	return true
}

// Snapshot returns the full attempt state for the display layer and the
// persistence layer.
func (s *Store) Snapshot() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *model.Snapshot {
	sections := make([]model.Section, len(s.sections))
	copy(sections, s.sections)
	questions := make([]model.Question, len(s.questions))
	copy(questions, s.questions)
	return &model.Snapshot{
		SessionID:         s.sessionID,
		Sections:          sections,
		Questions:         questions,
		CurrentQuestionID: s.currentQuestion,
		CurrentSectionID:  s.currentSection,
		CursorPriorStatus: s.cursorPrior,
		TestStarted:       s.testStarted,
		TestSubmitted:     s.testSubmitted,
		TestStartedAt:     s.testStartedAt,
		SectionStartedAt:  s.sectionStartAt,
	}
}

// ─── Internal helpers ───────────────────────────────────────────────

func (s *Store) questionLocked(questionID int) *model.Question {
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			return &s.questions[i]
		}
	}
	return nil
}

func (s *Store) firstQuestionOfLocked(sectionID int) *model.Question {
	for i := range s.questions {
		if s.questions[i].SectionID == sectionID {
			return &s.questions[i]
		}
	}
	return nil
}

func (s *Store) sectionQuestionsLocked(sectionID int) []model.Question {
	var out []model.Question
	for _, q := range s.questions {
		if q.SectionID == sectionID {
			out = append(out, q)
		}
	}
	return out
}

// persistLocked writes the current snapshot. Best-effort: persistence
// failures are logged, never propagated to the action caller.
func (s *Store) persistLocked() {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(context.Background(), s.snapshotLocked()); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist attempt state")
	}
}
