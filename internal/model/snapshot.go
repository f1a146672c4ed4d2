package model

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the full persisted state of an attempt: the single namespaced
// record written to the local store after every mutation and restored on
// boot. Start instants are absolute timestamps, serialized as RFC3339
// strings, so elapsed-time math survives a process restart without drift.
type Snapshot struct {
	SessionID         uuid.UUID  `json:"session_id"`
	Sections          []Section  `json:"sections"`
	Questions         []Question `json:"questions"`
	CurrentQuestionID int        `json:"current_question_id"`
	CurrentSectionID  int        `json:"current_section_id"`
	// CursorPriorStatus is the status the current question held before it
	// became current, restored when the cursor moves away.
	CursorPriorStatus QuestionStatus `json:"cursor_prior_status,omitempty"`
	TestStarted       bool           `json:"test_started"`
	TestSubmitted     bool           `json:"test_submitted"`
	TestStartedAt     *time.Time     `json:"test_started_at,omitempty"`
	SectionStartedAt  *time.Time     `json:"section_started_at,omitempty"`
}

// CompletionStatus summarizes the active section for the display layer.
type CompletionStatus struct {
	TotalQuestions      int `json:"total_questions"`
	AnsweredQuestions   int `json:"answered_questions"`
	MarkedQuestions     int `json:"marked_questions"`
	NotVisitedQuestions int `json:"not_visited_questions"`
}
