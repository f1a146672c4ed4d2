package model

// QuestionStatus enumerates the mutually exclusive states a question moves
// through during an attempt.
type QuestionStatus string

const (
	StatusNotVisited        QuestionStatus = "not-visited"
	StatusCurrent           QuestionStatus = "current"
	StatusAnswered          QuestionStatus = "answered"
	StatusMarkedForReview   QuestionStatus = "marked-for-review"
	StatusAnsweredAndMarked QuestionStatus = "answered-and-marked"
)

// Answer is one of the fixed option choices a candidate can record.
type Answer string

const (
	AnswerA Answer = "A"
	AnswerB Answer = "B"
	AnswerC Answer = "C"
	AnswerD Answer = "D"
)

// Question is a single item in the assessment. IDs are contiguous across
// the whole paper, assigned in section order.
type Question struct {
	ID        int            `json:"id"`
	SectionID int            `json:"section_id"`
	Status    QuestionStatus `json:"status"`
	Answer    *Answer        `json:"answer,omitempty"`
}

// IsAnswered reports whether the question carries a recorded answer status.
func (q Question) IsAnswered() bool {
	return q.Status == StatusAnswered || q.Status == StatusAnsweredAndMarked
}

// IsMarked reports whether the question carries a review mark.
func (q Question) IsMarked() bool {
	return q.Status == StatusMarkedForReview || q.Status == StatusAnsweredAndMarked
}
