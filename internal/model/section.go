package model

// Section is a fixed-size, ordered partition of the question set with its
// own completion flag and countdown. Immutable after seeding except for the
// completion flag.
type Section struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"question_count"`
	Completed     bool   `json:"completed"`
}
