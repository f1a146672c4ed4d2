package model

// AnswerRequest records an option choice for a question.
type AnswerRequest struct {
	Answer Answer `json:"answer" binding:"required,oneof=A B C D"`
}

// NavigateRequest carries a navigation intent from the display layer.
// QuestionID is only meaningful for the goto intent.
type NavigateRequest struct {
	Intent     string `json:"intent" binding:"required,oneof=next previous goto"`
	QuestionID int    `json:"question_id" binding:"omitempty,min=1"`
}
