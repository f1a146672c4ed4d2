// Package navigation translates user intent into assessment store
// transitions. It carries no state of its own: every decision is a pure
// function of store queries at call time.
package navigation

import (
	"github.com/teamcollar/stem-assessment/internal/assessment"
	"github.com/teamcollar/stem-assessment/internal/model"
)

// Intent names a navigation request from the display layer.
type Intent string

const (
	IntentNext     Intent = "next"
	IntentPrevious Intent = "previous"
	IntentGoto     Intent = "goto"
)

// Action is what the primary navigation control should do next, used by the
// display layer to label the "Next" button.
type Action string

const (
	ActionNext          Action = "next"
	ActionSubmitSection Action = "submit-section"
	ActionSubmitTest    Action = "submit-test"
)

// Controller orchestrates navigation against the store.
type Controller struct {
	store *assessment.Store
}

// NewController creates a navigation controller bound to a store.
func NewController(store *assessment.Store) *Controller {
	return &Controller{store: store}
}

// IsFirstQuestion reports whether the cursor sits on the first question of
// the active section.
func (c *Controller) IsFirstQuestion() bool {
	current, questions, ok := c.position()
	return ok && len(questions) > 0 && current.ID == questions[0].ID
}

// IsLastQuestion reports whether the cursor sits on the last question of
// the active section.
func (c *Controller) IsLastQuestion() bool {
	current, questions, ok := c.position()
	return ok && len(questions) > 0 && current.ID == questions[len(questions)-1].ID
}

// NextAction decides what the forward control means at the current
// position: plain navigation mid-section, section submission on the last
// question, or test submission on the last question of the last section.
func (c *Controller) NextAction() Action {
	if !c.IsLastQuestion() {
		return ActionNext
	}
	section, ok := c.store.CurrentSection()
	if ok && section.ID == len(c.store.Sections()) {
		return ActionSubmitTest
	}
	return ActionSubmitSection
}

// Navigate dispatches a navigation intent. Boundary overruns and
// cross-section jumps are silently rejected by the store.
func (c *Controller) Navigate(intent Intent, questionID int) {
	switch intent {
	case IntentNext:
		c.store.GoToNextQuestion()
	case IntentPrevious:
		c.store.GoToPreviousQuestion()
	case IntentGoto:
		c.store.GoToQuestion(questionID)
	}
}

// Advance performs the forward control: next question mid-section, section
// submission at the section boundary.
func (c *Controller) Advance() {
	if c.IsLastQuestion() {
		c.store.SubmitSection()
		return
	}
	c.store.GoToNextQuestion()
}

// Mark sets the review mark on a question.
func (c *Controller) Mark(questionID int) {
	c.store.MarkForReview(questionID)
}

// Unmark clears the review mark on a question.
func (c *Controller) Unmark(questionID int) {
	c.store.UnmarkForReview(questionID)
}

func (c *Controller) position() (model.Question, []model.Question, bool) {
	current, ok := c.store.CurrentQuestion()
	if !ok {
		return model.Question{}, nil, false
	}
	return current, c.store.SectionQuestions(current.SectionID), true
}
