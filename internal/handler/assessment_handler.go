package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamcollar/stem-assessment/internal/assessment"
	"github.com/teamcollar/stem-assessment/internal/model"
	"github.com/teamcollar/stem-assessment/internal/monitor"
	"github.com/teamcollar/stem-assessment/internal/navigation"
	"github.com/teamcollar/stem-assessment/internal/response"
	"github.com/teamcollar/stem-assessment/internal/validator"
)

// AssessmentHandler exposes the user-facing action surface and the derived
// state queries: start, answer, mark/unmark, navigate, submit.
type AssessmentHandler struct {
	store *assessment.Store
	nav   *navigation.Controller
	mon   *monitor.Monitor
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(store *assessment.Store, nav *navigation.Controller, mon *monitor.Monitor) *AssessmentHandler {
	return &AssessmentHandler{store: store, nav: nav, mon: mon}
}

// GetState godoc
// GET /api/v1/assessment/state
// Returns the full attempt snapshot plus derived queries for the display layer.
func (h *AssessmentHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, h.stateView())
}

// GetPaper godoc
// GET /api/v1/assessment/paper
// Returns the section layout and the per-question status list.
func (h *AssessmentHandler) GetPaper(c *gin.Context) {
	sections := h.store.Sections()
	questions := make(map[int][]model.Question, len(sections))
	for _, s := range sections {
		questions[s.ID] = h.store.SectionQuestions(s.ID)
	}
	response.Success(c, http.StatusOK, gin.H{
		"sections":  sections,
		"questions": questions,
	})
}

// Start godoc
// POST /api/v1/assessment/start
// Runs the proctoring start gate and, on success, starts the test.
func (h *AssessmentHandler) Start(c *gin.Context) {
	if err := h.mon.BeginSession(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, monitor.ErrClassifierLoad):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrClassifierLoad)
		case errors.Is(err, monitor.ErrCameraDenied):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrCameraDenied)
		case errors.Is(err, monitor.ErrNoFaceFound):
			response.Fail(c, http.StatusConflict, response.ErrNoFaceDetected)
		case errors.Is(err, monitor.ErrExclusiveMode):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrFullscreenDenied)
		default:
			response.Fail(c, http.StatusConflict, response.ErrTestAlreadySubmitted)
		}
		return
	}
	response.Success(c, http.StatusOK, h.stateView())
}

// Answer godoc
// POST /api/v1/assessment/questions/:question_id/answer
func (h *AssessmentHandler) Answer(c *gin.Context) {
	questionID, ok := h.questionID(c)
	if !ok {
		return
	}
	if h.rejectSubmitted(c) {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.store.AnswerQuestion(questionID, req.Answer)
	response.Success(c, http.StatusOK, h.stateView())
}

// Mark godoc
// POST /api/v1/assessment/questions/:question_id/mark
func (h *AssessmentHandler) Mark(c *gin.Context) {
	questionID, ok := h.questionID(c)
	if !ok {
		return
	}
	if h.rejectSubmitted(c) {
		return
	}
	h.nav.Mark(questionID)
	response.Success(c, http.StatusOK, h.stateView())
}

// Unmark godoc
// POST /api/v1/assessment/questions/:question_id/unmark
func (h *AssessmentHandler) Unmark(c *gin.Context) {
	questionID, ok := h.questionID(c)
	if !ok {
		return
	}
	if h.rejectSubmitted(c) {
		return
	}
	h.nav.Unmark(questionID)
	response.Success(c, http.StatusOK, h.stateView())
}

// Navigate godoc
// POST /api/v1/assessment/navigate
// Boundary overruns and cross-section jumps are silently absorbed: the
// response carries the (unchanged) state rather than an error.
func (h *AssessmentHandler) Navigate(c *gin.Context) {
	if h.rejectSubmitted(c) {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.nav.Navigate(navigation.Intent(req.Intent), req.QuestionID)
	response.Success(c, http.StatusOK, h.stateView())
}

// SubmitSection godoc
// POST /api/v1/assessment/section/submit
func (h *AssessmentHandler) SubmitSection(c *gin.Context) {
	h.store.SubmitSection()
	response.Success(c, http.StatusOK, h.stateView())
}

// SubmitTest godoc
// POST /api/v1/assessment/submit
// Idempotent: submitting twice returns the same final state.
func (h *AssessmentHandler) SubmitTest(c *gin.Context) {
	h.store.SubmitTest()
	response.Success(c, http.StatusOK, h.stateView())
}

func (h *AssessmentHandler) stateView() gin.H {
	return gin.H{
		"snapshot":                  h.store.Snapshot(),
		"remaining_seconds":         int(h.store.RemainingTime().Seconds()),
		"section_remaining_seconds": int(h.store.SectionRemainingTime().Seconds()),
		"completion":                h.store.CompletionStatus(),
		"next_action":               h.nav.NextAction(),
		"can_submit_section":        h.store.CanSubmitSection(),
	}
}

func (h *AssessmentHandler) questionID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("question_id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	if _, ok := h.store.Question(id); !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return 0, false
	}
	return id, true
}

func (h *AssessmentHandler) rejectSubmitted(c *gin.Context) bool {
	if h.store.TestSubmitted() {
		response.Fail(c, http.StatusConflict, response.ErrTestAlreadySubmitted)
		return true
	}
	return false
}
