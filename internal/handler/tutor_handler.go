package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/middleware"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/response"
	"github.com/stemsi/hanyu-backend/internal/service"
	"github.com/stemsi/hanyu-backend/internal/validator"
)

// TutorHandler serves course-based tutor conversations.
type TutorHandler struct {
	tutor  *service.TutorService
	speech *service.SpeechService
	log    zerolog.Logger
}

// NewTutorHandler creates a new TutorHandler.
func NewTutorHandler(tutor *service.TutorService, speech *service.SpeechService, log zerolog.Logger) *TutorHandler {
	return &TutorHandler{
		tutor:  tutor,
		speech: speech,
		log:    log.With().Str("component", "tutor_handler").Logger(),
	}
}

// Courses godoc
// GET /api/v1/tutor/courses
func (h *TutorHandler) Courses(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"courses": h.tutor.Courses()})
}

// Recommendation godoc
// GET /api/v1/tutor/recommendation
// Suggests a course from how much the learner has chatted at each level.
func (h *TutorHandler) Recommendation(c *gin.Context) {
	rec, err := h.tutor.Recommend(c.Request.Context(), middleware.LearnerID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, rec)
}

// Session godoc
// GET /api/v1/tutor/sessions/:course_id
// Opens the conversation with the course greeting on first visit.
func (h *TutorHandler) Session(c *gin.Context) {
	sess, err := h.tutor.Session(c.Request.Context(), middleware.LearnerID(c), c.Param("course_id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// Send godoc
// POST /api/v1/tutor/sessions/:course_id/messages
func (h *TutorHandler) Send(c *gin.Context) {
	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ex, err := h.tutor.Send(c.Request.Context(), middleware.LearnerID(c), c.Param("course_id"), req.Content)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, ex)
}

// DeleteMessage godoc
// DELETE /api/v1/tutor/sessions/:course_id/messages/:message_id
func (h *TutorHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseUUIDParam(c, "message_id")
	if !ok {
		return
	}
	if err := h.tutor.DeleteMessage(c.Request.Context(), middleware.LearnerID(c), c.Param("course_id"), messageID); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Reset godoc
// DELETE /api/v1/tutor/sessions/:course_id
func (h *TutorHandler) Reset(c *gin.Context) {
	if err := h.tutor.Reset(c.Request.Context(), middleware.LearnerID(c), c.Param("course_id")); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// MessageAudio godoc
// GET /api/v1/tutor/sessions/:course_id/messages/:message_id/audio[?format=base64]
func (h *TutorHandler) MessageAudio(c *gin.Context) {
	messageID, ok := parseUUIDParam(c, "message_id")
	if !ok {
		return
	}
	sp, err := h.tutor.MessageAudio(c.Request.Context(), middleware.LearnerID(c), c.Param("course_id"), messageID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	deliverSpeech(c, h.speech, h.log, sp)
}

// Summarize godoc
// POST /api/v1/tutor/sessions/:course_id/summary
func (h *TutorHandler) Summarize(c *gin.Context) {
	summary, err := h.tutor.Summarize(c.Request.Context(), middleware.LearnerID(c), c.Param("course_id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}
