package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/middleware"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/response"
	"github.com/stemsi/hanyu-backend/internal/service"
	"github.com/stemsi/hanyu-backend/internal/validator"
)

// QuizFlow is the quiz lifecycle the REST and WebSocket handlers drive.
type QuizFlow interface {
	StartChallenge(ctx context.Context, learnerID uuid.UUID, req model.StartChallengeRequest) (*service.QuizView, error)
	StartReview(ctx context.Context, learnerID uuid.UUID, req model.StartReviewRequest) (*service.QuizView, error)
	Get(ctx context.Context, learnerID, sessionID uuid.UUID) (*service.QuizView, error)
	Begin(ctx context.Context, learnerID, sessionID uuid.UUID) (*service.QuizView, error)
	Answer(ctx context.Context, learnerID, sessionID uuid.UUID, index int) (*service.AnswerView, error)
	Mastered(ctx context.Context, learnerID, sessionID uuid.UUID) (*service.AnswerView, error)
	Advance(ctx context.Context, learnerID, sessionID uuid.UUID) (*service.QuizView, error)
	Finish(ctx context.Context, learnerID, sessionID uuid.UUID) (*service.QuizSummary, error)
}

// QuizHandler exposes quiz sessions over plain HTTP. Clients that cannot
// hold a WebSocket drive the auto-advance themselves using advance_after_ms.
type QuizHandler struct {
	quiz    QuizFlow
	history *service.QuizHistoryService
	log     zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quiz QuizFlow, history *service.QuizHistoryService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quiz:    quiz,
		history: history,
		log:     log.With().Str("component", "quiz_handler").Logger(),
	}
}

// StartChallenge godoc
// POST /api/v1/quiz/challenge
// Generates questions on a topic. The session opens on its study cards.
func (h *QuizHandler) StartChallenge(c *gin.Context) {
	var req model.StartChallengeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.quiz.StartChallenge(c.Request.Context(), middleware.LearnerID(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": view})
}

// StartReview godoc
// POST /api/v1/quiz/review
// Samples saved learning words. The body is optional.
func (h *QuizHandler) StartReview(c *gin.Context) {
	var req model.StartReviewRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	view, err := h.quiz.StartReview(c.Request.Context(), middleware.LearnerID(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": view})
}

// Get godoc
// GET /api/v1/quiz/:session_id
func (h *QuizHandler) Get(c *gin.Context) {
	h.step(c, h.quiz.Get)
}

// Begin godoc
// POST /api/v1/quiz/:session_id/begin
func (h *QuizHandler) Begin(c *gin.Context) {
	h.step(c, h.quiz.Begin)
}

// Advance godoc
// POST /api/v1/quiz/:session_id/advance
func (h *QuizHandler) Advance(c *gin.Context) {
	h.step(c, h.quiz.Advance)
}

// Answer godoc
// POST /api/v1/quiz/:session_id/answer
func (h *QuizHandler) Answer(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.quiz.Answer(c.Request.Context(), middleware.LearnerID(c), sessionID, *req.Index)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Mastered godoc
// POST /api/v1/quiz/:session_id/mastered
// Review only: counts the question as known and marks the word learned.
func (h *QuizHandler) Mastered(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	res, err := h.quiz.Mastered(c.Request.Context(), middleware.LearnerID(c), sessionID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Finish godoc
// POST /api/v1/quiz/:session_id/finish
func (h *QuizHandler) Finish(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	summary, err := h.quiz.Finish(c.Request.Context(), middleware.LearnerID(c), sessionID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// History godoc
// GET /api/v1/quiz/history?limit=
func (h *QuizHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"limit": "limit must be a number"})
			return
		}
		limit = n
	}

	records, stats, err := h.history.Recent(c.Request.Context(), middleware.LearnerID(c), limit)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": records, "stats": stats})
}

func (h *QuizHandler) step(c *gin.Context, fn func(ctx context.Context, learnerID, sessionID uuid.UUID) (*service.QuizView, error)) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	view, err := fn(c.Request.Context(), middleware.LearnerID(c), sessionID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": view})
}
