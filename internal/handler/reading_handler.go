package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/middleware"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/response"
	"github.com/stemsi/hanyu-backend/internal/service"
	"github.com/stemsi/hanyu-backend/internal/validator"
)

// ReadingHandler serves generated articles and their paragraph audio.
type ReadingHandler struct {
	reading *service.ReadingService
	speech  *service.SpeechService
	log     zerolog.Logger
}

// NewReadingHandler creates a new ReadingHandler.
func NewReadingHandler(reading *service.ReadingService, speech *service.SpeechService, log zerolog.Logger) *ReadingHandler {
	return &ReadingHandler{
		reading: reading,
		speech:  speech,
		log:     log.With().Str("component", "reading_handler").Logger(),
	}
}

// Generate godoc
// POST /api/v1/reading/generate
func (h *ReadingHandler) Generate(c *gin.Context) {
	var req model.GenerateArticleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	article, err := h.reading.Generate(c.Request.Context(), middleware.LearnerID(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"article": article})
}

// List godoc
// GET /api/v1/reading?status=learning|learned
func (h *ReadingHandler) List(c *gin.Context) {
	status, ok := statusFilter(c)
	if !ok {
		return
	}

	articles, err := h.reading.List(c.Request.Context(), middleware.LearnerID(c), status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if articles == nil {
		articles = []model.ArticleRecord{}
	}
	response.Success(c, http.StatusOK, gin.H{"articles": articles})
}

// Get godoc
// GET /api/v1/reading/:id
func (h *ReadingHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	article, err := h.reading.Get(c.Request.Context(), middleware.LearnerID(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"article": article})
}

// UpdateStatus godoc
// PATCH /api/v1/reading/:id/status
func (h *ReadingHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}
	article, err := h.reading.SetStatus(c.Request.Context(), middleware.LearnerID(c), id, status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"article": article})
}

// Delete godoc
// DELETE /api/v1/reading/:id
// Also drops cached paragraph audio.
func (h *ReadingHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.reading.Delete(c.Request.Context(), middleware.LearnerID(c), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ParagraphAudio godoc
// GET /api/v1/reading/:id/paragraphs/:index/audio[?format=base64]
func (h *ReadingHandler) ParagraphAudio(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sp, err := h.reading.ParagraphAudio(c.Request.Context(), middleware.LearnerID(c), id, index)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	deliverSpeech(c, h.speech, h.log, sp)
}

// Prefetch godoc
// POST /api/v1/reading/:id/audio/prefetch
// Synthesizes every paragraph into the audio cache.
func (h *ReadingHandler) Prefetch(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := h.reading.Prefetch(c.Request.Context(), middleware.LearnerID(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
