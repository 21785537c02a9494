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

// VocabularyHandler serves generated word cards.
type VocabularyHandler struct {
	vocab *service.VocabularyService
	log   zerolog.Logger
}

// NewVocabularyHandler creates a new VocabularyHandler.
func NewVocabularyHandler(vocab *service.VocabularyService, log zerolog.Logger) *VocabularyHandler {
	return &VocabularyHandler{
		vocab: vocab,
		log:   log.With().Str("component", "vocabulary_handler").Logger(),
	}
}

// Generate godoc
// POST /api/v1/vocabulary/generate
// Generates word cards on a topic and saves them as learning.
func (h *VocabularyHandler) Generate(c *gin.Context) {
	var req model.GenerateVocabularyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	records, err := h.vocab.Generate(c.Request.Context(), middleware.LearnerID(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"vocabulary": records})
}

// List godoc
// GET /api/v1/vocabulary?status=learning|learned
func (h *VocabularyHandler) List(c *gin.Context) {
	status, ok := statusFilter(c)
	if !ok {
		return
	}

	records, err := h.vocab.List(c.Request.Context(), middleware.LearnerID(c), status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if records == nil {
		records = []model.VocabularyRecord{}
	}
	response.Success(c, http.StatusOK, gin.H{"vocabulary": records})
}

// Stats godoc
// GET /api/v1/vocabulary/stats
func (h *VocabularyHandler) Stats(c *gin.Context) {
	stats, err := h.vocab.Stats(c.Request.Context(), middleware.LearnerID(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// UpdateStatus godoc
// PATCH /api/v1/vocabulary/:id/status
// An empty body toggles between learning and learned.
func (h *VocabularyHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}

	record, err := h.vocab.SetStatus(c.Request.Context(), middleware.LearnerID(c), id, status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"vocabulary": record})
}

// Delete godoc
// DELETE /api/v1/vocabulary/:id
func (h *VocabularyHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.vocab.Delete(c.Request.Context(), middleware.LearnerID(c), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// bindStatus reads an optional UpdateStatusRequest. No body means toggle.
func bindStatus(c *gin.Context) (model.LearningStatus, bool) {
	if c.Request.ContentLength == 0 {
		return "", true
	}
	var req model.UpdateStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return "", false
	}
	return req.Status, true
}
