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

// ListeningHandler serves generated dialogues and their audio.
type ListeningHandler struct {
	listening *service.ListeningService
	speech    *service.SpeechService
	log       zerolog.Logger
}

// NewListeningHandler creates a new ListeningHandler.
func NewListeningHandler(listening *service.ListeningService, speech *service.SpeechService, log zerolog.Logger) *ListeningHandler {
	return &ListeningHandler{
		listening: listening,
		speech:    speech,
		log:       log.With().Str("component", "listening_handler").Logger(),
	}
}

// Generate godoc
// POST /api/v1/listening/generate
func (h *ListeningHandler) Generate(c *gin.Context) {
	var req model.GenerateListeningRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	item, err := h.listening.Generate(c.Request.Context(), middleware.LearnerID(c), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"listening": item})
}

// List godoc
// GET /api/v1/listening?status=learning|learned
func (h *ListeningHandler) List(c *gin.Context) {
	status, ok := statusFilter(c)
	if !ok {
		return
	}
	items, err := h.listening.List(c.Request.Context(), middleware.LearnerID(c), status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	if items == nil {
		items = []model.ListeningRecord{}
	}
	response.Success(c, http.StatusOK, gin.H{"listening": items})
}

// Get godoc
// GET /api/v1/listening/:id
func (h *ListeningHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.listening.Get(c.Request.Context(), middleware.LearnerID(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listening": item})
}

// UpdateStatus godoc
// PATCH /api/v1/listening/:id/status
func (h *ListeningHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}
	item, err := h.listening.SetStatus(c.Request.Context(), middleware.LearnerID(c), id, status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listening": item})
}

// Delete godoc
// DELETE /api/v1/listening/:id
func (h *ListeningHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.listening.Delete(c.Request.Context(), middleware.LearnerID(c), id); err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Audio godoc
// GET /api/v1/listening/:id/audio[?format=base64]
// Dialogue scripts are voiced with two speakers when the provider supports it.
func (h *ListeningHandler) Audio(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sp, err := h.listening.Audio(c.Request.Context(), middleware.LearnerID(c), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	deliverSpeech(c, h.speech, h.log, sp)
}
