package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/audio"
	"github.com/stemsi/hanyu-backend/internal/middleware"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/response"
	"github.com/stemsi/hanyu-backend/internal/service"
	"github.com/stemsi/hanyu-backend/internal/validator"
)

// formatBase64 makes audio endpoints answer with the raw payload in the
// JSON envelope instead of rendered audio.
const formatBase64 = "base64"

// AudioHandler renders TTS payloads into playable audio.
type AudioHandler struct {
	speech *service.SpeechService
	log    zerolog.Logger
}

// NewAudioHandler creates a new AudioHandler.
func NewAudioHandler(speech *service.SpeechService, log zerolog.Logger) *AudioHandler {
	return &AudioHandler{
		speech: speech,
		log:    log.With().Str("component", "audio_handler").Logger(),
	}
}

// Play godoc
// POST /api/v1/audio/play
// Resolves an opaque base64 payload into WAV or MP3 through the fallback chain.
func (h *AudioHandler) Play(c *gin.Context) {
	var req model.PlayAudioRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	renderAudio(c, h.speech, h.log, req.Audio)
}

// Term godoc
// POST /api/v1/audio/term
// Pronounces a single word or phrase, served from cache when possible.
func (h *AudioHandler) Term(c *gin.Context) {
	var req model.TermAudioRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sp, err := h.speech.Term(c.Request.Context(), middleware.LearnerID(c), req.Term)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	deliverSpeech(c, h.speech, h.log, sp)
}

// deliver answers with a synthesized payload, rendered unless the client
// asked for ?format=base64.
func deliverSpeech(c *gin.Context, speech *service.SpeechService, log zerolog.Logger, sp service.Speech) {
	if c.Query("format") == formatBase64 {
		response.Success(c, http.StatusOK, sp)
		return
	}
	c.Header("X-Audio-Cached", strconv.FormatBool(sp.Cached))
	renderAudio(c, speech, log, sp.Payload)
}

func renderAudio(c *gin.Context, speech *service.SpeechService, log zerolog.Logger, payload string) {
	sink := audio.NewResponseSink(c.Writer)
	res, err := speech.Render(c.Request.Context(), sink, payload)
	if err != nil {
		if sink.Written() {
			log.Warn().Err(err).Msg("audio failed after streaming started")
			return
		}
		fail(c, log, err)
		return
	}
	log.Debug().
		Str("strategy", res.Strategy).
		Strs("attempts", res.Attempts).
		Int("bytes", res.Bytes).
		Msg("audio rendered")
}
