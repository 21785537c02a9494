package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/audio"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/provider"
	"github.com/stemsi/hanyu-backend/internal/quiz"
	"github.com/stemsi/hanyu-backend/internal/repository"
	"github.com/stemsi/hanyu-backend/internal/response"
	"github.com/stemsi/hanyu-backend/internal/service"
)

// errorMapping pairs a sentinel with the status and code it is reported as.
type errorMapping struct {
	err    error
	status int
	code   response.ErrCode
}

var sentinelErrors = []errorMapping{
	{repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{repository.ErrDuplicateWord, http.StatusConflict, response.ErrConflict},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{service.ErrInvalidSetting, http.StatusBadRequest, response.ErrInvalidSetting},
	{service.ErrCourseNotFound, http.StatusNotFound, response.ErrCourseNotFound},
	{service.ErrMessageNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrParagraphOutOfRange, http.StatusNotFound, response.ErrParagraphOutOfRange},
	{service.ErrEmptyText, http.StatusUnprocessableEntity, response.ErrEmptyText},
	{service.ErrQuizNotFound, http.StatusNotFound, response.ErrQuizNotFound},
	{service.ErrNothingToReview, http.StatusUnprocessableEntity, response.ErrQuizNothingToReview},
	{quiz.ErrNotActive, http.StatusConflict, response.ErrQuizNotActive},
	{quiz.ErrAlreadyAnswered, http.StatusConflict, response.ErrQuizAlreadyAnswered},
	{quiz.ErrNotAnswered, http.StatusConflict, response.ErrQuizNotAnswered},
	{quiz.ErrInvalidOption, http.StatusBadRequest, response.ErrQuizInvalidOption},
	{quiz.ErrNotReviewMode, http.StatusConflict, response.ErrQuizNotReview},
	{quiz.ErrNoSource, http.StatusConflict, response.ErrQuizNoSource},
	{quiz.ErrEmptySession, http.StatusBadGateway, response.ErrGenerationParse},
	{audio.ErrUnplayable, http.StatusUnprocessableEntity, response.ErrAudioUnplayable},
	{content.ErrParse, http.StatusBadGateway, response.ErrGenerationParse},
}

// classify maps a service error onto an HTTP status and error code. Unknown
// errors are internal.
func classify(err error) (int, response.ErrCode, map[string]string) {
	var pe *provider.Error
	if errors.As(err, &pe) {
		fields := map[string]string{"provider": pe.Provider}
		if pe.Hint != "" {
			fields["hint"] = pe.Hint
		}
		switch pe.Kind {
		case provider.KindConfig:
			return http.StatusServiceUnavailable, response.ErrProviderConfig, fields
		case provider.KindTransport:
			return http.StatusBadGateway, response.ErrProviderTransport, fields
		case provider.KindParse:
			return http.StatusBadGateway, response.ErrGenerationParse, fields
		default:
			fields["status"] = strconv.Itoa(pe.Status)
			return http.StatusBadGateway, response.ErrProviderError, fields
		}
	}

	for _, m := range sentinelErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code, nil
		}
	}
	return http.StatusInternalServerError, response.ErrInternal, nil
}

// fail writes err in the response envelope. Internal errors are logged with
// the request ID; expected ones are not.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	status, code, fields := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", response.RequestID(c)).Str("path", c.FullPath()).Msg("request failed")
	} else if code == response.ErrProviderError || code == response.ErrProviderTransport {
		log.Warn().Err(err).Msg("provider call failed")
	}
	if fields != nil {
		response.FailWithFields(c, status, code, fields)
		return
	}
	response.Fail(c, status, code)
}

// parseUUIDParam reads a UUID path parameter, answering 400 when malformed.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// statusFilter reads the optional ?status= query.
func statusFilter(c *gin.Context) (*model.LearningStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	s := model.LearningStatus(raw)
	if s != model.StatusLearning && s != model.StatusLearned {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"status": "status must be one of learning, learned"})
		return nil, false
	}
	return &s, true
}
