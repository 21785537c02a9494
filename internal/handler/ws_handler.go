package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/middleware"
	"github.com/stemsi/hanyu-backend/internal/quiz"
	"github.com/stemsi/hanyu-backend/internal/response"
	"github.com/stemsi/hanyu-backend/internal/service"
	ws "github.com/stemsi/hanyu-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a quiz session. After each answer the server advances
// on its own once the feedback delay elapses.
type WSHandler struct {
	quiz     QuizFlow
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(quiz QuizFlow, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		quiz:     quiz,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// quizStream holds the per-connection state. Only the loop goroutine writes.
type quizStream struct {
	h         *WSHandler
	conn      *websocket.Conn
	learnerID uuid.UUID
	sessionID uuid.UUID
	log       zerolog.Logger
	timer     *time.Timer
	timerC    <-chan time.Time
}

// QuizStream godoc
// WS /ws/v1/quiz/:session_id/stream?token=
func (h *WSHandler) QuizStream(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}
	learnerID := middleware.LearnerID(c)

	view, err := h.quiz.Get(c.Request.Context(), learnerID, sessionID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s := &quizStream{
		h:         h,
		conn:      conn,
		learnerID: learnerID,
		sessionID: sessionID,
		log: h.log.With().
			Str("learner_id", learnerID.String()).
			Str("session_id", sessionID.String()).
			Logger(),
	}
	defer s.stopTimer()

	s.log.Info().Msg("quiz stream connected")
	if err := ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, Quiz: view}); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.run(ctx, s.readLoop(ctx))
}

// readLoop decodes client messages until the connection drops.
func (s *quizStream) readLoop(ctx context.Context) <-chan ws.Request {
	msgs := make(chan ws.Request)
	go func() {
		defer close(msgs)
		for {
			var req ws.Request
			if err := ws.ReadJSON(s.conn, &req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Warn().Err(err).Msg("Unexpected close")
				} else {
					s.log.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case msgs <- req:
			case <-ctx.Done():
				return
			}
		}
	}()
	return msgs
}

func (s *quizStream) run(ctx context.Context, msgs <-chan ws.Request) {
	for {
		select {
		case req, ok := <-msgs:
			if !ok {
				return
			}
			if done := s.handle(ctx, req); done {
				return
			}
		case <-s.timerC:
			s.timerC = nil
			s.advance(ctx, true)
		}
	}
}

// handle dispatches one action. It reports true when the stream should end.
func (s *quizStream) handle(ctx context.Context, req ws.Request) bool {
	switch req.Action {
	case ws.ActionPing:
		_ = ws.WriteTyped(s.conn, ws.PongResponse{Event: ws.EventPong})
	case ws.ActionBegin:
		view, err := s.h.quiz.Begin(ctx, s.learnerID, s.sessionID)
		if err != nil {
			s.writeError(err)
			return false
		}
		_ = ws.WriteTyped(s.conn, ws.StateResponse{Event: ws.EventState, Quiz: view})
	case ws.ActionAnswer:
		if req.Index == nil {
			_ = ws.WriteError(s.conn, string(response.ErrValidation), "index is required")
			return false
		}
		res, err := s.h.quiz.Answer(ctx, s.learnerID, s.sessionID, *req.Index)
		s.outcome(res, err)
	case ws.ActionMastered:
		res, err := s.h.quiz.Mastered(ctx, s.learnerID, s.sessionID)
		s.outcome(res, err)
	case ws.ActionAdvance:
		s.stopTimer()
		s.advance(ctx, false)
	case ws.ActionFinish:
		s.stopTimer()
		summary, err := s.h.quiz.Finish(ctx, s.learnerID, s.sessionID)
		if err != nil {
			s.writeError(err)
			return false
		}
		_ = ws.WriteTyped(s.conn, ws.SummaryResponse{Event: ws.EventSummary, Summary: summary})
		s.log.Info().Int("score", summary.Score).Msg("quiz finished")
		return true
	default:
		s.log.Warn().Str("action", string(req.Action)).Msg("Unknown action")
		_ = ws.WriteError(s.conn, string(response.ErrInvalidPayload), "unknown action: "+string(req.Action))
	}
	return false
}

// outcome reports a submission and arms the auto-advance timer.
func (s *quizStream) outcome(res *service.AnswerView, err error) {
	if err != nil {
		s.writeError(err)
		return
	}
	_ = ws.WriteTyped(s.conn, ws.OutcomeResponse{
		Event:        ws.EventOutcome,
		Outcome:      res.Outcome,
		AdvanceAfter: res.AdvanceAfter,
		Quiz:         res.Quiz,
	})
	s.stopTimer()
	s.timer = time.NewTimer(time.Duration(res.AdvanceAfter) * time.Millisecond)
	s.timerC = s.timer.C
}

// advance moves past the answered question. A timer-driven advance that
// lost a race with a manual one is dropped silently.
func (s *quizStream) advance(ctx context.Context, auto bool) {
	view, err := s.h.quiz.Advance(ctx, s.learnerID, s.sessionID)
	if err != nil {
		if auto && (errors.Is(err, quiz.ErrNotAnswered) || errors.Is(err, quiz.ErrNotActive)) {
			s.log.Debug().Err(err).Msg("auto-advance skipped")
			return
		}
		s.writeError(err)
		return
	}
	_ = ws.WriteTyped(s.conn, ws.StateResponse{Event: ws.EventState, Quiz: view})
}

func (s *quizStream) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerC = nil
}

func (s *quizStream) writeError(err error) {
	status, code, _ := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("quiz stream step failed")
	}
	_ = ws.WriteError(s.conn, string(code), response.GetMessage(code))
}
