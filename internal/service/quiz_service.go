package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/kvstore"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/quiz"
	"github.com/stemsi/hanyu-backend/internal/worker"
)

var (
	ErrQuizNotFound    = errors.New("quiz session not found")
	ErrNothingToReview = errors.New("no learning vocabulary to review")
)

const termWarmTimeout = 30 * time.Second

// JobQueue hands persistence jobs to the background workers.
type JobQueue interface {
	Push(ctx context.Context, queue string, v interface{}) error
}

// QuestionView is the current question without its answer.
type QuestionView struct {
	Prompt        string     `json:"prompt"`
	Pronunciation string     `json:"pronunciation,omitempty"`
	Options       []string   `json:"options"`
	SourceID      *uuid.UUID `json:"source_id,omitempty"`
}

// QuizSummary is the end-of-session report.
type QuizSummary struct {
	Score     int                    `json:"score"`
	Distinct  int                    `json:"distinct"`
	Results   []quiz.Result          `json:"results"`
	Missed    []string               `json:"missed"`
	Words     []model.VocabularyItem `json:"words"`
	Committed bool                   `json:"committed"`
}

// QuizView is what a learner sees of a session. The correct index is only
// revealed once the current occurrence is answered.
type QuizView struct {
	ID           uuid.UUID              `json:"id"`
	Mode         quiz.Mode              `json:"mode"`
	Phase        quiz.Phase             `json:"phase"`
	Difficulty   model.Difficulty       `json:"difficulty,omitempty"`
	Score        int                    `json:"score"`
	Position     int                    `json:"position"`
	QueueLength  int                    `json:"queue_length"`
	Answered     bool                   `json:"answered"`
	Selected     *int                   `json:"selected,omitempty"`
	CorrectIndex *int                   `json:"correct_index,omitempty"`
	Current      *QuestionView          `json:"current,omitempty"`
	StudyCards   []model.VocabularyItem `json:"study_cards,omitempty"`
	Summary      *QuizSummary           `json:"summary,omitempty"`
}

// AnswerView pairs an outcome with the updated session and the delay before
// the client should advance.
type AnswerView struct {
	Outcome      quiz.Outcome `json:"outcome"`
	AdvanceAfter int64        `json:"advance_after_ms"`
	Quiz         *QuizView    `json:"quiz"`
}

type QuizService struct {
	vocab         VocabularyStore
	ai            *AIService
	speech        *SpeechService
	store         kvstore.Store
	queue         JobQueue
	ttl           time.Duration
	answerDelay   time.Duration
	masteredDelay time.Duration
	log           zerolog.Logger
}

func NewQuizService(vocab VocabularyStore, ai *AIService, speech *SpeechService, store kvstore.Store, queue JobQueue, cfg *config.Config, log zerolog.Logger) *QuizService {
	return &QuizService{
		vocab:         vocab,
		ai:            ai,
		speech:        speech,
		store:         store,
		queue:         queue,
		ttl:           cfg.QuizSessionTTL,
		answerDelay:   cfg.QuizAdvanceDelay,
		masteredDelay: cfg.QuizMasteredDelay,
		log:           log.With().Str("component", "quiz_service").Logger(),
	}
}

// Delay returns how long to show feedback for an outcome.
func (s *QuizService) Delay(o quiz.Outcome) time.Duration {
	return quiz.AdvanceDelay(o, s.answerDelay, s.masteredDelay)
}

// StartChallenge generates fresh questions on a topic. The session opens in
// the studying phase with the cards visible.
func (s *QuizService) StartChallenge(ctx context.Context, learnerID uuid.UUID, req model.StartChallengeRequest) (*QuizView, error) {
	count := req.Count
	if count <= 0 {
		count = content.DefaultChallengeCount
	}

	existing, err := s.vocab.ListRecentWords(ctx, learnerID, content.ChallengeAvoidRecent)
	if err != nil {
		s.log.Warn().Err(err).Msg("recent words unavailable, generating without exclusions")
		existing = nil
	}

	raw, err := s.ai.Generate(ctx, learnerID, content.ChallengePrompt(req.Topic, req.Difficulty, count, existing))
	if err != nil {
		return nil, err
	}
	items, err := content.DecodeList[content.ChallengeItem](raw)
	if err != nil {
		return nil, err
	}
	questions, skipped, err := content.BuildChallengeQuestions(content.NewRand(), items)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.log.Warn().Int("skipped", skipped).Int("kept", len(questions)).Msg("dropped malformed challenge items")
	}

	sess, err := quiz.NewSession(learnerID, quiz.ModeChallenge, req.Difficulty, questions)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return viewOf(sess), nil
}

// StartReview samples the learner's learning words into an active session.
func (s *QuizService) StartReview(ctx context.Context, learnerID uuid.UUID, req model.StartReviewRequest) (*QuizView, error) {
	learningStatus := model.StatusLearning
	learning, err := s.vocab.List(ctx, learnerID, &learningStatus)
	if err != nil {
		return nil, err
	}
	if len(learning) == 0 {
		return nil, ErrNothingToReview
	}
	pool, err := s.vocab.List(ctx, learnerID, nil)
	if err != nil {
		return nil, err
	}

	questions := content.BuildReviewQuestions(content.NewRand(), learning, pool, req.Count)
	sess, err := quiz.NewSession(learnerID, quiz.ModeReview, "", questions)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return viewOf(sess), nil
}

func (s *QuizService) Get(ctx context.Context, learnerID, sessionID uuid.UUID) (*QuizView, error) {
	sess, err := s.load(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	return viewOf(sess), nil
}

// Begin ends the studying phase of a challenge.
func (s *QuizService) Begin(ctx context.Context, learnerID, sessionID uuid.UUID) (*QuizView, error) {
	sess, err := s.load(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Begin(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return viewOf(sess), nil
}

// Answer submits an option for the current occurrence.
func (s *QuizService) Answer(ctx context.Context, learnerID, sessionID uuid.UUID, index int) (*AnswerView, error) {
	sess, err := s.load(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	out, err := sess.SubmitAnswer(index)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.logResult(ctx, sess)
	go s.pronounce(sess.LearnerID, out.Term)

	return &AnswerView{
		Outcome:      out,
		AdvanceAfter: s.Delay(out).Milliseconds(),
		Quiz:         viewOf(sess),
	}, nil
}

// Mastered answers the current review question as known and marks the
// backing record learned right away.
func (s *QuizService) Mastered(ctx context.Context, learnerID, sessionID uuid.UUID) (*AnswerView, error) {
	sess, err := s.load(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	out, err := sess.MarkMastered()
	if err != nil {
		return nil, err
	}
	if err := s.vocab.UpdateStatus(ctx, learnerID, *out.SourceID, model.StatusLearned); err != nil {
		return nil, fmt.Errorf("mark learned: %w", err)
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.logResult(ctx, sess)
	go s.pronounce(sess.LearnerID, out.Term)

	return &AnswerView{
		Outcome:      out,
		AdvanceAfter: s.Delay(out).Milliseconds(),
		Quiz:         viewOf(sess),
	}, nil
}

// Advance moves past an answered occurrence.
func (s *QuizService) Advance(ctx context.Context, learnerID, sessionID uuid.UUID) (*QuizView, error) {
	sess, err := s.load(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Advance(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return viewOf(sess), nil
}

// Finish closes a session. A challenge that reached its summary commits each
// distinct word as a learning record; leaving earlier discards the session.
func (s *QuizService) Finish(ctx context.Context, learnerID, sessionID uuid.UUID) (*QuizSummary, error) {
	sess, err := s.load(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Done() && sess.Mode == quiz.ModeChallenge && !sess.Committed {
		job := worker.CommitJob{
			LearnerID:  learnerID,
			SessionID:  sess.ID,
			Difficulty: sess.Difficulty,
		}
		for _, q := range sess.DistinctQuestions() {
			job.Words = append(job.Words, q.Vocabulary)
		}
		if err := s.queue.Push(ctx, config.WorkerKey.PersistVocabularyQueue, job); err != nil {
			return nil, fmt.Errorf("enqueue commit: %w", err)
		}
		sess.Committed = true
		// a retry after a failed delete must not enqueue the words twice
		if err := s.save(ctx, sess); err != nil {
			s.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("failed to mark quiz committed")
		}
		s.log.Info().
			Str("session_id", sess.ID.String()).
			Int("words", len(job.Words)).
			Msg("challenge words queued for saving")
	}

	summary := summaryOf(sess)
	if err := s.store.Delete(ctx, config.CacheKey.QuizSessionKey(sess.ID.String())); err != nil {
		s.log.Warn().Err(err).Msg("failed to drop finished quiz snapshot")
	}
	return summary, nil
}

// pronounce synthesizes the answered term so its audio is cached by the time
// the client asks for it. It outlives the request.
func (s *QuizService) pronounce(learnerID uuid.UUID, term string) {
	if s.speech == nil || term == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), termWarmTimeout)
	defer cancel()

	speech, err := s.speech.Term(ctx, learnerID, term)
	if err != nil {
		s.log.Warn().Err(err).Str("term", term).Msg("term pronunciation failed")
		return
	}
	s.log.Debug().Str("term", term).Bool("cached", speech.Cached).Msg("term pronounced")
}

// logResult queues the newest answer log entry. Failures only cost history.
func (s *QuizService) logResult(ctx context.Context, sess *quiz.Session) {
	seq := len(sess.Results) - 1
	r := sess.Results[seq]
	job := worker.ResultJob{
		LearnerID:     sess.LearnerID,
		SessionID:     sess.ID,
		Mode:          string(sess.Mode),
		Seq:           seq,
		Prompt:        r.Prompt,
		WasCorrect:    r.WasCorrect,
		WasAutoMarked: r.WasAutoMarked,
		AnsweredAt:    time.Now(),
	}
	if err := s.queue.Push(ctx, config.WorkerKey.PersistQuizResultsQueue, job); err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("failed to queue quiz result")
	}
}

func (s *QuizService) load(ctx context.Context, learnerID, sessionID uuid.UUID) (*quiz.Session, error) {
	raw, ok, err := s.store.Get(ctx, config.CacheKey.QuizSessionKey(sessionID.String()))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuizNotFound
	}

	var sess quiz.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode quiz snapshot: %w", err)
	}
	if sess.LearnerID != learnerID {
		return nil, ErrQuizNotFound
	}
	if sess.Failed == nil {
		sess.Failed = make(map[string]bool)
	}
	return &sess, nil
}

func (s *QuizService) save(ctx context.Context, sess *quiz.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, config.CacheKey.QuizSessionKey(sess.ID.String()), string(raw), s.ttl)
}

func viewOf(sess *quiz.Session) *QuizView {
	v := &QuizView{
		ID:          sess.ID,
		Mode:        sess.Mode,
		Phase:       sess.Phase,
		Difficulty:  sess.Difficulty,
		Score:       sess.Score,
		Position:    sess.Cursor + 1,
		QueueLength: len(sess.Queue),
		Answered:    sess.Answered,
		Selected:    sess.Selected,
	}

	switch sess.Phase {
	case quiz.PhaseStudying:
		for _, q := range sess.DistinctQuestions() {
			v.StudyCards = append(v.StudyCards, q.Vocabulary)
		}
	case quiz.PhaseSummary:
		v.Summary = summaryOf(sess)
	}

	if q, ok := sess.Current(); ok && sess.Phase == quiz.PhaseActive {
		v.Current = &QuestionView{
			Prompt:        q.Prompt,
			Pronunciation: q.Vocabulary.Pronunciation,
			Options:       q.Options,
			SourceID:      q.SourceID,
		}
		if sess.Answered {
			idx := q.CorrectIndex
			v.CorrectIndex = &idx
		}
	}
	return v
}

func summaryOf(sess *quiz.Session) *QuizSummary {
	distinct := sess.DistinctQuestions()
	words := make([]model.VocabularyItem, 0, len(distinct))
	for _, q := range distinct {
		words = append(words, q.Vocabulary)
	}
	return &QuizSummary{
		Score:     sess.Score,
		Distinct:  len(distinct),
		Results:   sess.Results,
		Missed:    sess.Missed(),
		Words:     words,
		Committed: sess.Committed,
	}
}
