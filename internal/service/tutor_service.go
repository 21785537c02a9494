package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/repository"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrMessageNotFound = errors.New("message not found")
)

// TutorStore persists chat session snapshots.
type TutorStore interface {
	Get(ctx context.Context, learnerID uuid.UUID, courseID string) (*model.ChatSession, error)
	List(ctx context.Context, learnerID uuid.UUID) ([]model.ChatSession, error)
	Save(ctx context.Context, s *model.ChatSession) error
	Delete(ctx context.Context, learnerID uuid.UUID, courseID string) error
}

// Recommendation is the suggested next course with the counts behind it.
type Recommendation struct {
	Course        model.TutorCourse        `json:"course"`
	MessageCounts map[model.Difficulty]int `json:"message_counts"`
}

// Exchange is one learner turn and the tutor's reply.
type Exchange struct {
	Message model.ChatMessage `json:"message"`
	Reply   model.ChatMessage `json:"reply"`
}

type TutorService struct {
	sessions TutorStore
	ai       *AIService
	speech   *SpeechService
	now      func() time.Time
	log      zerolog.Logger
}

func NewTutorService(sessions TutorStore, ai *AIService, speech *SpeechService, log zerolog.Logger) *TutorService {
	return &TutorService{
		sessions: sessions,
		ai:       ai,
		speech:   speech,
		now:      time.Now,
		log:      log.With().Str("component", "tutor_service").Logger(),
	}
}

func (s *TutorService) Courses() []model.TutorCourse {
	return content.Courses
}

// Recommend suggests a course from the learner's message volume per level.
func (s *TutorService) Recommend(ctx context.Context, learnerID uuid.UUID) (*Recommendation, error) {
	sessions, err := s.sessions.List(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	counts := map[model.Difficulty]int{
		model.DifficultyBeginner:     0,
		model.DifficultyIntermediate: 0,
		model.DifficultyAdvanced:     0,
	}
	for _, sess := range sessions {
		if course, ok := content.CourseByID(sess.CourseID); ok {
			counts[course.Difficulty] += len(sess.Messages)
		}
	}
	return &Recommendation{Course: content.Recommend(counts), MessageCounts: counts}, nil
}

// Session returns the learner's conversation for a course, opening it with
// the course's greeting on first use.
func (s *TutorService) Session(ctx context.Context, learnerID uuid.UUID, courseID string) (*model.ChatSession, error) {
	course, ok := content.CourseByID(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}

	sess, err := s.sessions.Get(ctx, learnerID, courseID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	sess = &model.ChatSession{
		LearnerID: learnerID,
		CourseID:  course.ID,
		Messages: []model.ChatMessage{{
			ID:        uuid.New(),
			Role:      model.ChatRoleAI,
			Content:   course.InitialMessage,
			Timestamp: now,
		}},
		LastUpdated: now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Send records the learner's message and asks the tutor for a reply. The
// learner's message is kept even when the reply fails.
func (s *TutorService) Send(ctx context.Context, learnerID uuid.UUID, courseID, text string) (*Exchange, error) {
	course, ok := content.CourseByID(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}
	sess, err := s.Session(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}

	history := sess.Messages
	userMsg := model.ChatMessage{
		ID:        uuid.New(),
		Role:      model.ChatRoleUser,
		Content:   strings.TrimSpace(text),
		Timestamp: s.now(),
	}
	sess.Messages = append(sess.Messages, userMsg)
	sess.LastUpdated = userMsg.Timestamp
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	reply, err := s.ai.Generate(ctx, learnerID, content.TutorReplyPrompt(course, history, userMsg.Content))
	if err != nil {
		return nil, err
	}

	aiMsg := model.ChatMessage{
		ID:        uuid.New(),
		Role:      model.ChatRoleAI,
		Content:   strings.TrimSpace(reply),
		Timestamp: s.now(),
	}
	sess.Messages = append(sess.Messages, aiMsg)
	sess.LastUpdated = aiMsg.Timestamp
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &Exchange{Message: userMsg, Reply: aiMsg}, nil
}

// DeleteMessage removes one message from the conversation.
func (s *TutorService) DeleteMessage(ctx context.Context, learnerID uuid.UUID, courseID string, messageID uuid.UUID) error {
	sess, err := s.sessions.Get(ctx, learnerID, courseID)
	if err != nil {
		return err
	}

	kept := sess.Messages[:0]
	found := false
	for _, m := range sess.Messages {
		if m.ID == messageID {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return ErrMessageNotFound
	}

	sess.Messages = kept
	sess.LastUpdated = s.now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return err
	}
	s.speech.Forget(ctx, config.CacheKey.TutorMessageAudioKey(messageID.String()))
	return nil
}

// Reset deletes the conversation and its cached audio.
func (s *TutorService) Reset(ctx context.Context, learnerID uuid.UUID, courseID string) error {
	sess, err := s.sessions.Get(ctx, learnerID, courseID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, learnerID, courseID); err != nil {
		return err
	}
	keys := make([]string, len(sess.Messages))
	for i, m := range sess.Messages {
		keys[i] = config.CacheKey.TutorMessageAudioKey(m.ID.String())
	}
	s.speech.Forget(ctx, keys...)
	return nil
}

// MessageAudio reads a message aloud with markdown removed.
func (s *TutorService) MessageAudio(ctx context.Context, learnerID uuid.UUID, courseID string, messageID uuid.UUID) (Speech, error) {
	sess, err := s.sessions.Get(ctx, learnerID, courseID)
	if err != nil {
		return Speech{}, err
	}
	for _, m := range sess.Messages {
		if m.ID != messageID {
			continue
		}
		text := content.CleanForSpeech(m.Content)
		if text == "" {
			return Speech{}, ErrEmptyText
		}
		return s.speech.Speak(ctx, learnerID, config.CacheKey.TutorMessageAudioKey(m.ID.String()), text)
	}
	return Speech{}, ErrMessageNotFound
}

// Summarize writes a short performance review and stores it on the session.
func (s *TutorService) Summarize(ctx context.Context, learnerID uuid.UUID, courseID string) (string, error) {
	course, ok := content.CourseByID(courseID)
	if !ok {
		return "", ErrCourseNotFound
	}
	sess, err := s.sessions.Get(ctx, learnerID, courseID)
	if err != nil {
		return "", err
	}

	summary, err := s.ai.Generate(ctx, learnerID, content.TutorSummaryPrompt(course, sess.Messages))
	if err != nil {
		return "", err
	}
	sess.Summary = strings.TrimSpace(summary)
	sess.LastUpdated = s.now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", err
	}
	return sess.Summary, nil
}
