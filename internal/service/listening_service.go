package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/model"
)

type ListeningService struct {
	items  ItemStore[model.ListeningData]
	ai     *AIService
	speech *SpeechService
	log    zerolog.Logger
}

func NewListeningService(items ItemStore[model.ListeningData], ai *AIService, speech *SpeechService, log zerolog.Logger) *ListeningService {
	return &ListeningService{
		items:  items,
		ai:     ai,
		speech: speech,
		log:    log.With().Str("component", "listening_service").Logger(),
	}
}

// Generate writes a two-speaker dialogue with a comprehension question.
func (s *ListeningService) Generate(ctx context.Context, learnerID uuid.UUID, req model.GenerateListeningRequest) (*model.ListeningRecord, error) {
	topic := strings.TrimSpace(req.Context)
	if topic == "" {
		topic = content.DefaultListeningTopic
	}

	raw, err := s.ai.Generate(ctx, learnerID, content.ListeningPrompt(topic, req.Difficulty))
	if err != nil {
		return nil, err
	}
	data, err := content.DecodeObject[model.ListeningData](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.ScriptKR) == "" {
		return nil, fmt.Errorf("%w: dialogue has no script", content.ErrParse)
	}

	rec := &model.ListeningRecord{
		LearnerID:  learnerID,
		Data:       data,
		Difficulty: req.Difficulty,
		Status:     model.StatusLearning,
	}
	if err := s.items.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *ListeningService) List(ctx context.Context, learnerID uuid.UUID, status *model.LearningStatus) ([]model.ListeningRecord, error) {
	return s.items.List(ctx, learnerID, status)
}

func (s *ListeningService) Get(ctx context.Context, learnerID, id uuid.UUID) (*model.ListeningRecord, error) {
	return s.items.GetByID(ctx, learnerID, id)
}

func (s *ListeningService) SetStatus(ctx context.Context, learnerID, id uuid.UUID, status model.LearningStatus) (*model.ListeningRecord, error) {
	return setItemStatus[model.ListeningData](ctx, s.items, learnerID, id, status)
}

func (s *ListeningService) Delete(ctx context.Context, learnerID, id uuid.UUID) error {
	if err := s.items.Delete(ctx, learnerID, id); err != nil {
		return err
	}
	s.speech.Forget(ctx, config.CacheKey.ListeningAudioKey(id.String()))
	return nil
}

// Audio returns speech for the whole Korean script.
func (s *ListeningService) Audio(ctx context.Context, learnerID, id uuid.UUID) (Speech, error) {
	item, err := s.items.GetByID(ctx, learnerID, id)
	if err != nil {
		return Speech{}, err
	}
	return s.speech.Speak(ctx, learnerID, config.CacheKey.ListeningAudioKey(id.String()), item.Data.ScriptKR)
}
