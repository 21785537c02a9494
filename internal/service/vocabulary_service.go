package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/repository"
)

type VocabularyService struct {
	vocab VocabularyStore
	ai    *AIService
	log   zerolog.Logger
}

func NewVocabularyService(vocab VocabularyStore, ai *AIService, log zerolog.Logger) *VocabularyService {
	return &VocabularyService{
		vocab: vocab,
		ai:    ai,
		log:   log.With().Str("component", "vocabulary_service").Logger(),
	}
}

// Generate asks for a fresh card list on a topic and saves the new words as
// learning records. Words the learner already saved are skipped.
func (s *VocabularyService) Generate(ctx context.Context, learnerID uuid.UUID, req model.GenerateVocabularyRequest) ([]model.VocabularyRecord, error) {
	recent, err := s.vocab.ListRecentWords(ctx, learnerID, content.VocabularyAvoidRecent)
	if err != nil {
		s.log.Warn().Err(err).Msg("recent words unavailable, generating without exclusions")
		recent = nil
	}

	raw, err := s.ai.Generate(ctx, learnerID, content.VocabularyListPrompt(req.Topic, req.Difficulty, recent))
	if err != nil {
		return nil, err
	}
	items, err := content.DecodeList[model.VocabularyItem](raw)
	if err != nil {
		return nil, err
	}

	records := make([]model.VocabularyRecord, 0, len(items))
	usable := 0
	for _, it := range items {
		if strings.TrimSpace(it.Word) == "" || strings.TrimSpace(it.Meaning) == "" {
			continue
		}
		usable++
		rec := model.VocabularyRecord{
			LearnerID:  learnerID,
			Data:       it,
			Difficulty: req.Difficulty,
			Status:     model.StatusLearning,
		}
		if err := s.vocab.Create(ctx, &rec); err != nil {
			if errors.Is(err, repository.ErrDuplicateWord) {
				s.log.Debug().Str("word", it.Word).Msg("word already saved, skipping")
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}

	if usable == 0 {
		return nil, fmt.Errorf("%w: no usable vocabulary", content.ErrParse)
	}
	return records, nil
}

// VocabularyStats counts saved words per review state.
type VocabularyStats struct {
	Learning int `json:"learning"`
	Learned  int `json:"learned"`
	Total    int `json:"total"`
}

// Stats reports how many saved words are still being learned.
func (s *VocabularyService) Stats(ctx context.Context, learnerID uuid.UUID) (VocabularyStats, error) {
	counts, err := s.vocab.CountByStatus(ctx, learnerID)
	if err != nil {
		return VocabularyStats{}, err
	}
	st := VocabularyStats{
		Learning: counts[model.StatusLearning],
		Learned:  counts[model.StatusLearned],
	}
	st.Total = st.Learning + st.Learned
	return st, nil
}

func (s *VocabularyService) List(ctx context.Context, learnerID uuid.UUID, status *model.LearningStatus) ([]model.VocabularyRecord, error) {
	return s.vocab.List(ctx, learnerID, status)
}

// SetStatus applies status, or toggles it when empty.
func (s *VocabularyService) SetStatus(ctx context.Context, learnerID, id uuid.UUID, status model.LearningStatus) (*model.VocabularyRecord, error) {
	return setItemStatus[model.VocabularyItem](ctx, s.vocab, learnerID, id, status)
}

func (s *VocabularyService) Delete(ctx context.Context, learnerID, id uuid.UUID) error {
	return s.vocab.Delete(ctx, learnerID, id)
}
