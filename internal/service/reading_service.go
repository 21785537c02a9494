package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/model"
	"golang.org/x/sync/errgroup"
)

// ReadingPrefetchLimit bounds concurrent paragraph synthesis.
const ReadingPrefetchLimit = 3

var ErrParagraphOutOfRange = errors.New("paragraph index out of range")

// PrefetchResult counts paragraph audio warmed by Prefetch.
type PrefetchResult struct {
	Paragraphs int `json:"paragraphs"`
	Ready      int `json:"ready"`
	Failed     int `json:"failed"`
}

type ReadingService struct {
	articles ItemStore[model.ArticleData]
	ai       *AIService
	speech   *SpeechService
	log      zerolog.Logger
}

func NewReadingService(articles ItemStore[model.ArticleData], ai *AIService, speech *SpeechService, log zerolog.Logger) *ReadingService {
	return &ReadingService{
		articles: articles,
		ai:       ai,
		speech:   speech,
		log:      log.With().Str("component", "reading_service").Logger(),
	}
}

// Generate writes a new article on a topic and saves it.
func (s *ReadingService) Generate(ctx context.Context, learnerID uuid.UUID, req model.GenerateArticleRequest) (*model.ArticleRecord, error) {
	raw, err := s.ai.Generate(ctx, learnerID, content.ArticlePrompt(req.Topic, req.Difficulty))
	if err != nil {
		return nil, err
	}
	data, err := content.DecodeObject[model.ArticleData](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.TitleKR) == "" || len(content.Paragraphs(data.ContentKR)) == 0 {
		return nil, fmt.Errorf("%w: article has no title or body", content.ErrParse)
	}

	rec := &model.ArticleRecord{
		LearnerID:  learnerID,
		Data:       data,
		Difficulty: req.Difficulty,
		Status:     model.StatusLearning,
	}
	if err := s.articles.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *ReadingService) List(ctx context.Context, learnerID uuid.UUID, status *model.LearningStatus) ([]model.ArticleRecord, error) {
	return s.articles.List(ctx, learnerID, status)
}

func (s *ReadingService) Get(ctx context.Context, learnerID, id uuid.UUID) (*model.ArticleRecord, error) {
	return s.articles.GetByID(ctx, learnerID, id)
}

func (s *ReadingService) SetStatus(ctx context.Context, learnerID, id uuid.UUID, status model.LearningStatus) (*model.ArticleRecord, error) {
	return setItemStatus[model.ArticleData](ctx, s.articles, learnerID, id, status)
}

// Delete removes the article and its cached paragraph audio.
func (s *ReadingService) Delete(ctx context.Context, learnerID, id uuid.UUID) error {
	article, err := s.articles.GetByID(ctx, learnerID, id)
	if err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, learnerID, id); err != nil {
		return err
	}

	paragraphs := content.Paragraphs(article.Data.ContentKR)
	keys := make([]string, len(paragraphs))
	for i := range paragraphs {
		keys[i] = config.CacheKey.ReadingParagraphAudioKey(id.String(), i)
	}
	s.speech.Forget(ctx, keys...)
	return nil
}

// ParagraphAudio returns speech for one Korean paragraph, cached per index.
func (s *ReadingService) ParagraphAudio(ctx context.Context, learnerID, id uuid.UUID, index int) (Speech, error) {
	article, err := s.articles.GetByID(ctx, learnerID, id)
	if err != nil {
		return Speech{}, err
	}
	paragraphs := content.Paragraphs(article.Data.ContentKR)
	if index < 0 || index >= len(paragraphs) {
		return Speech{}, ErrParagraphOutOfRange
	}
	return s.speech.Speak(ctx, learnerID, config.CacheKey.ReadingParagraphAudioKey(id.String(), index), paragraphs[index])
}

// Prefetch synthesizes every paragraph concurrently. Individual failures
// are counted, not returned.
func (s *ReadingService) Prefetch(ctx context.Context, learnerID, id uuid.UUID) (PrefetchResult, error) {
	article, err := s.articles.GetByID(ctx, learnerID, id)
	if err != nil {
		return PrefetchResult{}, err
	}
	paragraphs := content.Paragraphs(article.Data.ContentKR)

	var ready, failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(ReadingPrefetchLimit)

	for i, text := range paragraphs {
		i, text := i, text
		g.Go(func() error {
			key := config.CacheKey.ReadingParagraphAudioKey(id.String(), i)
			if _, err := s.speech.Speak(ctx, learnerID, key, text); err != nil {
				s.log.Warn().Err(err).Int("paragraph", i).Msg("paragraph prefetch failed")
				failed.Add(1)
				return nil
			}
			ready.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return PrefetchResult{
		Paragraphs: len(paragraphs),
		Ready:      int(ready.Load()),
		Failed:     int(failed.Load()),
	}, nil
}
