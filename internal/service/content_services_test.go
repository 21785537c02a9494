package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/audio"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/provider"
	"github.com/stemsi/hanyu-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestVocabularyService_GenerateSkipsBlankAndDuplicateWords(t *testing.T) {
	ctx := context.Background()
	g := newFakeGemini(t)
	g.setText(`[
		{"word":"사과","pronunciation":"sagwa","meaning":"苹果","example_kr":"","example_cn":""},
		{"word":"학교","pronunciation":"hakgyo","meaning":"学校","example_kr":"","example_cn":""},
		{"word":"  ","meaning":"空"}
	]`)
	vocab := &fakeVocab{}
	learner := uuid.New()
	vocab.seed(learner, model.StatusLearned, "사과", "苹果")

	svc := NewVocabularyService(vocab, newTestAI(g), zerolog.Nop())
	recs, err := svc.Generate(ctx, learner, model.GenerateVocabularyRequest{Topic: "学校", Difficulty: model.DifficultyBeginner})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "학교", recs[0].Data.Word)
	require.Equal(t, model.StatusLearning, recs[0].Status)
	require.Contains(t, g.lastUser, "사과")

	all, err := svc.List(ctx, learner, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	stats, err := svc.Stats(ctx, learner)
	require.NoError(t, err)
	require.Equal(t, VocabularyStats{Learning: 1, Learned: 1, Total: 2}, stats)
}

func TestVocabularyService_NothingUsableIsParseError(t *testing.T) {
	g := newFakeGemini(t)
	g.setText(`{"cards":[{"word":"","meaning":""}]}`)
	svc := NewVocabularyService(&fakeVocab{}, newTestAI(g), zerolog.Nop())

	_, err := svc.Generate(context.Background(), uuid.New(), model.GenerateVocabularyRequest{Topic: "t", Difficulty: model.DifficultyBeginner})
	require.ErrorIs(t, err, content.ErrParse)
}

func TestVocabularyService_SetStatusToggles(t *testing.T) {
	ctx := context.Background()
	vocab := &fakeVocab{}
	learner := uuid.New()
	ids := vocab.seed(learner, model.StatusLearning, "물", "水")
	svc := NewVocabularyService(vocab, nil, zerolog.Nop())

	rec, err := svc.SetStatus(ctx, learner, ids[0], "")
	require.NoError(t, err)
	require.Equal(t, model.StatusLearned, rec.Status)

	rec, err = svc.SetStatus(ctx, learner, ids[0], "")
	require.NoError(t, err)
	require.Equal(t, model.StatusLearning, rec.Status)

	rec, err = svc.SetStatus(ctx, learner, ids[0], model.StatusLearning)
	require.NoError(t, err)
	require.Equal(t, model.StatusLearning, rec.Status)

	_, err = svc.SetStatus(ctx, uuid.New(), ids[0], "")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProviderErrorsPassThrough(t *testing.T) {
	g := newFakeGemini(t)
	g.failText = true
	svc := NewVocabularyService(&fakeVocab{}, newTestAI(g), zerolog.Nop())

	_, err := svc.Generate(context.Background(), uuid.New(), model.GenerateVocabularyRequest{Topic: "t", Difficulty: model.DifficultyBeginner})
	var perr *provider.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, provider.KindProvider, perr.Kind)
	require.Equal(t, 503, perr.Status)
}

const articleJSON = `{
	"title_kr": "나의 하루",
	"title_cn": "我的一天",
	"content_kr": "아침에 일어나요.\n\n학교에 가요.\n집에 와요.",
	"content_cn": "早上起床。\n去学校。\n回家。",
	"key_words": [{"word":"학교","pronunciation":"hakgyo","meaning":"学校","example_kr":"","example_cn":""}]
}`

func TestReadingService_GenerateAndParagraphAudio(t *testing.T) {
	ctx := context.Background()
	g := newFakeGemini(t)
	g.setText(articleJSON)
	ai := newTestAI(g)
	speech, store := newTestSpeech(ai)
	articles := &fakeItems[model.ArticleData]{}
	svc := NewReadingService(articles, ai, speech, zerolog.Nop())
	learner := uuid.New()

	rec, err := svc.Generate(ctx, learner, model.GenerateArticleRequest{Topic: "日常", Difficulty: model.DifficultyBeginner})
	require.NoError(t, err)
	require.Equal(t, "나의 하루", rec.Data.TitleKR)
	require.Len(t, rec.Data.KeyWords, 1)

	sp, err := svc.ParagraphAudio(ctx, learner, rec.ID, 1)
	require.NoError(t, err)
	require.False(t, sp.Cached)
	require.NotEmpty(t, sp.Payload)

	sp, err = svc.ParagraphAudio(ctx, learner, rec.ID, 1)
	require.NoError(t, err)
	require.True(t, sp.Cached)
	_, tts := g.calls()
	require.Equal(t, 1, tts)
	require.Equal(t, []string{"학교에 가요."}, g.ttsTexts)

	_, err = svc.ParagraphAudio(ctx, learner, rec.ID, 3)
	require.ErrorIs(t, err, ErrParagraphOutOfRange)

	res, err := svc.Prefetch(ctx, learner, rec.ID)
	require.NoError(t, err)
	require.Equal(t, PrefetchResult{Paragraphs: 3, Ready: 3}, res)
	_, tts = g.calls()
	require.Equal(t, 3, tts)

	require.NoError(t, svc.Delete(ctx, learner, rec.ID))
	_, ok, _ := store.Get(ctx, config.CacheKey.ReadingParagraphAudioKey(rec.ID.String(), 0))
	require.False(t, ok)
	_, err = svc.Get(ctx, learner, rec.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReadingService_RejectsEmptyArticle(t *testing.T) {
	g := newFakeGemini(t)
	g.setText(`{"title_kr":"","content_kr":""}`)
	ai := newTestAI(g)
	speech, _ := newTestSpeech(ai)
	svc := NewReadingService(&fakeItems[model.ArticleData]{}, ai, speech, zerolog.Nop())

	_, err := svc.Generate(context.Background(), uuid.New(), model.GenerateArticleRequest{Topic: "t", Difficulty: model.DifficultyBeginner})
	require.ErrorIs(t, err, content.ErrParse)
}

func TestListeningService_DefaultTopicAndAudio(t *testing.T) {
	ctx := context.Background()
	g := newFakeGemini(t)
	g.setText(`{"script_kr":"A: 안녕하세요\nB: 네, 안녕하세요","script_cn":"A: 你好\nB: 你好","question_cn":"他们在做什么？","answer_cn":"打招呼"}`)
	ai := newTestAI(g)
	speech, _ := newTestSpeech(ai)
	svc := NewListeningService(&fakeItems[model.ListeningData]{}, ai, speech, zerolog.Nop())
	learner := uuid.New()

	rec, err := svc.Generate(ctx, learner, model.GenerateListeningRequest{Difficulty: model.DifficultyBeginner})
	require.NoError(t, err)
	require.Contains(t, g.lastUser, content.DefaultListeningTopic)

	sp, err := svc.Audio(ctx, learner, rec.ID)
	require.NoError(t, err)
	require.False(t, sp.Cached)
	sp, err = svc.Audio(ctx, learner, rec.ID)
	require.NoError(t, err)
	require.True(t, sp.Cached)

	updated, err := svc.SetStatus(ctx, learner, rec.ID, "")
	require.NoError(t, err)
	require.Equal(t, model.StatusLearned, updated.Status)
}

func TestSpeechService_TermAndRender(t *testing.T) {
	ctx := context.Background()
	g := newFakeGemini(t)
	ai := newTestAI(g)
	speech, store := newTestSpeech(ai)
	learner := uuid.New()

	sp, err := speech.Term(ctx, learner, " 사과 ")
	require.NoError(t, err)
	_, ok, _ := store.Get(ctx, config.CacheKey.TermAudioKey(provider.Gemini, "사과"))
	require.True(t, ok)

	_, err = speech.Term(ctx, learner, "  ")
	require.ErrorIs(t, err, ErrEmptyText)

	sink := &audio.MemorySink{}
	res, err := speech.Render(ctx, sink, sp.Payload)
	require.NoError(t, err)
	require.Equal(t, audio.StrategyRawPCM, res.Strategy)
	require.Equal(t, "audio/wav", sink.ContentType)

	_, err = speech.Render(ctx, &audio.MemorySink{}, "")
	require.ErrorIs(t, err, audio.ErrUnplayable)
}
