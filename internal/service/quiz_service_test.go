package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/content"
	"github.com/stemsi/hanyu-backend/internal/kvstore"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/quiz"
	"github.com/stemsi/hanyu-backend/internal/worker"
	"github.com/stretchr/testify/require"
)

const challengeJSON = "```json\n" + `[
  {"word":"사과","pronunciation":"sagwa","meaning":"苹果","example_kr":"사과를 먹어요","example_cn":"吃苹果","distractors":["香蕉","葡萄","梨"]},
  {"word":"물","pronunciation":"mul","meaning":"水","example_kr":"물을 마셔요","example_cn":"喝水","distractors":["火","土","风"]},
  {"word":"","meaning":"空","distractors":["x"]}
]` + "\n```"

type quizFixture struct {
	svc     *QuizService
	vocab   *fakeVocab
	queue   *fakeQueue
	store   *kvstore.MemoryStore
	gemini  *fakeGemini
	learner uuid.UUID
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	g := newFakeGemini(t)
	g.setText(challengeJSON)
	f := &quizFixture{
		vocab:   &fakeVocab{},
		queue:   &fakeQueue{},
		store:   kvstore.NewMemoryStore(0),
		gemini:  g,
		learner: uuid.New(),
	}
	cfg := &config.Config{
		QuizSessionTTL:    time.Hour,
		QuizAdvanceDelay:  2000 * time.Millisecond,
		QuizMasteredDelay: 1200 * time.Millisecond,
	}
	ai := newTestAI(g)
	speech, _ := newTestSpeech(ai)
	f.svc = NewQuizService(f.vocab, ai, speech, f.store, f.queue, cfg, zerolog.Nop())
	return f
}

func TestQuizService_ChallengeFlow(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.vocab.seed(f.learner, model.StatusLearning, "학교", "学校")

	view, err := f.svc.StartChallenge(ctx, f.learner, model.StartChallengeRequest{
		Topic: "食物", Difficulty: model.DifficultyBeginner, Count: 2,
	})
	require.NoError(t, err)
	require.Equal(t, quiz.PhaseStudying, view.Phase)
	require.Len(t, view.StudyCards, 2)
	require.Nil(t, view.Current)
	require.Contains(t, f.gemini.lastUser, "학교")

	// answering before the study phase ends is rejected
	_, err = f.svc.Answer(ctx, f.learner, view.ID, 0)
	require.ErrorIs(t, err, quiz.ErrNotActive)

	view, err = f.svc.Begin(ctx, f.learner, view.ID)
	require.NoError(t, err)
	require.Equal(t, quiz.PhaseActive, view.Phase)
	require.NotNil(t, view.Current)
	require.Nil(t, view.CorrectIndex)
	require.Len(t, view.Current.Options, 4)

	// miss the first question on purpose
	sess := f.snapshot(t, view.ID)
	first := sess.Queue[0]
	wrong := (first.CorrectIndex + 1) % len(first.Options)

	ans, err := f.svc.Answer(ctx, f.learner, view.ID, wrong)
	require.NoError(t, err)
	require.False(t, ans.Outcome.Correct)
	require.True(t, ans.Outcome.Requeued)
	require.EqualValues(t, 2000, ans.AdvanceAfter)
	require.Equal(t, 3, ans.Quiz.QueueLength)
	require.NotNil(t, ans.Quiz.CorrectIndex)
	require.Equal(t, first.CorrectIndex, *ans.Quiz.CorrectIndex)

	_, err = f.svc.Answer(ctx, f.learner, view.ID, first.CorrectIndex)
	require.ErrorIs(t, err, quiz.ErrAlreadyAnswered)

	for {
		view, err = f.svc.Advance(ctx, f.learner, view.ID)
		require.NoError(t, err)
		if view.Phase == quiz.PhaseSummary {
			break
		}
		sess = f.snapshot(t, view.ID)
		q := sess.Queue[sess.Cursor]
		_, err = f.svc.Answer(ctx, f.learner, view.ID, q.CorrectIndex)
		require.NoError(t, err)
	}

	require.NotNil(t, view.Summary)
	require.Equal(t, 1, view.Summary.Score)
	require.Equal(t, 2, view.Summary.Distinct)
	require.Len(t, view.Summary.Results, 3)
	require.Equal(t, []string{first.Prompt}, view.Summary.Missed)

	results := f.queue.on(config.WorkerKey.PersistQuizResultsQueue)
	require.Len(t, results, 3)
	var firstResult worker.ResultJob
	require.NoError(t, json.Unmarshal(results[0], &firstResult))
	require.Equal(t, 0, firstResult.Seq)
	require.False(t, firstResult.WasCorrect)
	require.Equal(t, f.learner, firstResult.LearnerID)

	summary, err := f.svc.Finish(ctx, f.learner, view.ID)
	require.NoError(t, err)
	require.True(t, summary.Committed)

	commits := f.queue.on(config.WorkerKey.PersistVocabularyQueue)
	require.Len(t, commits, 1)
	var job worker.CommitJob
	require.NoError(t, json.Unmarshal(commits[0], &job))
	require.Equal(t, model.DifficultyBeginner, job.Difficulty)
	require.Len(t, job.Words, 2)
	require.ElementsMatch(t, []string{"사과", "물"}, []string{job.Words[0].Word, job.Words[1].Word})

	_, err = f.svc.Get(ctx, f.learner, view.ID)
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizService_FinishEarlyDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)

	view, err := f.svc.StartChallenge(ctx, f.learner, model.StartChallengeRequest{Topic: "t", Difficulty: model.DifficultyIntermediate})
	require.NoError(t, err)

	summary, err := f.svc.Finish(ctx, f.learner, view.ID)
	require.NoError(t, err)
	require.False(t, summary.Committed)
	require.Empty(t, f.queue.on(config.WorkerKey.PersistVocabularyQueue))
}

func TestQuizService_OtherLearnerCannotLoad(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)

	view, err := f.svc.StartChallenge(ctx, f.learner, model.StartChallengeRequest{Topic: "t", Difficulty: model.DifficultyBeginner})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, uuid.New(), view.ID)
	require.ErrorIs(t, err, ErrQuizNotFound)
	_, err = f.svc.Get(ctx, f.learner, uuid.New())
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizService_ReviewMastered(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	ids := f.vocab.seed(f.learner, model.StatusLearning, "사과", "苹果")
	f.vocab.seed(f.learner, model.StatusLearned, "물", "水", "불", "火")

	view, err := f.svc.StartReview(ctx, f.learner, model.StartReviewRequest{})
	require.NoError(t, err)
	require.Equal(t, quiz.PhaseActive, view.Phase)
	require.Equal(t, 1, view.QueueLength)
	require.Equal(t, &ids[0], view.Current.SourceID)

	ans, err := f.svc.Mastered(ctx, f.learner, view.ID)
	require.NoError(t, err)
	require.True(t, ans.Outcome.AutoMarked)
	require.EqualValues(t, 1200, ans.AdvanceAfter)
	require.Equal(t, 1, ans.Quiz.Score)

	rec, err := f.vocab.GetByID(ctx, f.learner, ids[0])
	require.NoError(t, err)
	require.Equal(t, model.StatusLearned, rec.Status)

	view, err = f.svc.Advance(ctx, f.learner, view.ID)
	require.NoError(t, err)
	require.Equal(t, quiz.PhaseSummary, view.Phase)

	summary, err := f.svc.Finish(ctx, f.learner, view.ID)
	require.NoError(t, err)
	require.False(t, summary.Committed)
	require.Empty(t, f.queue.on(config.WorkerKey.PersistVocabularyQueue))

	results := f.queue.on(config.WorkerKey.PersistQuizResultsQueue)
	require.Len(t, results, 1)
	var job worker.ResultJob
	require.NoError(t, json.Unmarshal(results[0], &job))
	require.True(t, job.WasAutoMarked)
}

func TestQuizService_ReviewNeedsLearningWords(t *testing.T) {
	f := newQuizFixture(t)
	f.vocab.seed(f.learner, model.StatusLearned, "물", "水")

	_, err := f.svc.StartReview(context.Background(), f.learner, model.StartReviewRequest{})
	require.ErrorIs(t, err, ErrNothingToReview)
}

func TestQuizService_GenerationParseFailure(t *testing.T) {
	f := newQuizFixture(t)
	f.gemini.setText("not json at all")

	_, err := f.svc.StartChallenge(context.Background(), f.learner, model.StartChallengeRequest{Topic: "t", Difficulty: model.DifficultyBeginner})
	require.ErrorIs(t, err, content.ErrParse)
	require.Empty(t, f.queue.jobs)
}

func TestQuizService_SubmissionPronouncesTerm(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)

	view, err := f.svc.StartChallenge(ctx, f.learner, model.StartChallengeRequest{Topic: "t", Difficulty: model.DifficultyBeginner, Count: 2})
	require.NoError(t, err)
	view, err = f.svc.Begin(ctx, f.learner, view.ID)
	require.NoError(t, err)

	sess := f.snapshot(t, view.ID)
	first := sess.Queue[0]
	_, err = f.svc.Answer(ctx, f.learner, view.ID, (first.CorrectIndex+1)%len(first.Options))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, tts := f.gemini.calls()
		return tts == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, err = f.svc.Advance(ctx, f.learner, view.ID)
	require.NoError(t, err)
	sess = f.snapshot(t, view.ID)
	second := sess.Queue[sess.Cursor]
	_, err = f.svc.Answer(ctx, f.learner, view.ID, second.CorrectIndex)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, tts := f.gemini.calls()
		return tts == 2
	}, 2*time.Second, 5*time.Millisecond)

	f.gemini.mu.Lock()
	defer f.gemini.mu.Unlock()
	require.Equal(t, []string{first.Prompt, second.Prompt}, f.gemini.ttsTexts)
}

func TestQuizService_MasteredPronouncesTerm(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.vocab.seed(f.learner, model.StatusLearning, "사과", "苹果")
	f.vocab.seed(f.learner, model.StatusLearned, "물", "水", "불", "火")

	view, err := f.svc.StartReview(ctx, f.learner, model.StartReviewRequest{})
	require.NoError(t, err)
	ans, err := f.svc.Mastered(ctx, f.learner, view.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, tts := f.gemini.calls()
		return tts == 1
	}, 2*time.Second, 5*time.Millisecond)
	f.gemini.mu.Lock()
	defer f.gemini.mu.Unlock()
	require.Equal(t, []string{ans.Outcome.Term}, f.gemini.ttsTexts)
}

// undeletableStore keeps snapshots around as if the delete never reached redis.
type undeletableStore struct{ *kvstore.MemoryStore }

func (undeletableStore) Delete(ctx context.Context, keys ...string) error {
	return errors.New("redis: connection reset")
}

func TestQuizService_FinishRetryCommitsOnce(t *testing.T) {
	ctx := context.Background()
	f := newQuizFixture(t)
	f.svc.store = undeletableStore{f.store}

	view, err := f.svc.StartChallenge(ctx, f.learner, model.StartChallengeRequest{Topic: "t", Difficulty: model.DifficultyBeginner, Count: 2})
	require.NoError(t, err)
	view, err = f.svc.Begin(ctx, f.learner, view.ID)
	require.NoError(t, err)
	for view.Phase != quiz.PhaseSummary {
		sess := f.snapshot(t, view.ID)
		_, err = f.svc.Answer(ctx, f.learner, view.ID, sess.Queue[sess.Cursor].CorrectIndex)
		require.NoError(t, err)
		view, err = f.svc.Advance(ctx, f.learner, view.ID)
		require.NoError(t, err)
	}

	summary, err := f.svc.Finish(ctx, f.learner, view.ID)
	require.NoError(t, err)
	require.True(t, summary.Committed)
	require.True(t, f.snapshot(t, view.ID).Committed)

	summary, err = f.svc.Finish(ctx, f.learner, view.ID)
	require.NoError(t, err)
	require.True(t, summary.Committed)
	require.Len(t, f.queue.on(config.WorkerKey.PersistVocabularyQueue), 1)
}

func (f *quizFixture) snapshot(t *testing.T, id uuid.UUID) quiz.Session {
	t.Helper()
	raw, ok, err := f.store.Get(context.Background(), config.CacheKey.QuizSessionKey(id.String()))
	require.NoError(t, err)
	require.True(t, ok)
	var sess quiz.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &sess))
	return sess
}
