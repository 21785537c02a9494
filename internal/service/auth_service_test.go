package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

type fakeLearners struct {
	mu   sync.Mutex
	byID map[uuid.UUID]model.Learner
}

func (f *fakeLearners) GetByID(ctx context.Context, id uuid.UUID) (*model.Learner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (f *fakeLearners) GetByEmail(ctx context.Context, email string) (*model.Learner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.byID {
		if strings.EqualFold(l.Email, email) {
			return &l, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLearners) Create(ctx context.Context, l *model.Learner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byID == nil {
		f.byID = make(map[uuid.UUID]model.Learner)
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, l.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	f.byID[l.ID] = *l
	return nil
}

func newTestAuth() *AuthService {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	return NewAuthService(cfg, &fakeLearners{}, zerolog.Nop())
}

func TestAuthService_RegisterLoginValidate(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth()

	learner, token, err := auth.Register(ctx, model.RegisterRequest{Name: " 小明 ", Email: "Ming@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, "小明", learner.Name)
	require.Equal(t, "ming@example.com", learner.Email)
	require.NotEqual(t, "hunter22", learner.PasswordHash)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, learner.ID, claims.LearnerID)

	_, _, err = auth.Register(ctx, model.RegisterRequest{Name: "x", Email: "ming@example.com", Password: "another1"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, token, err = auth.Login(ctx, model.LoginRequest{Email: "MING@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, _, err = auth.Login(ctx, model.LoginRequest{Email: "ming@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := auth.Me(ctx, learner.ID)
	require.NoError(t, err)
	require.Equal(t, learner.Email, me.Email)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	auth := newTestAuth()
	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour, BcryptCost: 4}, &fakeLearners{}, zerolog.Nop())

	token, err := other.GenerateToken(&model.Learner{ID: uuid.New(), Name: "x"})
	require.NoError(t, err)
	_, err = auth.ValidateToken(token)
	require.Error(t, err)

	_, err = auth.ValidateToken("not-a-token")
	require.Error(t, err)
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) GetAll(ctx context.Context, learnerID uuid.UUID) ([]model.LearnerSetting, error) {
	out := make([]model.LearnerSetting, 0, len(f.values))
	for k, v := range f.values {
		out = append(out, model.LearnerSetting{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeSettings) UpsertMany(ctx context.Context, learnerID uuid.UUID, values map[string]string) error {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	for k, v := range values {
		if v == "" {
			delete(f.values, k)
			continue
		}
		f.values[k] = v
	}
	return nil
}

func TestSettingService_ValidatesAndBuildsSelection(t *testing.T) {
	ctx := context.Background()
	store := &fakeSettings{}
	svc := NewSettingService(store, zerolog.Nop())
	learner := uuid.New()

	err := svc.UpdateSettings(ctx, learner, map[string]string{model.SettingTextProvider: "openai"})
	require.ErrorIs(t, err, ErrInvalidSetting)

	err = svc.UpdateSettings(ctx, learner, map[string]string{model.SettingTTSProvider: "deepseek"})
	require.ErrorIs(t, err, ErrInvalidSetting)

	require.NoError(t, svc.UpdateSettings(ctx, learner, map[string]string{
		model.SettingTextProvider:  " deepseek ",
		model.SettingTTSProvider:   "qwen",
		model.SettingDeepSeekModel: "deepseek-reasoner",
	}))

	sel := svc.Selection(ctx, learner)
	require.Equal(t, "DEEPSEEK", sel.TextProvider)
	require.Equal(t, "QWEN", sel.TTSProvider)
	require.Equal(t, "deepseek-reasoner", sel.DeepSeekModel)
	require.Empty(t, sel.GeminiModel)

	require.NoError(t, svc.UpdateSettings(ctx, learner, map[string]string{model.SettingTTSProvider: ""}))
	require.Empty(t, svc.Selection(ctx, learner).TTSProvider)
}

type fakeHistory struct {
	records []model.QuizResultRecord
	limit   int
}

func (f *fakeHistory) ListRecent(_ context.Context, _ uuid.UUID, limit int) ([]model.QuizResultRecord, error) {
	f.limit = limit
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func TestQuizHistory_StatsAndClamp(t *testing.T) {
	h := &fakeHistory{records: []model.QuizResultRecord{
		{Prompt: "사과", WasCorrect: false},
		{Prompt: "사과", WasCorrect: true},
		{Prompt: "학교", WasCorrect: true, WasAutoMarked: true},
		{Prompt: "물", WasCorrect: true},
	}}
	svc := NewQuizHistoryService(h)

	records, stats, err := svc.Recent(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	require.Equal(t, DefaultHistoryLimit, h.limit)
	require.Len(t, records, 4)
	require.Equal(t, HistoryStats{Answered: 4, Correct: 3, AutoMarked: 1, Accuracy: 0.75}, stats)

	_, _, err = svc.Recent(context.Background(), uuid.New(), 10000)
	require.NoError(t, err)
	require.Equal(t, MaxHistoryLimit, h.limit)

	empty, stats, err := NewQuizHistoryService(&fakeHistory{}).Recent(context.Background(), uuid.New(), 5)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Zero(t, stats.Accuracy)
}
