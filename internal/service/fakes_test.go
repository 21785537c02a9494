package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/audio"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/kvstore"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/provider"
	"github.com/stemsi/hanyu-backend/internal/repository"
)

// fakeGemini serves generateContent for a text model and a speech model.
type fakeGemini struct {
	srv *httptest.Server

	mu        sync.Mutex
	text      string
	failText  bool
	textCalls int
	ttsCalls  int
	ttsTexts  []string
	lastUser  string
}

var testPCM = []byte{0xe8, 0x03, 0x18, 0xfc, 0xe8, 0x03, 0x18, 0xfc}

func newFakeGemini(t *testing.T) *fakeGemini {
	t.Helper()
	g := &fakeGemini{}
	g.srv = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGemini) setText(s string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.text = s
}

func (g *fakeGemini) calls() (text, tts int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.textCalls, g.ttsCalls
}

func (g *fakeGemini) serve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	user := ""
	if len(body.Contents) > 0 && len(body.Contents[0].Parts) > 0 {
		user = body.Contents[0].Parts[0].Text
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var part map[string]any
	if strings.Contains(r.URL.Path, "gemini-tts") {
		g.ttsCalls++
		g.ttsTexts = append(g.ttsTexts, user)
		part = map[string]any{"inlineData": map[string]string{
			"mimeType": "audio/L16;rate=24000",
			"data":     base64.StdEncoding.EncodeToString(testPCM),
		}}
	} else {
		g.textCalls++
		g.lastUser = user
		if g.failText {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"overloaded"}`))
			return
		}
		part = map[string]any{"text": g.text}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{part}}}},
	})
}

type staticSelection struct{ sel provider.Selection }

func (s staticSelection) Selection(ctx context.Context, learnerID uuid.UUID) provider.Selection {
	return s.sel
}

func newTestAI(g *fakeGemini) *AIService {
	reg := provider.NewRegistry(config.ProviderConfig{
		GeminiKey:      "test-key",
		GeminiBaseURL:  g.srv.URL,
		GeminiModel:    "gemini-text",
		GeminiTTSModel: "gemini-tts",
		TextProvider:   provider.Gemini,
		TTSProvider:    provider.Gemini,
		Timeout:        5 * time.Second,
	}, zerolog.Nop())
	return NewAIService(reg, staticSelection{}, zerolog.Nop())
}

func newTestSpeech(ai *AIService) (*SpeechService, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore(0)
	cache := kvstore.NewAudioCache(store, time.Hour, 1<<20, zerolog.Nop())
	player := audio.NewPlayer(audio.NewContext(audio.NewRenderFactory(), time.Minute, zerolog.Nop()), zerolog.Nop())
	return NewSpeechService(ai, cache, player, zerolog.Nop()), store
}

// fakeItems is an in-memory saved_items table for one kind.
type fakeItems[T any] struct {
	mu    sync.Mutex
	items []model.SavedItem[T]
}

func (f *fakeItems[T]) List(ctx context.Context, learnerID uuid.UUID, status *model.LearningStatus) ([]model.SavedItem[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.SavedItem[T], 0)
	for i := len(f.items) - 1; i >= 0; i-- {
		it := f.items[i]
		if it.LearnerID != learnerID || (status != nil && it.Status != *status) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeItems[T]) GetByID(ctx context.Context, learnerID, id uuid.UUID) (*model.SavedItem[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == id && it.LearnerID == learnerID {
			cp := it
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeItems[T]) Create(ctx context.Context, item *model.SavedItem[T]) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeItems[T]) UpdateStatus(ctx context.Context, learnerID, id uuid.UUID, status model.LearningStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].LearnerID == learnerID {
			f.items[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeItems[T]) Delete(ctx context.Context, learnerID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].LearnerID == learnerID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeVocab struct {
	fakeItems[model.VocabularyItem]
}

func (f *fakeVocab) Create(ctx context.Context, item *model.VocabularyRecord) error {
	f.mu.Lock()
	for _, it := range f.items {
		if it.LearnerID == item.LearnerID && it.Data.Word == item.Data.Word {
			f.mu.Unlock()
			return repository.ErrDuplicateWord
		}
	}
	f.mu.Unlock()
	return f.fakeItems.Create(ctx, item)
}

func (f *fakeVocab) ListRecentWords(ctx context.Context, learnerID uuid.UUID, limit int) ([]string, error) {
	items, _ := f.List(ctx, learnerID, nil)
	words := make([]string, 0, limit)
	for _, it := range items {
		if len(words) == limit {
			break
		}
		words = append(words, it.Data.Word)
	}
	return words, nil
}

func (f *fakeVocab) CountByStatus(ctx context.Context, learnerID uuid.UUID) (map[model.LearningStatus]int, error) {
	items, _ := f.List(ctx, learnerID, nil)
	counts := map[model.LearningStatus]int{}
	for _, it := range items {
		counts[it.Status]++
	}
	return counts, nil
}

func (f *fakeVocab) seed(learnerID uuid.UUID, status model.LearningStatus, pairs ...string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rec := model.VocabularyRecord{
			LearnerID: learnerID,
			Data:      model.VocabularyItem{Word: pairs[i], Meaning: pairs[i+1]},
			Status:    status,
		}
		_ = f.Create(context.Background(), &rec)
		ids = append(ids, rec.ID)
	}
	return ids
}

type pushed struct {
	queue string
	raw   []byte
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []pushed
	err  error
}

func (q *fakeQueue) Push(ctx context.Context, queue string, v interface{}) error {
	if q.err != nil {
		return q.err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, pushed{queue: queue, raw: raw})
	return nil
}

func (q *fakeQueue) on(queue string) [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out [][]byte
	for _, j := range q.jobs {
		if j.queue == queue {
			out = append(out, j.raw)
		}
	}
	return out
}

type fakeTutorStore struct {
	mu       sync.Mutex
	sessions map[string]model.ChatSession
}

func newFakeTutorStore() *fakeTutorStore {
	return &fakeTutorStore{sessions: make(map[string]model.ChatSession)}
}

func tutorKey(learnerID uuid.UUID, courseID string) string { return learnerID.String() + "/" + courseID }

func (f *fakeTutorStore) Get(ctx context.Context, learnerID uuid.UUID, courseID string) (*model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[tutorKey(learnerID, courseID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Messages = append([]model.ChatMessage(nil), s.Messages...)
	return &s, nil
}

func (f *fakeTutorStore) List(ctx context.Context, learnerID uuid.UUID) ([]model.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ChatSession, 0)
	for _, s := range f.sessions {
		if s.LearnerID == learnerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTutorStore) Save(ctx context.Context, s *model.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	cp.Messages = append([]model.ChatMessage(nil), s.Messages...)
	f.sessions[tutorKey(s.LearnerID, s.CourseID)] = cp
	return nil
}

func (f *fakeTutorStore) Delete(ctx context.Context, learnerID uuid.UUID, courseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := tutorKey(learnerID, courseID)
	if _, ok := f.sessions[k]; !ok {
		return repository.ErrNotFound
	}
	delete(f.sessions, k)
	return nil
}
