package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/audio"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/database"
	"github.com/stemsi/hanyu-backend/internal/handler"
	"github.com/stemsi/hanyu-backend/internal/kvstore"
	"github.com/stemsi/hanyu-backend/internal/logger"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/provider"
	"github.com/stemsi/hanyu-backend/internal/repository"
	"github.com/stemsi/hanyu-backend/internal/router"
	"github.com/stemsi/hanyu-backend/internal/service"
	"github.com/stemsi/hanyu-backend/internal/validator"
	"github.com/stemsi/hanyu-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("text_provider", cfg.Providers.TextProvider).
		Str("tts_provider", cfg.Providers.TTSProvider).
		Msg("Starting Hanyu Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	learnerRepo := repository.NewLearnerRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	vocabRepo := repository.NewVocabularyRepository(pool)
	articleRepo := repository.NewSavedItemRepository[model.ArticleData](pool, model.KindArticle)
	listeningRepo := repository.NewSavedItemRepository[model.ListeningData](pool, model.KindListening)
	tutorRepo := repository.NewTutorRepository(pool)
	resultRepo := repository.NewQuizResultRepository(pool)

	// ─── Key-Value Store, Audio and Providers ──────────────────────────
	store := kvstore.NewRedisStore(rdb)
	audioCache := kvstore.NewAudioCache(store, cfg.AudioCacheTTL, cfg.AudioCacheMaxBytes, log)
	audioCtx := audio.NewContext(audio.NewRenderFactory(), cfg.AudioIdleSuspend, log)
	player := audio.NewPlayer(audioCtx, log)
	registry := provider.NewRegistry(cfg.Providers, log)
	queue := worker.NewRedisQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, learnerRepo, log)
	settingService := service.NewSettingService(settingRepo, log)
	aiService := service.NewAIService(registry, settingService, log)
	speechService := service.NewSpeechService(aiService, audioCache, player, log)
	vocabService := service.NewVocabularyService(vocabRepo, aiService, log)
	quizService := service.NewQuizService(vocabRepo, aiService, speechService, store, queue, cfg, log)
	historyService := service.NewQuizHistoryService(resultRepo)
	readingService := service.NewReadingService(articleRepo, aiService, speechService, log)
	listeningService := service.NewListeningService(listeningRepo, aiService, speechService, log)
	tutorService := service.NewTutorService(tutorRepo, aiService, speechService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, log),
		Setting:    handler.NewSettingHandler(settingService, log),
		Vocabulary: handler.NewVocabularyHandler(vocabService, log),
		Quiz:       handler.NewQuizHandler(quizService, historyService, log),
		WS:         handler.NewWSHandler(quizService, log, cfg.AllowedOrigins),
		Reading:    handler.NewReadingHandler(readingService, speechService, log),
		Listening:  handler.NewListeningHandler(listeningService, speechService, log),
		Tutor:      handler.NewTutorHandler(tutorService, speechService, log),
		Audio:      handler.NewAudioHandler(speechService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	commitWorker := worker.NewCommitWorker(vocabRepo, rdb, log)
	resultWorker := worker.NewResultWorker(pool, rdb, log)

	workers.Add(2)
	go func() { defer workers.Done(); commitWorker.Start(workerCtx) }()
	go func() { defer workers.Done(); resultWorker.Start(workerCtx) }()

	// ─── Setup Router ──────────────────────────────────────────────────
	r, limiter := router.SetupRouter(authService, handlers, cfg)
	defer limiter.Close()

	// ─── Create HTTP Server ────────────────────────────────────────────
	// No WriteTimeout: generation and synthesis can take a provider timeout.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers; each flushes its pending batch on exit.
	workerCancel()
	drained := make(chan struct{})
	go func() {
		workers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Workers did not drain before timeout")
	}

	// 3. Release the audio engine.
	if err := audioCtx.Suspend(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Audio engine suspend failed")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
