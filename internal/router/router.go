package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stemsi/hanyu-backend/internal/handler"
	"github.com/stemsi/hanyu-backend/internal/middleware"
	"github.com/stemsi/hanyu-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Setting    *handler.SettingHandler
	Vocabulary *handler.VocabularyHandler
	Quiz       *handler.QuizHandler
	WS         *handler.WSHandler
	Reading    *handler.ReadingHandler
	Listening  *handler.ListeningHandler
	Tutor      *handler.TutorHandler
	Audio      *handler.AudioHandler
}

// audioMaxAge is how long browsers may reuse rendered audio.
const audioMaxAge = 24 * 60 * 60

// SetupRouter configures all Gin route groups with appropriate middlewares.
// The returned limiter must be closed on shutdown.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	cfg *config.Config,
) (*gin.Engine, *middleware.RateLimiter) {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-Audio-Cached"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Generation routes call paid providers.
	generationLimiter := middleware.NewRateLimiter(cfg.GenerationRate, cfg.GenerationInterval)
	generate := generationLimiter.Middleware()
	audioCache := middleware.CacheControl(audioMaxAge)

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	authAPI := router.Group("/api/v1/auth")
	{
		authAPI.POST("/register", handlers.Auth.Register)
		authAPI.POST("/login", handlers.Auth.Login)
		authAPI.GET("/me", middleware.RequireLearnerJWT(auth), handlers.Auth.Me)
	}

	// ─── 2. Learner Group (JWT) ────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireLearnerJWT(auth))
	{
		api.GET("/settings", handlers.Setting.GetSettings)
		api.PUT("/settings", handlers.Setting.UpdateSettings)

		vocab := api.Group("/vocabulary")
		{
			vocab.POST("/generate", generate, handlers.Vocabulary.Generate)
			vocab.GET("", handlers.Vocabulary.List)
			vocab.GET("/stats", handlers.Vocabulary.Stats)
			vocab.PATCH("/:id/status", handlers.Vocabulary.UpdateStatus)
			vocab.DELETE("/:id", handlers.Vocabulary.Delete)
		}

		q := api.Group("/quiz")
		q.Use(middleware.NoStore())
		{
			q.POST("/challenge", generate, handlers.Quiz.StartChallenge)
			q.POST("/review", handlers.Quiz.StartReview)
			q.GET("/history", handlers.Quiz.History)
			q.GET("/:session_id", handlers.Quiz.Get)
			q.POST("/:session_id/begin", handlers.Quiz.Begin)
			q.POST("/:session_id/answer", handlers.Quiz.Answer)
			q.POST("/:session_id/mastered", handlers.Quiz.Mastered)
			q.POST("/:session_id/advance", handlers.Quiz.Advance)
			q.POST("/:session_id/finish", handlers.Quiz.Finish)
		}

		reading := api.Group("/reading")
		{
			reading.POST("/generate", generate, handlers.Reading.Generate)
			reading.GET("", handlers.Reading.List)
			reading.GET("/:id", handlers.Reading.Get)
			reading.DELETE("/:id", handlers.Reading.Delete)
			reading.PATCH("/:id/status", handlers.Reading.UpdateStatus)
			reading.GET("/:id/paragraphs/:index/audio", audioCache, handlers.Reading.ParagraphAudio)
			reading.POST("/:id/audio/prefetch", generate, handlers.Reading.Prefetch)
		}

		listening := api.Group("/listening")
		{
			listening.POST("/generate", generate, handlers.Listening.Generate)
			listening.GET("", handlers.Listening.List)
			listening.GET("/:id", handlers.Listening.Get)
			listening.DELETE("/:id", handlers.Listening.Delete)
			listening.PATCH("/:id/status", handlers.Listening.UpdateStatus)
			listening.GET("/:id/audio", audioCache, handlers.Listening.Audio)
		}

		tutor := api.Group("/tutor")
		{
			tutor.GET("/courses", handlers.Tutor.Courses)
			tutor.GET("/recommendation", handlers.Tutor.Recommendation)
			tutor.GET("/sessions/:course_id", handlers.Tutor.Session)
			tutor.DELETE("/sessions/:course_id", handlers.Tutor.Reset)
			tutor.POST("/sessions/:course_id/messages", generate, handlers.Tutor.Send)
			tutor.DELETE("/sessions/:course_id/messages/:message_id", handlers.Tutor.DeleteMessage)
			tutor.GET("/sessions/:course_id/messages/:message_id/audio", audioCache, handlers.Tutor.MessageAudio)
			tutor.POST("/sessions/:course_id/summary", generate, handlers.Tutor.Summarize)
		}

		audio := api.Group("/audio")
		{
			audio.POST("/play", handlers.Audio.Play)
			audio.POST("/term", handlers.Audio.Term)
		}
	}

	// ─── 3. WebSocket Group (token query) ──────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireLearnerWSAuth(auth))
	{
		ws.GET("/quiz/:session_id/stream", handlers.WS.QuizStream)
	}

	return router, generationLimiter
}
