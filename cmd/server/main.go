package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepiq-api/internal/config"
	"github.com/yourusername/prepiq-api/internal/handler"
	"github.com/yourusername/prepiq-api/internal/middleware"
	"github.com/yourusername/prepiq-api/internal/repository"
	"github.com/yourusername/prepiq-api/internal/service"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("Starting PrepIQ API")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ── Services ─────────────────────────────────────────
	var pdfDecoder service.PDFDecoder
	if cfg.PDFParsingEnabled {
		pdfDecoder = service.NewPDFDecoder()
	} else {
		log.Warn().Msg("PDF parsing disabled, PDF uploads will ask for pasted text")
	}
	extractor := service.NewExtractor(pdfDecoder, cfg.MaxUploadBytes)

	gemini, err := service.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiThinkingBudget)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Gemini client")
	}
	log.Info().Str("model", gemini.Model()).Int("thinkingBudget", cfg.GeminiThinkingBudget).Msg("Gemini client ready")

	drafts := service.NewDraftService(repository.NewDraftRepo(), extractor, cfg.ExtractTimeout)
	feedback := service.NewFeedbackService(gemini)

	go drafts.RunExpiry(ctx, cfg.DraftTTL, sweepInterval(cfg.DraftTTL))

	// ── Handlers ─────────────────────────────────────────
	resumeHandler := handler.NewResumeHandler(extractor)
	draftHandler := handler.NewDraftHandler(drafts)
	feedbackHandler := handler.NewFeedbackHandler(feedback, drafts)

	// ── Middleware ────────────────────────────────────────
	authMiddleware, err := middleware.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase auth")
	}
	if !authMiddleware.Enabled() {
		log.Warn().Msg("FIREBASE_PROJECT_ID not set, running without authentication")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS)
	go rateLimiter.RunCleanup(ctx, 5*time.Minute)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check (unauthenticated)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "prepiq-api",
			"time":    time.Now().UTC(),
		})
	})

	// ── Authenticated Routes ─────────────────────────────
	api := r.Group("/", authMiddleware.Authenticate())
	{
		// Resume
		api.POST("/resume/extract", resumeHandler.Extract)
		api.POST("/resume/skills", resumeHandler.Skills)

		// Drafts
		api.POST("/drafts", draftHandler.Create)
		api.GET("/drafts/:id", draftHandler.Get)
		api.PUT("/drafts/:id/text", draftHandler.SetText)
		api.POST("/drafts/:id/upload", draftHandler.Upload)
		api.DELETE("/drafts/:id/text", draftHandler.ClearText)
		api.DELETE("/drafts/:id", draftHandler.Delete)

		// Interview feedback (rate limited, one model call per request)
		api.POST("/interview/feedback", rateLimiter.Limit(), feedbackHandler.Generate)
	}

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute, // feedback calls can think for a while
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("PrepIQ API server running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	drafts.Wait()

	log.Info().Msg("Server stopped")
}

// sweepInterval checks for idle drafts a few times per TTL
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}
