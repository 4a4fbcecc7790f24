package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/sql-tutor/internal/api/handler"
	customMiddleware "github.com/Rrens/sql-tutor/internal/api/middleware"
	"github.com/Rrens/sql-tutor/internal/config"
	"github.com/Rrens/sql-tutor/internal/llm"
	"github.com/Rrens/sql-tutor/internal/llm/gemini"
	"github.com/Rrens/sql-tutor/internal/llm/ollama"
	"github.com/Rrens/sql-tutor/internal/llm/openai"
	"github.com/Rrens/sql-tutor/internal/mailer"
	"github.com/Rrens/sql-tutor/internal/repository/postgres"
	"github.com/Rrens/sql-tutor/internal/repository/redis"
	"github.com/Rrens/sql-tutor/internal/security"
	"github.com/Rrens/sql-tutor/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	sqlValidator := security.NewSQLValidator()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	attemptRepo := postgres.NewAttemptRepository(db)
	otpStore := redis.NewOTPStore(redisClient)

	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	// Initialize LLM Router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	} else {
		log.Warn().Msg("Gemini API Key is empty, skipping registration")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, otpStore, jwtManager, mailer.NewLogMailer())
	assistService := service.NewAssistService(llmRouter, sqlValidator, attemptRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	assistHandler := handler.NewAssistHandler(assistService)
	healthHandler := handler.NewHealthHandler(db, llmRouter)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/ready", healthHandler.ReadyCheck)

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp/request", authHandler.RequestOTP)
			r.Post("/otp/verify", authHandler.VerifyOTP)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/llm-providers", healthHandler.ListLLMProviders)

			r.Route("/assist", func(r chi.Router) {
				r.Post("/generate", assistHandler.Generate)
				r.Post("/fix", assistHandler.Fix)
			})

			r.Post("/sql/validate", assistHandler.ValidateSQL)
			r.Get("/attempts", assistHandler.ListAttempts)
		})
	})

	return r
}
