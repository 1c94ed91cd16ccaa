package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inquiry-backend/config"
	_ "inquiry-backend/docs" // Important for Swagger
	"inquiry-backend/internal/delivery/http/middleware"
	v1 "inquiry-backend/internal/delivery/http/v1"
	"inquiry-backend/internal/domain"
	"inquiry-backend/internal/repository/memory"
	"inquiry-backend/internal/repository/postgres"
	redisrepo "inquiry-backend/internal/repository/redis"
	"inquiry-backend/internal/usecase"
	"inquiry-backend/pkg/captcha"
	"inquiry-backend/pkg/database"
	"inquiry-backend/pkg/email"
	"inquiry-backend/pkg/i18n"
	"inquiry-backend/pkg/logger"
	"inquiry-backend/pkg/metrics"
	"inquiry-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

const archiveMemoryCap = 500

// @title           Inquiry Backend API
// @version         1.0
// @description     Contact form backend: validation, bot check, dispatch and the inquiry archive.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting inquiry backend", "port", cfg.Port, "email_provider", cfg.EmailProvider)
	metrics.RegisterDefault()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	locale, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		logger.Log.Error("Failed to load translations", "error", err)
		os.Exit(1)
	}

	checks := map[string]usecase.HealthCheck{}

	// 3. Setup Redis (optional)
	var redisClient *goredis.Client
	var attempts domain.AttemptStore
	var markers domain.MarkerStore
	var loginGuard domain.LoginGuard
	if cfg.RedisURL != "" {
		redisClient, err = redis.Connect(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		attempts = redisrepo.NewAttemptStore(redisClient, cfg.AttemptTTL, cfg.AttemptLockTTL(captcha.MaxVerifyDuration))
		markers = redisrepo.NewMarkerStore(redisClient, cfg.MarkerTTL)
		loginGuard = redisrepo.NewLoginGuard(redisClient, domain.DefaultLoginGuardConfig())
		checks["redis"] = func(ctx context.Context) error {
			return redis.HealthCheck(ctx, redisClient)
		}
	} else {
		memAttempts := memory.NewAttemptStore(cfg.AttemptTTL)
		memMarkers := memory.NewMarkerStore(cfg.MarkerTTL)
		memGuard := memory.NewLoginGuard(domain.DefaultLoginGuardConfig())
		memory.StartJanitor(ctx, time.Minute, memAttempts, memMarkers, memGuard)
		attempts = memAttempts
		markers = memMarkers
		loginGuard = memGuard
	}

	// 4. Setup Database (optional)
	var archive domain.InquiryRepository
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := database.Migrate(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		archive = postgres.NewInquiryRepository(dbPool)
		checks["database"] = dbPool.Ping
	} else {
		archive = memory.NewInquiryRepository(archiveMemoryCap)
	}

	// 5. Setup Dispatch and Verification
	dispatcher := email.NewDispatcher(cfg)
	if !dispatcher.IsConfigured() {
		logger.Log.Warn("Email dispatch not fully configured - submissions will fail", "provider", cfg.EmailProvider)
	}

	var verifier domain.Verifier
	if cfg.VerificationRequired() {
		verifier = captcha.NewRecaptchaVerifier(cfg.RecaptchaSecret, cfg.RecaptchaEndpoint, logger.Log)
	}

	policy := domain.ReverifyAfterFailure
	if !cfg.ReverifyAfterFailure {
		policy = domain.KeepVerificationAfterFailure
	}

	// 6. Setup UseCases
	inquiryUC := usecase.NewInquiryUsecase(usecase.InquiryDeps{
		Dispatcher: dispatcher,
		Verifier:   verifier,
		Attempts:   attempts,
		Markers:    markers,
		Archive:    archive,
		Observer: usecase.MultiObserver{
			usecase.LoggingObserver{Log: logger.Log},
			metrics.Observer{},
		},
		Locale: locale,
		Logger: logger.Log,
		Config: usecase.SequencerConfig{
			VerificationRequired: cfg.VerificationRequired(),
			RetryPolicy:          policy,
			DispatchTimeout:      cfg.DispatchTimeout,
		},
	})
	adminUC := usecase.NewAdminUsecase(archive, usecase.AdminConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    cfg.AdminJWTSecret,
		TokenTTL:     cfg.AdminTokenTTL,
		Guard:        loginGuard,
	})
	healthUC := usecase.NewHealthUsecase(checks)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		InquiryUC:   inquiryUC,
		AdminUC:     adminUC,
		HealthUC:    healthUC,
		Locale:      locale,
		RateLimiter: middleware.NewRateLimiter(redisClient),
		Config:      cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	stop()

	logger.Log.Info("Server exiting")
}
