package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"heartbridge/internal/api"
	"heartbridge/internal/config"
	"heartbridge/internal/database"
	"heartbridge/internal/handlers"
	"heartbridge/internal/logger"
	"heartbridge/internal/repository"
	"heartbridge/internal/repository/memory"
	"heartbridge/internal/security"
	"heartbridge/internal/service"
	"heartbridge/internal/storage"
	"heartbridge/internal/templates"
)

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load(config.FilePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty || cfg.Debug,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	// Initialize services
	emailService, err := service.NewEmailService(ctx, service.EmailConfig{
		AWSRegion:   cfg.AWSRegion,
		FromEmail:   cfg.SESFromEmail,
		FromName:    cfg.SESFromName,
		NotifyEmail: cfg.AdminNotifyEmail,
		AppBaseURL:  cfg.AppBaseURL,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Admin request emails disabled")
		emailService = nil
	}

	opts := service.Options{
		SessionDuration: cfg.SessionDuration,
		HostStats:       service.NewSystemHostStats(cfg.AvatarPath),
	}
	if emailService != nil {
		opts.Notifier = emailService
	}
	services := service.New(store, opts)

	avatars, err := storage.NewAvatarStore(cfg.AvatarPath, cfg.UploadMaxSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare avatar storage")
	}

	tmpl, err := templates.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load templates")
	}
	logger.Info().Msg("Templates loaded successfully")

	csrfSecret := cfg.CSRFSecret
	if csrfSecret == "" {
		csrfSecret = security.GenerateSessionID()
		logger.Warn().Msg("CSRF_SECRET not set; using a random secret, forms break across restarts")
	}
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = security.GenerateSessionID()
		logger.Warn().Msg("JWT_SECRET not set; using a random secret, API tokens break across restarts")
	}

	// 5 attempts per minute per IP
	limiter := security.NewRateLimiter(5, time.Minute)
	limiter.TrustProxy = cfg.TrustProxy
	defer limiter.Stop()

	site := handlers.NewRouter(handlers.Dependencies{
		Services:  services,
		Templates: tmpl,
		Avatars:   avatars,
		CSRF:      security.NewCSRFGenerator(csrfSecret),
		Limiter:   limiter,
		MaxUpload: cfg.UploadMaxSize,
	})
	apiServer := api.NewServer(services, api.NewTokenService(jwtSecret, cfg.JWTIssuer, cfg.APITokenTTL), limiter, cfg.CORSOrigins)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer.Router())
	mux.Handle("/", site)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.Logging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go cleanupExpiredSessions(ctx, services.Auth)

	go func() {
		logger.Info().Str("addr", addr).Str("database", cfg.DatabaseType).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// openStore returns the configured store and a function releasing it
func openStore(ctx context.Context, cfg *config.Config) (service.Store, func()) {
	if cfg.DatabaseType == config.DatabaseMemory {
		logger.Warn().Msg("Using the in-memory store; data is lost on exit")
		store := memory.New()
		if cfg.BadWordsURL != "" {
			words, err := database.FetchBadWords(ctx, cfg.BadWordsURL)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to seed bad words filter")
			}
			store.AddBadWords(words...)
		}
		return store, func() {}
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	logger.Info().Str("type", cfg.DatabaseType).Msg("Database connection established")

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info().Msg("Migrations completed successfully")

	if err := db.SeedBadWords(ctx, cfg.BadWordsURL); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed bad words filter")
	}

	return repository.NewStore(db), func() { db.Close() }
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := authService.CleanupExpiredSessions(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Error cleaning up expired sessions")
				continue
			}
			logger.Info().Int64("removed", removed).Msg("Expired sessions cleaned up")
		}
	}
}
