package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/lexara-com/engage-sub006/internal/api"
	"github.com/lexara-com/engage-sub006/internal/api/handler"
	"github.com/lexara-com/engage-sub006/internal/conflict"
	"github.com/lexara-com/engage-sub006/internal/config"
	"github.com/lexara-com/engage-sub006/internal/domain"
	"github.com/lexara-com/engage-sub006/internal/repository/postgres"
	redisrepo "github.com/lexara-com/engage-sub006/internal/repository/redis"
	"github.com/lexara-com/engage-sub006/internal/repository/sqlite"
	"github.com/lexara-com/engage-sub006/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Logging)

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting Engage intake session server")

	// Initialize session and party stores
	var (
		sessionRepo domain.SessionRepository
		partyRepo   domain.PartyRepository
		store       handler.Pinger
		closeStore  func()
	)
	switch cfg.Database.Driver {
	case "sqlite":
		s, err := sqlite.NewStore(context.Background(), cfg.Database.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open sqlite store")
		}
		sessionRepo = sqlite.NewSessionRepository(s)
		partyRepo = sqlite.NewPartyRepository(s)
		store = s
		closeStore = func() { s.Close() }
	default:
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		sessionRepo = postgres.NewSessionRepository(db.Pool)
		partyRepo = postgres.NewPartyRepository(db.Pool)
		store = db
		closeStore = db.Close
	}
	defer closeStore()

	// Initialize Redis (optional)
	var (
		sessionCache service.SessionCache
		rateLimiter  *redisrepo.RateLimiter
	)
	if cfg.Redis.Enabled {
		redisClient, err := redisrepo.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		sessionCache = redisrepo.NewSessionCache(redisClient)
		rateLimiter = redisrepo.NewRateLimiter(redisClient, cfg.Security.RateLimit)
	} else {
		log.Warn().Msg("Redis disabled; running without session cache or rate limiting")
	}

	// Initialize services
	sessionService := service.NewSessionService(sessionRepo, sessionCache, cfg.Intake.PersistTimeout, cfg.Intake.IdleTimeout)
	evaluator := conflict.NewEvaluator(partyRepo, conflict.Config{
		Threshold:       cfg.Conflict.Threshold,
		ExactConfidence: cfg.Conflict.ExactConfidence,
	})
	conflictService := service.NewConflictService(evaluator, partyRepo, sessionService)

	// Initialize router
	router := api.NewRouter(cfg, api.Deps{
		Store:       store,
		Sessions:    sessionService,
		Conflicts:   conflictService,
		RateLimiter: rateLimiter,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func setupLogger(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if os.Getenv("ENV") != "production" && cfg.Format != "json" {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		writers = append(writers, os.Stderr)
	}

	if cfg.File != "" {
		rotator, err := rotatelogs.New(
			cfg.File+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithRotationCount(7),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to open rotating log file; logging to stderr only")
		} else {
			writers = append(writers, rotator)
		}
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(writers...))
}
