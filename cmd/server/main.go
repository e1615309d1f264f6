package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/shivakharbanda/journalclub/internal/config"
	"github.com/shivakharbanda/journalclub/internal/handler"
	"github.com/shivakharbanda/journalclub/internal/middleware"
	"github.com/shivakharbanda/journalclub/internal/repository"
	"github.com/shivakharbanda/journalclub/internal/service"
	"github.com/shivakharbanda/journalclub/pkg/db"
	"github.com/shivakharbanda/journalclub/pkg/helpers"
	"github.com/shivakharbanda/journalclub/pkg/logger"
	"github.com/shivakharbanda/journalclub/pkg/metrics"
)

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("config.env"); err != nil {
			// Environment-only configuration.
		}
	}

	log := logger.NewLogger("journalclub")
	cfg := config.Load()

	conn, err := db.NewConnection(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBDatabase,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer conn.Close()
	log.Info("Connected to database")

	if err := validateSchema(conn); err != nil {
		log.WithError(err).Fatal("Schema validation failed")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to parse Redis URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// The cache degrades to straight DB reads when Redis is away.
		log.WithError(err).Warn("Redis unreachable at startup")
	} else {
		log.Info("Connected to Redis")
	}
	cancelPing()

	m := metrics.NewMetrics("api")
	validator := helpers.NewCustomValidator()

	// Repositories
	userRepo := repository.NewUserRepository(conn.DB)
	tokenRepo := repository.NewTokenRepository(conn.DB)
	guestRepo := repository.NewGuestRepository(conn.DB)
	episodeRepo := repository.NewEpisodeRepository(conn.DB)
	topicRepo := repository.NewTopicRepository(conn.DB)
	tagRepo := repository.NewTagRepository(conn.DB)
	progressRepo := repository.NewProgressRepository(conn.DB)
	reactionRepo := repository.NewReactionRepository(conn.DB)
	saveRepo := repository.NewSaveRepository(conn.DB)
	commentRepo := repository.NewCommentRepository(conn.DB)
	migrationRepo := repository.NewMigrationRepository(conn.DB)
	cacheRepo := repository.NewCacheRepository(redisClient)

	// Services
	actorService := service.NewActorService(guestRepo)
	migrationService := service.NewMigrationService(migrationRepo, m, log)
	authService := service.NewAuthService(userRepo, tokenRepo, migrationService, cfg.TokenLifetime, log)
	engagementService := service.NewEngagementService(episodeRepo, topicRepo, progressRepo, reactionRepo, saveRepo, cacheRepo, log)
	counterService := service.NewCounterService(episodeRepo, m, log)
	episodeService := service.NewEpisodeService(episodeRepo, topicRepo, tagRepo, reactionRepo, saveRepo, cacheRepo, log)
	topicService := service.NewTopicService(topicRepo)
	commentService := service.NewCommentService(commentRepo, episodeRepo, topicRepo)

	// Handlers
	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authService, validator, cfg.TokenLifetime, cfg.CookieSecure),
		Episode:    handler.NewEpisodeHandler(episodeService, actorService, validator),
		Engagement: handler.NewEngagementHandler(engagementService, actorService, validator),
		Comment:    handler.NewCommentHandler(commentService, validator),
		Topic:      handler.NewTopicHandler(topicService, validator),
		Health:     handler.NewHealthHandler(conn.DB, redisClient),
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handlers, authService, cfg.GuestCookieMaxAge, cfg.CookieSecure)

	var root http.Handler = mux
	root = metrics.HTTPMiddleware(m)(root)
	root = logger.HTTPMiddleware(log)(root)
	root = middleware.CORSMiddleware(root)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	go counterService.Run(jobCtx, cfg.RecomputeInterval)

	stopStats := make(chan struct{})
	go metrics.CollectDBStats(m, conn.DB, 15*time.Second, stopStats)

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancelJobs()
	close(stopStats)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.Info("Server stopped")
}

// validateSchema fails startup when the tables backing engagement invariants
// are missing their unique keys. The unique keys are the race backstop for
// the natural-key upserts, so running without them corrupts counters.
func validateSchema(conn *db.Connection) error {
	guard := db.NewSchemaGuard(conn.DB)

	uniqueKeys := []struct {
		table string
		index string
	}{
		{"guest_identities", "uq_guest_device_token"},
		{"listening_progress", "uq_progress_actor_episode"},
		{"episode_reactions", "uq_reaction_actor_episode"},
		{"saved_items", "uq_saved_actor_target"},
	}
	for _, key := range uniqueKeys {
		if err := guard.ValidateUniqueKey(key.table, key.index); err != nil {
			return err
		}
	}

	return guard.ValidateTable(db.TableSchema{
		Name: "episodes",
		Columns: []db.ColumnType{
			{Name: "id"},
			{Name: "slug"},
			{Name: "likes_count", DataType: "bigint"},
			{Name: "dislikes_count", DataType: "bigint"},
		},
	})
}
