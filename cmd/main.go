package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lingovia/lingovia-backend/internal/cache"
	"github.com/lingovia/lingovia-backend/internal/db"
	"github.com/lingovia/lingovia-backend/internal/handlers"
	"github.com/lingovia/lingovia-backend/internal/middleware"
	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/platform/mediastore"
	"github.com/lingovia/lingovia-backend/internal/platform/openai"
	"github.com/lingovia/lingovia-backend/internal/repos"
	"github.com/lingovia/lingovia-backend/internal/server"
	"github.com/lingovia/lingovia-backend/internal/services"
	"github.com/lingovia/lingovia-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Query cache
	log.Info("Setting up query cache from main...")
	var queryCache cache.QueryCache
	if addr := utils.GetEnv("REDIS_ADDR", "", log); addr != "" {
		cacheTTL := utils.GetEnvAsDuration("QUERY_CACHE_TTL", 5*time.Minute, log)
		queryCache, err = cache.NewRedisCache(log, cache.Config{
			Addr:       addr,
			DefaultTTL: cacheTTL,
		})
		if err != nil {
			log.Warn("Redis cache init failed, serving uncached", "error", err)
			queryCache = cache.NewNoop()
		}
	} else {
		queryCache = cache.NewNoop()
	}
	defer queryCache.Close()

	// Repos
	log.Info("Setting up repos from main...")
	progressRepo := repos.NewUserProgressRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)
	attemptRepo := repos.NewChallengeAttemptRepo(thePG, log)
	subscriptionRepo := repos.NewSubscriptionRepo(thePG, log)
	optionRepo := repos.NewChallengeOptionRepo(thePG, log)
	audioCacheRepo := repos.NewAudioCacheRepo(thePG, log)

	// Media + speech
	log.Info("Setting up media store from main...")
	mediaStore, err := mediastore.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init media store", "error", err)
		os.Exit(1)
	}
	speechClient, err := openai.NewSpeechClient(log)
	if err != nil {
		log.Warn("Speech client unavailable, audio resolve disabled", "error", err)
	}

	// Services
	log.Info("Setting up services from main...")
	progressService := services.NewProgressService(thePG, log, progressRepo, courseRepo, lessonRepo, attemptRepo, queryCache)
	economyService := services.NewEconomyService(thePG, log, progressRepo, attemptRepo, subscriptionRepo, optionRepo, queryCache)
	subscriptionService := services.NewSubscriptionService(thePG, log, progressRepo, subscriptionRepo, queryCache)
	audioService := services.NewAudioService(log, speechClient, mediaStore, audioCacheRepo, optionRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	progressHandler := handlers.NewProgressHandler(log, progressService)
	lessonHandler := handlers.NewLessonHandler(log, progressService)
	economyHandler := handlers.NewEconomyHandler(log, economyService)
	subscriptionHandler := handlers.NewSubscriptionHandler(log, subscriptionService)
	leaderboardHandler := handlers.NewLeaderboardHandler(log, progressService)
	audioHandler := handlers.NewAudioHandler(log, audioService)

	// Middleware
	identityMiddleware, err := middleware.NewIdentityMiddleware(log)
	if err != nil {
		log.Error("Could not init identity middleware", "error", err)
		os.Exit(1)
	}

	// Router
	log.Info("Setting up router from main...")
	staticRoot := ""
	if mode := utils.GetEnv("MEDIA_STORAGE_MODE", "local", log); mode == "local" {
		staticRoot = utils.GetEnv("MEDIA_ROOT", "./public", log)
	}
	router := server.NewRouter(server.RouterConfig{
		IdentityMiddleware:  identityMiddleware,
		ProgressHandler:     progressHandler,
		LessonHandler:       lessonHandler,
		EconomyHandler:      economyHandler,
		SubscriptionHandler: subscriptionHandler,
		LeaderboardHandler:  leaderboardHandler,
		AudioHandler:        audioHandler,
		StaticMediaRoot:     staticRoot,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
