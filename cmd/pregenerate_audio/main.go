package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lingovia/lingovia-backend/internal/db"
	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/platform/mediastore"
	"github.com/lingovia/lingovia-backend/internal/platform/openai"
	"github.com/lingovia/lingovia-backend/internal/repos"
	"github.com/lingovia/lingovia-backend/internal/services"
)

// Offline job: synthesize audio for every challenge option that still lacks
// it. Safe to re-run; cached texts are skipped.
func main() {
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

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	mediaStore, err := mediastore.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init media store", "error", err)
		os.Exit(1)
	}
	speechClient, err := openai.NewSpeechClient(log)
	if err != nil {
		log.Error("Could not init speech client", "error", err)
		os.Exit(1)
	}

	audioCacheRepo := repos.NewAudioCacheRepo(thePG, log)
	optionRepo := repos.NewChallengeOptionRepo(thePG, log)
	audioService := services.NewAudioService(log, speechClient, mediaStore, audioCacheRepo, optionRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := audioService.BackfillMissingAudio(ctx)
	if err != nil {
		log.Error("Audio backfill aborted", "error", err,
			"total", report.Total,
			"generated", report.Generated,
			"cached", report.Cached,
			"failed", report.Failed,
		)
		os.Exit(1)
	}
	if report.Failed > 0 {
		os.Exit(1)
	}
}
