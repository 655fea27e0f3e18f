package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"

	"draftforge/db"
	"draftforge/internal/repository"
	"draftforge/pkg/ingest"
	"draftforge/pkg/source"

	"github.com/joho/godotenv"
)

type cleanQueue struct{}

func (cleanQueue) Enqueue(_ context.Context, postID string) error {
	return db.PushToQueue(db.CleanQueueKey, postID)
}

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	postRepo := repository.NewPostRepository(db.DB, "")
	ledgerRepo := repository.NewLedgerRepository(db.DB, "", "")

	sourceName := envOr("INGEST_SOURCE", "tia")
	cookies := source.NewCookieFile(envOr("COOKIE_FILE", "cookies.txt"))
	if err := cookies.Load(); err != nil {
		slog.Warn("no cookie file loaded", "error", err)
	}
	sourceClient := source.NewClient(sourceName, os.Getenv("SOURCE_BASE_URL"), cookies)

	orchestrator := ingest.NewOrchestrator(
		sourceClient,
		ledgerRepo,
		postRepo,
		cleanQueue{},
		envInt("INGEST_BATCH_SIZE", 30),
		envInt("INGEST_WORKERS", 4),
	)

	ctx := context.Background()

	if os.Getenv("INGEST_RETRY") == "true" {
		slog.Info("retrying incomplete pages", "source", sourceName)
		if err := orchestrator.RetryIncomplete(ctx); err != nil {
			log.Fatalf("error retrying incomplete pages: %v", err)
		}
		return
	}

	limit := envInt("INGEST_LIMIT", 0)
	slog.Info("starting ingestion run", "source", sourceName, "limit", limit)
	if err := orchestrator.Run(ctx, limit); err != nil {
		log.Fatalf("error running ingestion: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return parsed
}
