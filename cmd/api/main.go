package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"

	"draftforge/db"
	"draftforge/internal/handler"
	"draftforge/internal/repository"
	"draftforge/pkg/gen"
	"draftforge/pkg/ingest"
	"draftforge/pkg/research"
	"draftforge/pkg/source"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
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
	researchRepo := repository.NewResearchRepository(db.DB, "")

	sourceName := envOr("INGEST_SOURCE", "tia")
	sourceURL := os.Getenv("SOURCE_BASE_URL")
	cookies := source.NewCookieFile(envOr("COOKIE_FILE", "cookies.txt"))
	if err := cookies.Load(); err != nil {
		slog.Warn("no cookie file loaded", "error", err)
	}
	sourceClient := source.NewClient(sourceName, sourceURL, cookies)

	batchSize := envInt("INGEST_BATCH_SIZE", 30)
	workers := envInt("INGEST_WORKERS", 4)
	orchestrator := ingest.NewOrchestrator(sourceClient, ledgerRepo, postRepo, cleanQueue{}, batchSize, workers)

	pipeline := gen.NewPipeline(buildCompleter(), loadPrompts(), loadStyles())

	ingestHandler := handler.NewIngestHandler(orchestrator, ledgerRepo, sourceName)
	researchHandler := handler.NewResearchHandler(buildResearchClients(), researchRepo)
	generateHandler := handler.NewGenerateHandler(pipeline)
	postHandler := handler.NewPostHandler(postRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.POST("/ingest", ingestHandler.Run)
	r.POST("/ingest/retry", ingestHandler.Retry)
	r.GET("/ingest/status", ingestHandler.Status)
	r.GET("/ingest/batches/:batch", ingestHandler.Batch)
	r.POST("/research/fetch", researchHandler.Fetch)
	r.GET("/research/docs", researchHandler.Docs)
	r.POST("/generate/research-questions", generateHandler.ResearchQuestions)
	r.POST("/generate/headlines", generateHandler.Headlines)
	r.POST("/generate/draft", generateHandler.Draft)
	r.POST("/generate/topic-sentences", generateHandler.TopicSentences)
	r.POST("/generate/full-content", generateHandler.FullContent)
	r.POST("/generate/edit", generateHandler.Edit)
	r.GET("/posts", postHandler.GetFeed)
	r.GET("/health", postHandler.GetHealth)

	err = r.Run(":8080")
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func buildCompleter() gen.Completer {
	provider := envOr("LLM_PROVIDER", "openai")
	switch provider {
	case "anthropic":
		return gen.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("ANTHROPIC_MODEL"))
	case "openai":
		return gen.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))
	default:
		log.Fatalf("unknown LLM_PROVIDER: %s", provider)
		return nil
	}
}

func loadPrompts() *gen.Prompts {
	prompts, err := gen.LoadPrompts(envOr("PROMPTS_PATH", "config/prompts.yaml"))
	if err != nil {
		log.Fatalf("error loading prompts: %v", err)
	}
	return prompts
}

func loadStyles() *gen.StyleBank {
	path := envOr("STYLE_EXAMPLES_PATH", "config/style_examples.json")
	styles, err := gen.LoadStyleBank(path)
	if err != nil {
		slog.Warn("style examples unavailable, flair edits disabled", "path", path, "error", err)
		return nil
	}
	return styles
}

func buildResearchClients() []research.Client {
	searchKey := os.Getenv("SEARCH_API_KEY")
	searchURL := os.Getenv("SEARCH_API_URL")
	country := envOr("SEARCH_COUNTRY", "US")

	return []research.Client{
		research.NewWikipediaClient(""),
		research.NewSearchClient(searchKey, searchURL, research.ModeNews, country),
		research.NewSearchClient(searchKey, searchURL, research.ModeSnippets, country),
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
