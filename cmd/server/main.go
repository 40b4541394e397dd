package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/docqa-ai/docqa/internal/adapter/ai"
	"github.com/docqa-ai/docqa/internal/adapter/extract"
	"github.com/docqa-ai/docqa/internal/adapter/store"
	"github.com/docqa-ai/docqa/internal/domain"
	"github.com/docqa-ai/docqa/internal/handler"
	"github.com/docqa-ai/docqa/internal/port"
	"github.com/docqa-ai/docqa/internal/service"
	"github.com/docqa-ai/docqa/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	cfg := config.Load()

	slog.Info("starting DocQA",
		"port", cfg.Port,
		"ollama_embed", cfg.OllamaEmbedURL,
		"ollama_gen", cfg.OllamaGenURL,
	)

	// ── Backends ─────────────────────────────────────────────────────────
	// The embedder and vector index are chosen once here and never switched
	// mid-process: the index only holds vectors of one embedder's dimension.
	provider := ai.NewOllamaProvider(
		ai.EndpointConfig{
			BaseURL: cfg.OllamaEmbedURL,
			Model:   cfg.OllamaEmbedModel,
			Token:   cfg.OllamaEmbedToken,
			Timeout: time.Duration(cfg.EmbedTimeoutSecs) * time.Second,
		},
		ai.EndpointConfig{
			BaseURL: cfg.OllamaGenURL,
			Model:   cfg.OllamaGenModel,
			Token:   cfg.OllamaGenToken,
			Timeout: time.Duration(cfg.GenerateTimeoutSecs) * time.Second,
		},
	)

	embedder, dimension := selectEmbedder(cfg, provider)
	index := selectIndex(cfg, embedder, dimension)
	slog.Info("retrieval backends selected", "embedder", embedder.Name())

	// ── Services ─────────────────────────────────────────────────────────
	splitter := service.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	prompts := service.PromptBuilder{MaxContextChars: cfg.MaxContextChars}
	genOpts := domain.GenerationOptions{
		Model:       cfg.OllamaGenModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	ragService := service.NewRAGService(splitter, index, provider, prompts, genOpts)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.GenerateTimeoutSecs+30) * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	api := app.Group("/api/v1")

	api.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	extractors := map[string]port.Extractor{
		".pdf": extract.PDF{},
		".zip": extract.Archive{},
	}
	handler.NewRAGHandler(ragService, extractors).Register(api)

	slog.Info("listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// selectEmbedder resolves the embedder once at startup. "auto" probes the
// Ollama embed endpoint and falls back to the local hash embedder when it is
// unreachable; the fallback trades retrieval quality for availability.
func selectEmbedder(cfg *config.Config, provider *ai.OllamaProvider) (port.Embedder, int) {
	switch cfg.EmbedBackend {
	case "hash":
		hash := ai.NewHashEmbedder(0)
		slog.Info("using local hash embedder")
		return hash, hash.Dimension()
	case "ollama":
		return provider, cfg.EmbeddingDimension
	default: // auto
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Ping(ctx); err != nil {
			hash := ai.NewHashEmbedder(0)
			slog.Warn("embedding backend unreachable, falling back to local hash embedder",
				"url", cfg.OllamaEmbedURL, "error", err)
			return hash, hash.Dimension()
		}
		return provider, cfg.EmbeddingDimension
	}
}

// selectIndex resolves the vector index once at startup. "auto" tries the
// pgvector-backed index and falls back to the in-memory linear scan when the
// database is unreachable.
func selectIndex(cfg *config.Config, embedder port.Embedder, dimension int) port.VectorIndex {
	if cfg.VectorBackend == "memory" {
		slog.Info("using in-memory vector index")
		return store.NewMemory(embedder)
	}

	pg, err := store.NewPostgres(cfg.DatabaseURL, embedder, dimension)
	if err != nil {
		if cfg.VectorBackend == "postgres" {
			slog.Error("failed to connect to vector database", "error", err)
			os.Exit(1)
		}
		slog.Warn("vector database unreachable, falling back to in-memory index", "error", err)
		return store.NewMemory(embedder)
	}
	slog.Info("using pgvector index", "dimension", dimension)
	return pg
}
