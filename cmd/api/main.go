package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentlink/matchengine/internal/api"
	"github.com/talentlink/matchengine/internal/api/handlers"
	"github.com/talentlink/matchengine/internal/config"
	"github.com/talentlink/matchengine/internal/embeddings"
	"github.com/talentlink/matchengine/internal/observability"
	"github.com/talentlink/matchengine/internal/repository"
	"github.com/talentlink/matchengine/internal/service"
	"github.com/talentlink/matchengine/pkg/database"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	observability.SetupLogging(cfg.LogLevel)

	// Initialize database connection with pgvector type support
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithVectorTypes())
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize embedding client if OpenAI API key is configured
	var embeddingClient embeddings.Client
	if cfg.OpenAIAPIKey != "" {
		embeddingClient = embeddings.NewOpenAIClient(cfg.OpenAIAPIKey)
		slog.Info("Text embedding fallback enabled", "embedding_model", cfg.EmbeddingModel)
	} else {
		slog.Info("Text embedding fallback disabled (OPENAI_API_KEY not set)")
	}

	// Initialize repositories; vector reads go through the LRU cache
	vectorsRepo := repository.NewMatchingVectorsRepository(db)
	resultsRepo := repository.NewMatchResultsRepository(db)

	cachedVectors, err := service.NewCachingVectorsRepository(vectorsRepo, cfg.VectorCacheSize)
	if err != nil {
		slog.Error("Failed to initialize vector cache", "error", err)
		os.Exit(1)
	}

	// Initialize services. Rematching doubles as the vector removal path, so
	// the service exists even when the post-upsert sweep is disabled.
	rematchService := service.NewRematchService(cachedVectors, resultsRepo)

	var rematcher service.Rematcher
	if cfg.MatchingSyncEnabled {
		rematcher = rematchService
	}

	syncService := service.NewEmbeddingSyncService(
		cachedVectors,
		embeddingClient,
		rematcher,
		cfg.MatchingSyncEnabled,
		cfg.EmbeddingModel,
		cfg.EmbeddingDim,
	)
	matchService := service.NewMatchService(cachedVectors, cfg.MatchingEnabled)
	exactService := service.NewVectorMatchingService(cachedVectors)
	resultsService := service.NewMatchResultsService(resultsRepo)

	slog.Info("Matching configuration",
		"matching_enabled", cfg.MatchingEnabled,
		"sync_enabled", cfg.MatchingSyncEnabled,
		"embedding_dim", cfg.EmbeddingDim,
	)

	handler := api.NewRouter(api.RouterConfig{
		APIKey:             cfg.APIKey,
		RateLimitPerSecond: cfg.RateLimitPerSecond,

		Health:     handlers.NewHealthHandler(),
		Embeddings: handlers.NewEmbeddingsHandler(syncService),
		Matches:    handlers.NewMatchHandler(matchService),
		Pairs:      handlers.NewPairHandler(matchService, exactService),
		Results:    handlers.NewResultsHandler(resultsService),
		Vectors:    handlers.NewVectorsHandler(rematchService),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}
