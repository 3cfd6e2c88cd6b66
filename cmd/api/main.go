package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"notebook-ai/internal/config"
	"notebook-ai/internal/embed"
	"notebook-ai/internal/http"
	"notebook-ai/internal/indexer"
	"notebook-ai/internal/llm"
	"notebook-ai/internal/rag"
	"notebook-ai/internal/recommend"
	"notebook-ai/internal/storage"
	"notebook-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	notebookRepo := storage.NewNotebookRepo(db)
	sourceRepo := storage.NewSourceRepo(db)

	// Initialize file-backed vector store
	store, err := vectorstore.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	slog.Info("Vector store initialized", "dir", cfg.DataDir)

	// Embedding factory: rebuilds the provider chain when settings change
	embedder := embed.NewFactory(embed.Settings{
		Mode:         cfg.EmbeddingMode,
		LocalURL:     cfg.LocalEmbeddingURL,
		LocalModel:   cfg.LocalEmbeddingModel,
		RemoteURL:    cfg.RemoteEmbeddingURL,
		RemoteAPIKey: cfg.RemoteEmbeddingAPIKey,
		RemoteModel:  cfg.RemoteEmbeddingModel,
	})
	slog.Info("Embedding factory initialized", "mode", cfg.EmbeddingMode)

	// Create ingestion pipeline
	pipeline := indexer.NewPipeline(notebookRepo, sourceRepo, embedder, store)

	// Create LLM client (query decomposition and sufficiency judging)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Create retrieval engine
	engine := rag.NewEngine(embedder, store, sourceRepo, llmClient)
	slog.Info("Retrieval engine initialized")

	// Create cross-notebook recommender
	recommender := recommend.NewRecommender(embedder, store, notebookRepo, sourceRepo)

	// Create router with dependencies
	deps := &http.Deps{
		Engine:       engine,
		Pipeline:     pipeline,
		Recommender:  recommender,
		Embedder:     embedder,
		Store:        store,
		NotebookRepo: notebookRepo,
		SourceRepo:   sourceRepo,
		DataDir:      cfg.DataDir,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
