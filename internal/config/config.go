package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EmbeddingMode selects how the embedding provider chain is applied.
type EmbeddingMode string

const (
	// EmbeddingModeAuto tries local, then remote, then the hash fallback.
	EmbeddingModeAuto EmbeddingMode = "auto"
	// EmbeddingModeLocal forces the on-device embedding server.
	EmbeddingModeLocal EmbeddingMode = "local"
	// EmbeddingModeRemote forces the remote embedding API.
	EmbeddingModeRemote EmbeddingMode = "remote"
)

// Config holds all configuration for the application.
type Config struct {
	EmbeddingMode EmbeddingMode

	LocalEmbeddingURL   string
	LocalEmbeddingModel string

	RemoteEmbeddingURL    string
	RemoteEmbeddingAPIKey string
	RemoteEmbeddingModel  string

	LLMBaseURL   string
	LLMAPIKey    string
	LLMModelName string

	DataDir string
	DBPath  string
	APIPort string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env next to go.mod for local development runs
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LocalEmbeddingURL:     getEnv("LOCAL_EMBEDDING_URL", ""),
		LocalEmbeddingModel:   getEnv("LOCAL_EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		RemoteEmbeddingURL:    getEnv("REMOTE_EMBEDDING_URL", "https://api.openai.com"),
		RemoteEmbeddingAPIKey: getEnv("REMOTE_EMBEDDING_API_KEY", ""),
		RemoteEmbeddingModel:  getEnv("REMOTE_EMBEDDING_MODEL", "text-embedding-3-small"),
		LLMBaseURL:            getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMAPIKey:             getEnv("LLM_API_KEY", "dummy-key"),
		LLMModelName:          getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		DataDir:               getEnv("DATA_DIR", "./data/vectors"),
		DBPath:                getEnv("DB_PATH", "./data/notebook-ai.db"),
		APIPort:               getEnv("API_PORT", "9000"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
	}

	mode, err := ParseEmbeddingMode(getEnv("EMBEDDING_MODE", "auto"))
	if err != nil {
		return nil, err
	}
	cfg.EmbeddingMode = mode

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// Create data directories up front so first-run writes do not race mkdir
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	return cfg, nil
}

// ParseEmbeddingMode parses an embedding mode string.
func ParseEmbeddingMode(s string) (EmbeddingMode, error) {
	switch EmbeddingMode(strings.ToLower(strings.TrimSpace(s))) {
	case EmbeddingModeAuto:
		return EmbeddingModeAuto, nil
	case EmbeddingModeLocal:
		return EmbeddingModeLocal, nil
	case EmbeddingModeRemote:
		return EmbeddingModeRemote, nil
	default:
		return "", fmt.Errorf("invalid embedding mode %q (want auto, local or remote)", s)
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
