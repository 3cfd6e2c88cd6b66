package embed

import (
	"context"
	"errors"
	"testing"

	"notebook-ai/internal/config"
)

func TestFactory_ServiceCachedUntilSettingsChange(t *testing.T) {
	f := NewFactory(Settings{Mode: config.EmbeddingModeAuto})

	first := f.Service()
	second := f.Service()
	if first != second {
		t.Error("Service() rebuilt without a settings change")
	}

	f.SetMode(config.EmbeddingModeLocal)
	third := f.Service()
	if third == first {
		t.Error("Service() not rebuilt after SetMode")
	}
}

func TestFactory_SetMode_SameModeNoRebuild(t *testing.T) {
	f := NewFactory(Settings{Mode: config.EmbeddingModeAuto})
	first := f.Service()
	f.SetMode(config.EmbeddingModeAuto)
	if f.Service() != first {
		t.Error("Service() rebuilt for a no-op mode change")
	}
}

func TestFactory_Mode(t *testing.T) {
	f := NewFactory(Settings{Mode: config.EmbeddingModeAuto})
	if f.Mode() != config.EmbeddingModeAuto {
		t.Errorf("Mode() = %v, want auto", f.Mode())
	}
	f.SetMode(config.EmbeddingModeRemote)
	if f.Mode() != config.EmbeddingModeRemote {
		t.Errorf("Mode() = %v, want remote", f.Mode())
	}
}

func TestFactory_UnconfiguredTiersOmitted(t *testing.T) {
	// No local URL and no API key: only the hash tier exists, so auto mode
	// serves from it directly.
	f := NewFactory(Settings{Mode: config.EmbeddingModeAuto, RemoteURL: "http://unused"})

	vectors, err := f.Embed(context.Background(), []string{"text"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 1 || len(vectors[0]) != HashDimension {
		t.Errorf("Embed() = %d vectors, want 1 hash vector", len(vectors))
	}
	if f.ActiveModel() != "hash-fallback" {
		t.Errorf("ActiveModel() = %q, want hash-fallback", f.ActiveModel())
	}
}

func TestFactory_ModeChangeTakesEffect(t *testing.T) {
	// Start in auto (hash serves), switch to remote-forced with no key: the
	// next call must surface the configuration error.
	f := NewFactory(Settings{Mode: config.EmbeddingModeAuto})

	if _, err := f.Embed(context.Background(), []string{"text"}); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	f.SetMode(config.EmbeddingModeRemote)
	_, err := f.Embed(context.Background(), []string{"text"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Embed() error = %v, want ErrMissingCredentials after mode change", err)
	}
}

func TestFactory_EmbedQueryDelegates(t *testing.T) {
	f := NewFactory(Settings{Mode: config.EmbeddingModeAuto})
	vec, err := f.EmbedQuery(context.Background(), "one question")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vec) != HashDimension {
		t.Errorf("EmbedQuery() dim = %d, want %d", len(vec), HashDimension)
	}
}
