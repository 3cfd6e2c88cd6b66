package embed

import (
	"context"
	"sync"

	"notebook-ai/internal/config"
)

// Settings is the slice of configuration the factory needs to build a service.
type Settings struct {
	Mode config.EmbeddingMode

	LocalURL   string
	LocalModel string

	RemoteURL    string
	RemoteAPIKey string
	RemoteModel  string
}

// Factory builds embedding services from the current settings. It holds a
// version counter bumped on every settings change and rebuilds the cached
// service lazily when the version moves, so callers always see the active
// configuration without module-level singletons. Recreation is idempotent and
// cheap; last writer wins.
type Factory struct {
	mu       sync.Mutex
	settings Settings
	version  int

	built   int
	service *Service
}

// NewFactory creates a factory with the given initial settings.
func NewFactory(settings Settings) *Factory {
	return &Factory{settings: settings, version: 1}
}

// Update replaces the settings and invalidates the cached service.
func (f *Factory) Update(settings Settings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = settings
	f.version++
}

// SetMode changes only the embedding mode, keeping provider settings.
func (f *Factory) SetMode(mode config.EmbeddingMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings.Mode == mode {
		return
	}
	f.settings.Mode = mode
	f.version++
}

// Mode returns the currently configured embedding mode.
func (f *Factory) Mode() config.EmbeddingMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings.Mode
}

// Service returns the embedding service for the current settings, rebuilding
// it if the settings changed since the last call.
func (f *Factory) Service() *Service {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.service != nil && f.built == f.version {
		return f.service
	}

	var local Provider
	if f.settings.LocalURL != "" {
		local = NewLocalClient(f.settings.LocalURL, f.settings.LocalModel)
	}

	var remote Provider
	if f.settings.RemoteURL != "" && f.settings.RemoteAPIKey != "" {
		remote = NewRemoteClient(f.settings.RemoteURL, f.settings.RemoteAPIKey, f.settings.RemoteModel)
	}

	f.service = NewService(f.settings.Mode, local, remote, NewHashProvider())
	f.built = f.version
	return f.service
}

// The factory itself satisfies the embedder interfaces consumed by the
// pipeline, the retrieval engine and the recommender by delegating to the
// current service, so a settings change takes effect on the next call.

// Embed converts texts to vectors using the current settings.
func (f *Factory) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f.Service().Embed(ctx, texts)
}

// EmbedQuery embeds a single query string using the current settings.
func (f *Factory) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.Service().EmbedQuery(ctx, text)
}

// ActiveModel reports the tier that served the most recent embedding call.
func (f *Factory) ActiveModel() string {
	return f.Service().ActiveModel()
}
