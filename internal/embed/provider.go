package embed

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_provider.go -package=mocks notebook-ai/internal/embed Provider

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredentials is returned when the remote tier is forced but no
	// API key is configured. This is a configuration error and is never retried.
	ErrMissingCredentials = errors.New("missing embedding credentials")

	// ErrRateLimited marks a provider response that may succeed on retry.
	ErrRateLimited = errors.New("rate limited")
)

// Provider is one embedding tier in the fallback chain.
// Embed must preserve the order and length of its input.
type Provider interface {
	// Name returns the tier identifier, e.g. "local:all-MiniLM-L6-v2".
	Name() string
	// Embed converts texts to vectors, one vector per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
