package embed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"notebook-ai/internal/config"
	"notebook-ai/internal/contextutil"
)

// Service applies the tiered provider strategy: an ordered fallback chain of
// on-device model, remote API and deterministic hash, with forced modes that
// pin a single tier. The hash tier cannot fail, so Embed only returns an
// error when a forced tier is misconfigured.
type Service struct {
	mode   config.EmbeddingMode
	local  Provider // nil when no on-device server is configured
	remote Provider // nil when the remote tier is not configured
	hash   Provider

	mu     sync.Mutex
	active string
}

// NewService builds a service from the given providers. local and remote may
// be nil when their tiers are not configured; hash must not be nil.
func NewService(mode config.EmbeddingMode, local, remote, hash Provider) *Service {
	return &Service{
		mode:   mode,
		local:  local,
		remote: remote,
		hash:   hash,
		active: hash.Name(),
	}
}

// ActiveModel returns the identifier of the tier that served the most recent
// embedding call, for observability.
func (s *Service) ActiveModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Service) setActive(name string) {
	s.mu.Lock()
	s.active = name
	s.mu.Unlock()
}

// Embed converts texts to vectors, preserving input order and length.
// An empty input returns an empty result without touching any provider.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	logger := contextutil.LoggerFromContext(ctx)

	switch s.mode {
	case config.EmbeddingModeLocal:
		if s.local == nil {
			logger.WarnContext(ctx, "local embedding forced but no on-device server configured, falling back to chain")
			return s.embedChain(ctx, texts)
		}
		vectors, err := s.tryProvider(ctx, s.local, texts)
		if err != nil {
			// The local tier just failed; resume the chain after it
			logger.WarnContext(ctx, "forced local embedding failed, falling back to remote", "error", err)
			return s.embedRemoteThenHash(ctx, texts)
		}
		return vectors, nil

	case config.EmbeddingModeRemote:
		if s.remote == nil {
			// Forcing an unconfigured remote tier is a configuration error,
			// surfaced rather than silently substituted.
			return nil, ErrMissingCredentials
		}
		vectors, err := s.tryProvider(ctx, s.remote, texts)
		if err == nil {
			return vectors, nil
		}
		if isConfigError(err) {
			return nil, err
		}
		logger.WarnContext(ctx, "forced remote embedding failed, using hash fallback", "error", err)
		return s.tryProvider(ctx, s.hash, texts)

	default:
		return s.embedChain(ctx, texts)
	}
}

// embedChain walks the auto chain: local, then remote, then hash. Tiers that
// are not configured are skipped; tiers that error degrade to the next one.
func (s *Service) embedChain(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if s.local != nil {
		vectors, err := s.tryProvider(ctx, s.local, texts)
		if err == nil {
			return vectors, nil
		}
		logger.WarnContext(ctx, "local embedding failed, trying remote", "error", err)
	}
	return s.embedRemoteThenHash(ctx, texts)
}

// embedRemoteThenHash is the chain tail: remote when configured, then hash.
func (s *Service) embedRemoteThenHash(ctx context.Context, texts []string) ([][]float32, error) {
	if s.remote != nil {
		vectors, err := s.tryProvider(ctx, s.remote, texts)
		if err == nil {
			return vectors, nil
		}
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "remote embedding failed, using hash fallback", "error", err)
	}
	return s.tryProvider(ctx, s.hash, texts)
}

// EmbedQuery embeds a single query string.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

func (s *Service) tryProvider(ctx context.Context, p Provider, texts []string) ([][]float32, error) {
	vectors, err := p.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("provider %s returned %d vectors for %d texts", p.Name(), len(vectors), len(texts))
	}
	s.setActive(p.Name())
	return vectors, nil
}

func isConfigError(err error) bool {
	return errors.Is(err, ErrMissingCredentials)
}
