package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// remoteBatchSize is the maximum number of texts sent per API call.
	remoteBatchSize = 100
	// remoteMaxAttempts bounds the retry loop for transient failures.
	remoteMaxAttempts = 3
	// remoteBackoffBase is the initial retry delay, doubled per attempt.
	remoteBackoffBase = time.Second
)

// RemoteClient embeds text against a remote OpenAI-compatible embeddings API.
// Calls are batched and retried with exponential backoff on rate limits and
// timeouts; other errors surface immediately.
type RemoteClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client

	// sleep is swappable so tests do not wait out real backoff delays.
	sleep func(time.Duration)
}

// NewRemoteClient creates a client for the remote embedding API.
func NewRemoteClient(baseURL, apiKey, model string) *RemoteClient {
	return &RemoteClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  http.DefaultClient,
		sleep:   time.Sleep,
	}
}

// Name returns the tier identifier.
func (c *RemoteClient) Name() string {
	return "remote:" + c.model
}

// Embed generates embeddings for the given texts, one vector per text, in
// batches of at most remoteBatchSize.
func (c *RemoteClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.apiKey == "" {
		return nil, ErrMissingCredentials
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += remoteBatchSize {
		end := start + remoteBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// embedBatch sends one batch, retrying transient failures with exponential backoff.
func (c *RemoteClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	delay := remoteBackoffBase

	var lastErr error
	for attempt := 1; attempt <= remoteMaxAttempts; attempt++ {
		vectors, err := c.doRequest(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if !isTransient(err) {
			return nil, err
		}
		if attempt == remoteMaxAttempts {
			break
		}

		c.sleep(delay)
		delay *= 2

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("remote embedding failed after %d attempts: %w", remoteMaxAttempts, lastErr)
}

func (c *RemoteClient) doRequest(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.baseURL)

	body, err := json.Marshal(embeddingsRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status 429: %s: %w", string(raw), ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embResp.Data))
	}

	return convertVectors(embResp.Data), nil
}

// isTransient reports whether the error is worth retrying: rate limits and
// network timeouts. Everything else (bad credentials, malformed responses)
// fails fast.
func isTransient(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
